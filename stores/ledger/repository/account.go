package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	bCtx "github.com/reservex/goapi/base/ctx"
	"github.com/reservex/goapi/base/log"
	"github.com/reservex/goapi/domain"
	"github.com/reservex/goapi/domain/ledger"
	"github.com/reservex/goapi/service/query"
)

type accountRepo struct {
	q query.Mongo
}

func NewAccountRepo(q query.Mongo) ledger.AccountRepo {
	return &accountRepo{q: q}
}

func (r *accountRepo) Get(c bCtx.Ctx, address domain.Address) (*ledger.Account, error) {
	qry := bson.M{"address": address.ToLower()}
	res := &ledger.Account{}
	err := r.q.FindOne(c, domain.TableEscrowAccounts, qry, res)
	if err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		c.WithFields(log.Fields{
			"address": address,
			"err":     err,
		}).Error("failed to FindOne")
		return nil, err
	}
	return res, nil
}

func (r *accountRepo) Adjust(c bCtx.Ctx, address domain.Address, availableDelta, escrowedDelta int64) error {
	selector := bson.M{"address": address.ToLower()}
	update := bson.M{
		"$inc": bson.M{
			"available": availableDelta,
			"escrowed":  escrowedDelta,
		},
	}
	if err := r.q.CustomPatch(c, domain.TableEscrowAccounts, selector, update, true); err != nil {
		c.WithFields(log.Fields{
			"address":        address,
			"availableDelta": availableDelta,
			"escrowedDelta":  escrowedDelta,
			"err":            err,
		}).Error("failed to CustomPatch")
		return err
	}
	return nil
}

func (r *accountRepo) RunAtomically(c bCtx.Ctx, run func(bCtx.Ctx) error) error {
	return r.q.RunWithTransaction(c, run)
}
