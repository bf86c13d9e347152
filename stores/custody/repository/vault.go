package repository

import (
	bCtx "github.com/reservex/goapi/base/ctx"
	"github.com/reservex/goapi/base/database/mongoclient"
	"github.com/reservex/goapi/base/log"
	"github.com/reservex/goapi/domain"
	"github.com/reservex/goapi/domain/custody"
	"github.com/reservex/goapi/service/query"
)

type vaultRepo struct {
	q query.Mongo
}

func NewVaultRepo(q query.Mongo) custody.VaultRepo {
	return &vaultRepo{q: q}
}

func (r *vaultRepo) Insert(c bCtx.Ctx, rec *custody.VaultRecord) error {
	if err := r.q.Insert(c, domain.TableCustodyVault, rec); err != nil {
		c.WithFields(log.Fields{
			"record": rec,
			"err":    err,
		}).Error("failed to Insert")
		return err
	}
	return nil
}

func (r *vaultRepo) FindOne(c bCtx.Ctx, id custody.VaultId) (*custody.VaultRecord, error) {
	qry, err := mongoclient.MakeBsonM(id)
	if err != nil {
		c.WithFields(log.Fields{
			"id":  id,
			"err": err,
		}).Error("failed to MakeBsonM")
		return nil, err
	}
	res := &custody.VaultRecord{}
	err = r.q.FindOne(c, domain.TableCustodyVault, qry, res)
	if err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		c.WithFields(log.Fields{
			"id":  id,
			"err": err,
		}).Error("failed to FindOne")
		return nil, err
	}
	return res, nil
}

func (r *vaultRepo) Remove(c bCtx.Ctx, id custody.VaultId) error {
	qry, err := mongoclient.MakeBsonM(id)
	if err != nil {
		c.WithFields(log.Fields{
			"id":  id,
			"err": err,
		}).Error("failed to MakeBsonM")
		return err
	}
	err = r.q.Remove(c, domain.TableCustodyVault, qry)
	if err == query.ErrNotFound {
		return domain.ErrNotFound
	} else if err != nil {
		c.WithFields(log.Fields{
			"id":  id,
			"err": err,
		}).Error("failed to Remove")
		return err
	}
	return nil
}
