package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	bCtx "github.com/reservex/goapi/base/ctx"
	"github.com/reservex/goapi/base/log"
	"github.com/reservex/goapi/domain"
	"github.com/reservex/goapi/domain/auction"
	"github.com/reservex/goapi/service/query"
)

func makeActivityFindQuery(optFns ...auction.FindActivityHistoryOptions) (bson.M, error) {
	opts, err := auction.GetFindActivityHistoryOptions(optFns...)
	if err != nil {
		return nil, err
	}

	qry := bson.M{}

	if opts.AuctionId != nil {
		qry["auctionId"] = *opts.AuctionId
	}

	if opts.Account != nil {
		qry["$or"] = bson.A{
			bson.M{"account": *opts.Account},
			bson.M{"to": *opts.Account},
		}
	}

	if opts.TimeGTE != nil {
		qry["time"] = bson.M{"$gte": *opts.TimeGTE}
	}

	if len(opts.Types) > 1 {
		qry["type"] = bson.M{"$in": opts.Types}
	} else if len(opts.Types) > 0 {
		qry["type"] = opts.Types[0]
	}

	return qry, nil
}

type activityHistoryRepo struct {
	q query.Mongo
}

func NewActivityHistoryRepo(q query.Mongo) auction.ActivityHistoryRepo {
	return &activityHistoryRepo{q: q}
}

func (r *activityHistoryRepo) Insert(c bCtx.Ctx, a *auction.ActivityHistory) error {
	if err := r.q.Insert(c, domain.TableAuctionActivities, a); err != nil {
		c.WithFields(log.Fields{
			"activityHistory": a,
			"err":             err,
		}).Error("failed to Insert")
		return err
	}
	return nil
}

func (r *activityHistoryRepo) FindActivities(c bCtx.Ctx, optFns ...auction.FindActivityHistoryOptions) ([]auction.ActivityHistory, error) {
	opts, err := auction.GetFindActivityHistoryOptions(optFns...)
	if err != nil {
		return nil, err
	}

	offset, limit := 0, 0
	if opts.Offset != nil {
		offset = *opts.Offset
	}
	if opts.Limit != nil {
		limit = *opts.Limit
	}

	qry, err := makeActivityFindQuery(optFns...)
	if err != nil {
		c.WithField("err", err).Error("failed to makeActivityFindQuery")
		return nil, err
	}

	res := []auction.ActivityHistory{}
	if err := r.q.Search(c, domain.TableAuctionActivities, offset, limit, "-time", qry, &res); err != nil {
		c.WithFields(log.Fields{
			"query": qry,
			"err":   err,
		}).Error("failed to Search")
		return nil, err
	}
	return res, nil
}

func (r *activityHistoryRepo) CountActivities(c bCtx.Ctx, optFns ...auction.FindActivityHistoryOptions) (int, error) {
	qry, err := makeActivityFindQuery(optFns...)
	if err != nil {
		c.WithField("err", err).Error("failed to makeActivityFindQuery")
		return 0, err
	}

	n, err := r.q.Count(c, domain.TableAuctionActivities, qry)
	if err != nil {
		c.WithFields(log.Fields{
			"query": qry,
			"err":   err,
		}).Error("failed to Count")
		return 0, err
	}
	return n, nil
}
