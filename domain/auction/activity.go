package auction

import (
	"time"

	"github.com/reservex/goapi/base/ctx"
	"github.com/reservex/goapi/domain"
)

type ActivityType string

const (
	ActivityTypeCreateAuction ActivityType = "createAuction"
	ActivityTypePlaceBid      ActivityType = "placeBid"
	ActivityTypeBidRefunded   ActivityType = "bidRefunded"
	ActivityTypeResultAuction ActivityType = "resultAuction"
)

// ActivityHistory is the activity-feed projection of one engine operation,
// persisted for the marketplace frontends. It is written after the operation
// commits and is not part of the engine's authoritative state.
type ActivityHistory struct {
	AuctionId     Id                 `json:"auctionId" bson:"auctionId"`
	ChainId       domain.ChainId     `json:"chainId" bson:"chainId"`
	Collection    domain.Address     `json:"collection" bson:"collection"`
	TokenId       domain.TokenId     `json:"tokenId" bson:"tokenId"`
	Type          ActivityType       `json:"type" bson:"type"`
	Account       domain.Address     `json:"account" bson:"account"`
	To            domain.Address     `json:"to,omitempty" bson:"to,omitempty"`
	Amount        domain.TokenAmount `json:"amount" bson:"amount"`
	Time          time.Time          `json:"time" bson:"time"`
	SourceEventId string             `json:"sourceEventId" bson:"sourceEventId"`
}

type findActivityHistoryOptions struct {
	Offset    *int
	Limit     *int
	AuctionId *Id
	Account   *domain.Address
	Types     []ActivityType
	TimeGTE   *time.Time
}

type FindActivityHistoryOptions func(*findActivityHistoryOptions) error

func GetFindActivityHistoryOptions(opts ...FindActivityHistoryOptions) (*findActivityHistoryOptions, error) {
	res := &findActivityHistoryOptions{}
	for _, opt := range opts {
		if err := opt(res); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func ActivityHistoryWithPagination(offset, limit int) FindActivityHistoryOptions {
	return func(opts *findActivityHistoryOptions) error {
		opts.Offset = &offset
		opts.Limit = &limit
		return nil
	}
}

func ActivityHistoryWithAuctionId(id Id) FindActivityHistoryOptions {
	return func(opts *findActivityHistoryOptions) error {
		opts.AuctionId = &id
		return nil
	}
}

func ActivityHistoryWithAccount(account domain.Address) FindActivityHistoryOptions {
	return func(opts *findActivityHistoryOptions) error {
		opts.Account = account.ToLowerPtr()
		return nil
	}
}

func ActivityHistoryWithTypes(types ...ActivityType) FindActivityHistoryOptions {
	return func(opts *findActivityHistoryOptions) error {
		opts.Types = types
		return nil
	}
}

func ActivityHistoryWithTimeGTE(t time.Time) FindActivityHistoryOptions {
	return func(opts *findActivityHistoryOptions) error {
		opts.TimeGTE = &t
		return nil
	}
}

type ActivityHistoryRepo interface {
	Insert(c ctx.Ctx, a *ActivityHistory) error
	FindActivities(c ctx.Ctx, opts ...FindActivityHistoryOptions) ([]ActivityHistory, error)
	CountActivities(c ctx.Ctx, opts ...FindActivityHistoryOptions) (int, error)
}
