package auction

import (
	"time"

	"github.com/reservex/goapi/base/ctx"
	"github.com/reservex/goapi/domain"
)

// Id is an opaque auction handle. Ids are assigned monotonically starting
// from 0 and are never reused after the auction is finalized.
type Id uint64

// AssetRef identifies the custodied asset
type AssetRef struct {
	ChainId    domain.ChainId `json:"chainId" bson:"chainId"`
	Collection domain.Address `json:"collection" bson:"collection"`
	TokenId    domain.TokenId `json:"tokenId" bson:"tokenId"`
}

// Auction is the registry record of one reserve auction.
// ReservePrice and Asset never change after creation. EndTime stays nil until
// the first qualifying bid lands and only moves forward afterwards.
type Auction struct {
	Id              Id                 `json:"id" bson:"id"`
	Seller          domain.Address     `json:"seller" bson:"seller"`
	Asset           AssetRef           `json:"asset" bson:"asset"`
	Duration        time.Duration      `json:"duration" bson:"duration"`
	ExtensionWindow time.Duration      `json:"extensionWindow" bson:"extensionWindow"`
	ReservePrice    domain.TokenAmount `json:"reservePrice" bson:"reservePrice"`
	EndTime         *time.Time         `json:"endTime,omitempty" bson:"endTime,omitempty"`
	HighestBidder   domain.Address     `json:"highestBidder,omitempty" bson:"highestBidder,omitempty"`
	HighestBid      domain.TokenAmount `json:"highestBid" bson:"highestBid"`
}

// HasBid reports whether a qualifying bid has been accepted yet
func (a *Auction) HasBid() bool {
	return !a.HighestBidder.IsEmpty()
}

type UseCase interface {
	CreateAuction(c ctx.Ctx, seller domain.Address, asset AssetRef, reservePrice domain.TokenAmount) (Id, error)
	PlaceBid(c ctx.Ctx, id Id, bidder domain.Address, amount domain.TokenAmount) error
	FinalizeAuction(c ctx.Ctx, id Id, caller domain.Address) error
	GetAuction(c ctx.Ctx, id Id) (*Auction, error)
	ListActivities(c ctx.Ctx, opts ...FindActivityHistoryOptions) ([]ActivityHistory, int, error)
}

// UnlockFunc releases the per-auction lock taken by Registry.Lock
type UnlockFunc func()

// Registry owns the arena of live auction records. Records of different ids
// can be locked independently; two callers locking the same id are serialized.
type Registry interface {
	// Insert stores a new record, assigning and returning its id
	Insert(c ctx.Ctx, a *Auction) (Id, error)

	// Lock returns the live record with its per-record lock held. Mutations
	// through the returned pointer become visible to the next locker. Returns
	// domain.ErrAuctionNotFound for unknown or already removed ids.
	Lock(c ctx.Ctx, id Id) (*Auction, UnlockFunc, error)

	// Snapshot returns a copy of the record for read-only use
	Snapshot(c ctx.Ctx, id Id) (*Auction, error)

	// Remove deletes the record. The caller must hold the record's lock.
	// The id is retired, it will never be assigned again.
	Remove(c ctx.Ctx, id Id) error
}

// Emitter publishes lifecycle events in program order per auction id
type Emitter interface {
	Emit(c ctx.Ctx, ev *Event)
}
