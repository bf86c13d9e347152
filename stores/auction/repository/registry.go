package repository

import (
	"sync"

	bCtx "github.com/reservex/goapi/base/ctx"
	"github.com/reservex/goapi/domain"
	"github.com/reservex/goapi/domain/auction"
)

type entry struct {
	mu      sync.Mutex
	rec     auction.Auction
	removed bool
}

// registry is the in-memory arena of live auction records. The table mutex
// only guards the map and the id counter; every record carries its own lock,
// so operations on different auctions never serialize against each other.
type registry struct {
	mu      sync.RWMutex
	entries map[auction.Id]*entry
	nextId  auction.Id
}

func NewRegistry() auction.Registry {
	return &registry{
		entries: map[auction.Id]*entry{},
	}
}

func (r *registry) Insert(c bCtx.Ctx, a *auction.Auction) (auction.Id, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextId
	r.nextId++

	a.Id = id
	e := &entry{rec: *a}
	r.entries[id] = e
	return id, nil
}

func (r *registry) Lock(c bCtx.Ctx, id auction.Id) (*auction.Auction, auction.UnlockFunc, error) {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		return nil, nil, domain.ErrAuctionNotFound
	}

	e.mu.Lock()
	// the record may have been finalized while we were waiting on its lock
	if e.removed {
		e.mu.Unlock()
		return nil, nil, domain.ErrAuctionNotFound
	}
	return &e.rec, e.mu.Unlock, nil
}

func (r *registry) Snapshot(c bCtx.Ctx, id auction.Id) (*auction.Auction, error) {
	rec, unlock, err := r.Lock(c, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	snapshot := *rec
	if rec.EndTime != nil {
		endTime := *rec.EndTime
		snapshot.EndTime = &endTime
	}
	return &snapshot, nil
}

func (r *registry) Remove(c bCtx.Ctx, id auction.Id) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return domain.ErrAuctionNotFound
	}

	// the caller holds e.mu, anyone queued on it re-checks this flag.
	// nextId never rewinds, so the id is retired for good.
	e.removed = true
	delete(r.entries, id)
	return nil
}
