package usecase

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/viney-shih/goroutines"
	"golang.org/x/xerrors"

	bCtx "github.com/reservex/goapi/base/ctx"
	"github.com/reservex/goapi/base/log"
	"github.com/reservex/goapi/base/metrics"
	"github.com/reservex/goapi/domain"
	"github.com/reservex/goapi/domain/auction"
	"github.com/reservex/goapi/domain/custody"
	"github.com/reservex/goapi/domain/ledger"
)

type AuctionUseCaseCfg struct {
	Registry     auction.Registry
	Custody      custody.Adapter
	Ledger       ledger.Ledger
	ActivityRepo auction.ActivityHistoryRepo
	Emitter      auction.Emitter
	FeePolicy    auction.FeePolicy
	Clock        clock.Clock

	Duration        time.Duration
	ExtensionWindow time.Duration

	ProtocolFeeRecipient domain.Address
	RoyaltyFeeRecipient  domain.Address
}

type auctionUseCase struct {
	registry     auction.Registry
	custody      custody.Adapter
	ledger       ledger.Ledger
	activityRepo auction.ActivityHistoryRepo
	emitter      auction.Emitter
	feePolicy    auction.FeePolicy
	clock        clock.Clock

	duration        time.Duration
	extensionWindow time.Duration

	protocolFeeRecipient domain.Address
	royaltyFeeRecipient  domain.Address

	workerPool *goroutines.Pool
	metrics    metrics.Service
}

func NewAuctionUseCase(cfg *AuctionUseCaseCfg) auction.UseCase {
	return &auctionUseCase{
		registry:             cfg.Registry,
		custody:              cfg.Custody,
		ledger:               cfg.Ledger,
		activityRepo:         cfg.ActivityRepo,
		emitter:              cfg.Emitter,
		feePolicy:            cfg.FeePolicy,
		clock:                cfg.Clock,
		duration:             cfg.Duration,
		extensionWindow:      cfg.ExtensionWindow,
		protocolFeeRecipient: cfg.ProtocolFeeRecipient,
		royaltyFeeRecipient:  cfg.RoyaltyFeeRecipient,
		workerPool:           goroutines.NewPool(8, goroutines.WithTaskQueueLength(256)),
		metrics:              metrics.New("auction"),
	}
}

func (im *auctionUseCase) CreateAuction(c bCtx.Ctx, seller domain.Address, asset auction.AssetRef, reservePrice domain.TokenAmount) (auction.Id, error) {
	if err := im.custody.PullIn(c, asset, seller); err != nil {
		c.WithFields(log.Fields{
			"asset":  asset,
			"seller": seller,
			"err":    err,
		}).Error("failed to custody.PullIn")
		return 0, xerrors.Errorf("%v: %w", err, domain.ErrCustodyFailure)
	}

	rec := &auction.Auction{
		Seller: seller.ToLower(),
		Asset: auction.AssetRef{
			ChainId:    asset.ChainId,
			Collection: asset.Collection.ToLower(),
			TokenId:    asset.TokenId,
		},
		Duration:        im.duration,
		ExtensionWindow: im.extensionWindow,
		ReservePrice:    reservePrice,
	}
	id, err := im.registry.Insert(c, rec)
	if err != nil {
		c.WithFields(log.Fields{
			"asset": asset,
			"err":   err,
		}).Error("failed to registry.Insert")
		return 0, err
	}
	im.metrics.BumpSum("create.count", 1)

	im.emitter.Emit(c, &auction.Event{
		Type:      auction.EventTypeCreated,
		AuctionId: id,
		Created: &auction.Created{
			Id:              id,
			Seller:          rec.Seller,
			Asset:           rec.Asset,
			Duration:        rec.Duration,
			ExtensionWindow: rec.ExtensionWindow,
			ReservePrice:    rec.ReservePrice,
		},
	})

	im.scheduleActivity(c, &auction.ActivityHistory{
		AuctionId:  id,
		ChainId:    rec.Asset.ChainId,
		Collection: rec.Asset.Collection,
		TokenId:    rec.Asset.TokenId,
		Type:       auction.ActivityTypeCreateAuction,
		Account:    rec.Seller,
		Amount:     reservePrice,
		Time:       im.clock.Now(),
	})

	return id, nil
}

func (im *auctionUseCase) PlaceBid(c bCtx.Ctx, id auction.Id, bidder domain.Address, amount domain.TokenAmount) error {
	now := im.clock.Now()

	rec, unlock, err := im.registry.Lock(c, id)
	if err != nil {
		return err
	}
	defer unlock()

	if rec.EndTime != nil && !now.Before(*rec.EndTime) {
		return domain.ErrAuctionOver
	}
	if rec.HasBid() && rec.HighestBidder.Equals(bidder) {
		return domain.ErrSelfOutbid
	}
	if !rec.HasBid() {
		if amount < rec.ReservePrice {
			return domain.ErrBelowReservePrice
		}
	} else if amount <= rec.HighestBid {
		return domain.ErrBidTooLow
	}

	if err := im.ledger.Escrow(c, bidder, amount); err != nil {
		c.WithFields(log.Fields{
			"auctionId": id,
			"bidder":    bidder,
			"amount":    amount,
			"err":       err,
		}).Error("failed to ledger.Escrow")
		return xerrors.Errorf("%v: %w", err, domain.ErrEscrowFailure)
	}

	prevBidder := rec.HighestBidder
	prevBid := rec.HighestBid
	if rec.HasBid() {
		if err := im.ledger.Refund(c, prevBidder, prevBid); err != nil {
			c.WithFields(log.Fields{
				"auctionId":  id,
				"prevBidder": prevBidder,
				"prevBid":    prevBid,
				"err":        err,
			}).Error("failed to ledger.Refund")
			// unwind the new escrow so the ledger stays balanced
			if err := im.ledger.Refund(c, bidder, amount); err != nil {
				c.WithFields(log.Fields{
					"auctionId": id,
					"bidder":    bidder,
					"amount":    amount,
					"err":       err,
				}).Error("failed to unwind escrow")
			}
			return xerrors.Errorf("%v: %w", err, domain.ErrEscrowFailure)
		}
	}

	rec.HighestBidder = bidder.ToLower()
	rec.HighestBid = amount
	switch {
	case rec.EndTime == nil:
		end := now.Add(rec.Duration)
		rec.EndTime = &end
	case rec.EndTime.Sub(now) <= rec.ExtensionWindow:
		end := now.Add(rec.ExtensionWindow)
		rec.EndTime = &end
	}
	endTime := *rec.EndTime
	im.metrics.BumpSum("bid.count", 1)
	im.metrics.BumpAvg("bid.amount", float64(amount))

	im.emitter.Emit(c, &auction.Event{
		Type:      auction.EventTypeBidPlaced,
		AuctionId: id,
		BidPlaced: &auction.BidPlaced{
			Id:      id,
			Bidder:  rec.HighestBidder,
			Amount:  amount,
			EndTime: endTime,
		},
	})

	asset := rec.Asset
	im.scheduleActivity(c, &auction.ActivityHistory{
		AuctionId:  id,
		ChainId:    asset.ChainId,
		Collection: asset.Collection,
		TokenId:    asset.TokenId,
		Type:       auction.ActivityTypePlaceBid,
		Account:    bidder.ToLower(),
		Amount:     amount,
		Time:       now,
	})
	if !prevBidder.IsEmpty() {
		im.scheduleActivity(c, &auction.ActivityHistory{
			AuctionId:  id,
			ChainId:    asset.ChainId,
			Collection: asset.Collection,
			TokenId:    asset.TokenId,
			Type:       auction.ActivityTypeBidRefunded,
			Account:    prevBidder,
			Amount:     prevBid,
			Time:       now,
		})
	}

	return nil
}

func (im *auctionUseCase) FinalizeAuction(c bCtx.Ctx, id auction.Id, caller domain.Address) error {
	now := im.clock.Now()

	rec, unlock, err := im.registry.Lock(c, id)
	if err != nil {
		return err
	}
	defer unlock()

	if rec.EndTime == nil || now.Before(*rec.EndTime) {
		return domain.ErrAuctionStillInProgress
	}

	fin, err := im.settle(c, rec)
	if err != nil {
		return err
	}

	if err := im.registry.Remove(c, id); err != nil {
		c.WithFields(log.Fields{
			"auctionId": id,
			"err":       err,
		}).Error("failed to registry.Remove")
		return err
	}
	im.metrics.BumpSum("finalize.count", 1)

	im.emitter.Emit(c, &auction.Event{
		Type:      auction.EventTypeFinalized,
		AuctionId: id,
		Finalized: fin,
	})

	im.scheduleActivity(c, &auction.ActivityHistory{
		AuctionId:  id,
		ChainId:    rec.Asset.ChainId,
		Collection: rec.Asset.Collection,
		TokenId:    rec.Asset.TokenId,
		Type:       auction.ActivityTypeResultAuction,
		Account:    caller.ToLower(),
		To:         fin.Winner,
		Amount:     fin.Amount,
		Time:       now,
	})

	return nil
}

// settle moves money and custody for one ended auction. With a winner the
// winning amount is split by the fee policy and paid out of escrow, then the
// asset goes to the winner. Without one the asset goes straight back to the
// seller and no funds move.
func (im *auctionUseCase) settle(c bCtx.Ctx, rec *auction.Auction) (*auction.Finalized, error) {
	if !rec.HasBid() {
		if err := im.custody.PushOut(c, rec.Asset, rec.Seller); err != nil {
			c.WithFields(log.Fields{
				"auctionId": rec.Id,
				"seller":    rec.Seller,
				"err":       err,
			}).Error("failed to custody.PushOut")
			return nil, xerrors.Errorf("%v: %w", err, domain.ErrCustodyFailure)
		}
		return &auction.Finalized{
			Id:     rec.Id,
			Seller: rec.Seller,
		}, nil
	}

	split := im.feePolicy.Split(rec.HighestBid)
	transfers := []ledger.Transfer{
		{To: rec.Seller, Amount: split.Seller},
	}
	if split.Protocol > 0 {
		transfers = append(transfers, ledger.Transfer{To: im.protocolFeeRecipient, Amount: split.Protocol})
	}
	if split.Royalty > 0 {
		transfers = append(transfers, ledger.Transfer{To: im.royaltyFeeRecipient, Amount: split.Royalty})
	}
	if err := im.ledger.Payout(c, transfers); err != nil {
		c.WithFields(log.Fields{
			"auctionId": rec.Id,
			"transfers": transfers,
			"err":       err,
		}).Error("failed to ledger.Payout")
		return nil, xerrors.Errorf("%v: %w", err, domain.ErrPayoutFailure)
	}

	if err := im.custody.PushOut(c, rec.Asset, rec.HighestBidder); err != nil {
		c.WithFields(log.Fields{
			"auctionId": rec.Id,
			"winner":    rec.HighestBidder,
			"err":       err,
		}).Error("failed to custody.PushOut")
		return nil, xerrors.Errorf("%v: %w", err, domain.ErrCustodyFailure)
	}

	return &auction.Finalized{
		Id:          rec.Id,
		Seller:      rec.Seller,
		Winner:      rec.HighestBidder,
		ProtocolFee: split.Protocol,
		RoyaltyFee:  split.Royalty,
		Amount:      rec.HighestBid,
	}, nil
}

func (im *auctionUseCase) GetAuction(c bCtx.Ctx, id auction.Id) (*auction.Auction, error) {
	return im.registry.Snapshot(c, id)
}

func (im *auctionUseCase) ListActivities(c bCtx.Ctx, opts ...auction.FindActivityHistoryOptions) ([]auction.ActivityHistory, int, error) {
	items, err := im.activityRepo.FindActivities(c, opts...)
	if err != nil {
		c.WithField("err", err).Error("failed to activityRepo.FindActivities")
		return nil, 0, err
	}
	count, err := im.activityRepo.CountActivities(c, opts...)
	if err != nil {
		c.WithField("err", err).Error("failed to activityRepo.CountActivities")
		return nil, 0, err
	}
	return items, count, nil
}

func (im *auctionUseCase) scheduleActivity(c bCtx.Ctx, a *auction.ActivityHistory) {
	a.SourceEventId = uuid.NewString()
	err := im.workerPool.ScheduleWithTimeout(3*time.Second, func() {
		if err := im.activityRepo.Insert(c, a); err != nil {
			c.WithFields(log.Fields{
				"activity": a,
				"err":      err,
			}).Error("failed to activityRepo.Insert")
		}
	})
	if err != nil {
		c.WithFields(log.Fields{
			"activity": a,
			"err":      err,
		}).Error("failed to ScheduleWithTimeout")
	}
}
