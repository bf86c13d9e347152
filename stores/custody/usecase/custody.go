package usecase

import (
	"github.com/benbjohnson/clock"

	bCtx "github.com/reservex/goapi/base/ctx"
	"github.com/reservex/goapi/base/log"
	"github.com/reservex/goapi/domain"
	"github.com/reservex/goapi/domain/auction"
	"github.com/reservex/goapi/domain/custody"
)

type custodyUseCase struct {
	vault custody.VaultRepo
	clock clock.Clock
}

func NewCustodyUseCase(vault custody.VaultRepo, clk clock.Clock) custody.Adapter {
	return &custodyUseCase{vault: vault, clock: clk}
}

func (u *custodyUseCase) PullIn(c bCtx.Ctx, asset auction.AssetRef, from domain.Address) error {
	id := custody.ToVaultId(asset)
	_, err := u.vault.FindOne(c, id)
	if err == nil {
		c.WithFields(log.Fields{
			"id": id,
		}).Warn("asset already in custody")
		return domain.ErrCustodyFailure
	} else if err != domain.ErrNotFound {
		return err
	}

	rec := &custody.VaultRecord{
		ChainId:    asset.ChainId,
		Collection: asset.Collection.ToLower(),
		TokenId:    asset.TokenId,
		Depositor:  from.ToLower(),
		Time:       u.clock.Now(),
	}
	if err := u.vault.Insert(c, rec); err != nil {
		c.WithFields(log.Fields{
			"id":  id,
			"err": err,
		}).Error("failed to pull asset into custody")
		return err
	}
	return nil
}

func (u *custodyUseCase) PushOut(c bCtx.Ctx, asset auction.AssetRef, to domain.Address) error {
	id := custody.ToVaultId(asset)
	if _, err := u.vault.FindOne(c, id); err == domain.ErrNotFound {
		c.WithFields(log.Fields{
			"id": id,
		}).Warn("asset not in custody")
		return domain.ErrCustodyFailure
	} else if err != nil {
		return err
	}

	if err := u.vault.Remove(c, id); err != nil {
		c.WithFields(log.Fields{
			"id":  id,
			"to":  to,
			"err": err,
		}).Error("failed to push asset out of custody")
		return err
	}
	return nil
}
