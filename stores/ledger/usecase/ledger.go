package usecase

import (
	bCtx "github.com/reservex/goapi/base/ctx"
	"github.com/reservex/goapi/base/log"
	"github.com/reservex/goapi/domain"
	"github.com/reservex/goapi/domain/ledger"
)

type ledgerUseCase struct {
	accounts ledger.AccountRepo
}

func NewLedgerUseCase(accounts ledger.AccountRepo) ledger.Ledger {
	return &ledgerUseCase{accounts: accounts}
}

// Escrow moves amount from payer's available balance into the shared
// escrow pool. The two adjustments run in one transaction so a crash
// never leaves funds half-moved.
func (u *ledgerUseCase) Escrow(c bCtx.Ctx, payer domain.Address, amount domain.TokenAmount) error {
	err := u.accounts.RunAtomically(c, func(c bCtx.Ctx) error {
		acct, err := u.accounts.Get(c, payer)
		if err == domain.ErrNotFound {
			return ledger.ErrInsufficientFunds
		} else if err != nil {
			return err
		}
		if acct.Available < int64(amount) {
			return ledger.ErrInsufficientFunds
		}
		if err := u.accounts.Adjust(c, payer, -int64(amount), 0); err != nil {
			return err
		}
		return u.accounts.Adjust(c, ledger.PoolAddress, 0, int64(amount))
	})
	if err != nil && err != ledger.ErrInsufficientFunds {
		c.WithFields(log.Fields{
			"payer":  payer,
			"amount": amount,
			"err":    err,
		}).Error("failed to escrow")
	}
	return err
}

// Refund returns previously escrowed funds from the pool back to the
// payee's available balance.
func (u *ledgerUseCase) Refund(c bCtx.Ctx, payee domain.Address, amount domain.TokenAmount) error {
	err := u.accounts.RunAtomically(c, func(c bCtx.Ctx) error {
		pool, err := u.accounts.Get(c, ledger.PoolAddress)
		if err == domain.ErrNotFound {
			return ledger.ErrInsufficientEscrow
		} else if err != nil {
			return err
		}
		if pool.Escrowed < int64(amount) {
			return ledger.ErrInsufficientEscrow
		}
		if err := u.accounts.Adjust(c, ledger.PoolAddress, 0, -int64(amount)); err != nil {
			return err
		}
		return u.accounts.Adjust(c, payee, int64(amount), 0)
	})
	if err != nil && err != ledger.ErrInsufficientEscrow {
		c.WithFields(log.Fields{
			"payee":  payee,
			"amount": amount,
			"err":    err,
		}).Error("failed to refund")
	}
	return err
}

// Payout releases escrowed funds from the pool to one or more
// recipients, e.g. the seller plus fee takers when an auction settles.
func (u *ledgerUseCase) Payout(c bCtx.Ctx, transfers []ledger.Transfer) error {
	var total int64
	for _, t := range transfers {
		total += int64(t.Amount)
	}
	if total == 0 {
		return nil
	}
	err := u.accounts.RunAtomically(c, func(c bCtx.Ctx) error {
		pool, err := u.accounts.Get(c, ledger.PoolAddress)
		if err == domain.ErrNotFound {
			return ledger.ErrInsufficientEscrow
		} else if err != nil {
			return err
		}
		if pool.Escrowed < total {
			return ledger.ErrInsufficientEscrow
		}
		if err := u.accounts.Adjust(c, ledger.PoolAddress, 0, -total); err != nil {
			return err
		}
		for _, t := range transfers {
			if t.Amount == 0 {
				continue
			}
			if err := u.accounts.Adjust(c, t.To, int64(t.Amount), 0); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil && err != ledger.ErrInsufficientEscrow {
		c.WithFields(log.Fields{
			"transfers": transfers,
			"err":       err,
		}).Error("failed to payout")
	}
	return err
}
