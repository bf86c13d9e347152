package ledger

import (
	"errors"

	"github.com/reservex/goapi/base/ctx"
	"github.com/reservex/goapi/domain"
)

var (
	ErrInsufficientFunds  = errors.New("insufficient available funds")
	ErrInsufficientEscrow = errors.New("insufficient escrowed funds")
)

// PoolAddress is the internal account holding all escrowed bid funds
const PoolAddress = domain.Address("escrow-pool")

// Transfer is one payout leg
type Transfer struct {
	To     domain.Address
	Amount domain.TokenAmount
}

// Ledger escrows bid funds and releases them again, either back to an outbid
// party or to the settlement recipients. Each call is atomic: on error no
// balance has moved.
type Ledger interface {
	Escrow(c ctx.Ctx, payer domain.Address, amount domain.TokenAmount) error
	Refund(c ctx.Ctx, payee domain.Address, amount domain.TokenAmount) error
	Payout(c ctx.Ctx, transfers []Transfer) error
}

// Account is one balance document. Balances are int64 so the repo can apply
// signed deltas; the usecase never lets them go negative.
type Account struct {
	Address   domain.Address `json:"address" bson:"address"`
	Available int64          `json:"available" bson:"available"`
	Escrowed  int64          `json:"escrowed" bson:"escrowed"`
}

type AccountRepo interface {
	Get(c ctx.Ctx, address domain.Address) (*Account, error)

	// Adjust applies the deltas to one account's balances, creating the
	// account document if needed
	Adjust(c ctx.Ctx, address domain.Address, availableDelta, escrowedDelta int64) error

	// RunAtomically executes run so that all Adjust calls inside it commit or
	// roll back together
	RunAtomically(c ctx.Ctx, run func(ctx.Ctx) error) error
}
