package auction

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/reservex/goapi/domain"
)

// FeeSplit is the settlement split of a winning amount. The three parts
// always sum to the winning amount.
type FeeSplit struct {
	Seller   domain.TokenAmount
	Protocol domain.TokenAmount
	Royalty  domain.TokenAmount
}

// FeePolicy decides how a winning amount is split at finalize time
type FeePolicy interface {
	Split(amount domain.TokenAmount) FeeSplit
}

const bpsDenominator = 10000

// BasisPointsPolicy takes protocol and royalty cuts in basis points.
// Fees round down, the seller receives the remainder. Zero on both fields
// sends the full amount to the seller.
type BasisPointsPolicy struct {
	ProtocolBps int64
	RoyaltyBps  int64
}

func (p BasisPointsPolicy) Split(amount domain.TokenAmount) FeeSplit {
	total := decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(amount)), 0)
	denom := decimal.NewFromInt(bpsDenominator)

	protocol := total.Mul(decimal.NewFromInt(p.ProtocolBps)).Div(denom).Floor()
	royalty := total.Mul(decimal.NewFromInt(p.RoyaltyBps)).Div(denom).Floor()

	protocolFee := domain.TokenAmount(protocol.BigInt().Uint64())
	royaltyFee := domain.TokenAmount(royalty.BigInt().Uint64())

	return FeeSplit{
		Seller:   amount - protocolFee - royaltyFee,
		Protocol: protocolFee,
		Royalty:  royaltyFee,
	}
}
