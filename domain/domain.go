package domain

import (
	"strings"
)

type ChainId int32

type Address string

const EmptyAddress = Address("0x0000000000000000000000000000000000000000")

func (a Address) ToLower() Address {
	return Address(strings.ToLower(string(a)))
}

func (a Address) ToLowerPtr() *Address {
	res := a.ToLower()
	return &res
}

func (a Address) ToLowerStr() string {
	return strings.ToLower(string(a))
}

func (a Address) IsEmpty() bool {
	return len(a) == 0
}

func (a Address) Equals(b Address) bool {
	return a.ToLowerStr() == b.ToLowerStr()
}

type TokenId string

func (i TokenId) String() string {
	return string(i)
}

// TokenAmount is a non-negative amount in integral units of the single
// settlement currency.
type TokenAmount uint64

// Table is a mongo collection name
type Table string

const (
	TableAuctionActivities Table = "auction_activities"
	TableEscrowAccounts    Table = "escrow_accounts"
	TableCustodyVault      Table = "custody_vault"
)
