package auction

import (
	"time"

	"github.com/reservex/goapi/domain"
)

type EventType string

const (
	EventTypeCreated   EventType = "created"
	EventTypeBidPlaced EventType = "bidPlaced"
	EventTypeFinalized EventType = "finalized"
)

// Event is one lifecycle notification. Exactly one payload field matches Type.
// Delivery to observers is at-least-once in program order per auction id, so
// observers must be idempotent.
type Event struct {
	Type      EventType  `json:"type"`
	AuctionId Id         `json:"auctionId"`
	Created   *Created   `json:"created,omitempty"`
	BidPlaced *BidPlaced `json:"bidPlaced,omitempty"`
	Finalized *Finalized `json:"finalized,omitempty"`
}

type Created struct {
	Id              Id                 `json:"id"`
	Seller          domain.Address     `json:"seller"`
	Asset           AssetRef           `json:"asset"`
	Duration        time.Duration      `json:"duration"`
	ExtensionWindow time.Duration      `json:"extensionWindow"`
	ReservePrice    domain.TokenAmount `json:"reservePrice"`
}

type BidPlaced struct {
	Id      Id                 `json:"id"`
	Bidder  domain.Address     `json:"bidder"`
	Amount  domain.TokenAmount `json:"amount"`
	EndTime time.Time          `json:"endTime"`
}

type Finalized struct {
	Id          Id                 `json:"id"`
	Seller      domain.Address     `json:"seller"`
	Winner      domain.Address     `json:"winner"`
	ProtocolFee domain.TokenAmount `json:"protocolFee"`
	RoyaltyFee  domain.TokenAmount `json:"royaltyFee"`
	Amount      domain.TokenAmount `json:"amount"`
}
