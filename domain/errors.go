package domain

import "errors"

var (
	// ErrInternalServerError will throw if any the Internal Server Error happen
	ErrInternalServerError = errors.New("Internal Server Error")
	// ErrNotFound will throw if the requested item is not exists
	ErrNotFound = errors.New("Your requested Item is not found")
	// ErrBadParamInput will throw if the given request-body or params is not valid
	ErrBadParamInput = errors.New("Given Param is not valid")

	// auction validation errors, raised before any side effect
	ErrAuctionNotFound        = errors.New("auction not found")
	ErrBelowReservePrice      = errors.New("bid must be at least the reserve price")
	ErrBidTooLow              = errors.New("bid amount too low")
	ErrSelfOutbid             = errors.New("bidder already has the outstanding bid")
	ErrAuctionOver            = errors.New("auction is over")
	ErrAuctionStillInProgress = errors.New("auction still in progress")

	// adapter failures, the enclosing operation is aborted and may be retried
	ErrEscrowFailure  = errors.New("escrow transfer failed")
	ErrPayoutFailure  = errors.New("payout transfer failed")
	ErrCustodyFailure = errors.New("asset custody transfer failed")
)
