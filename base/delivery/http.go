package delivery

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/reservex/goapi/domain"
)

type JsonResponseStatus string

const (
	JsonResponseStatusSuccess JsonResponseStatus = "success"
	JsonResponseStatusFail    JsonResponseStatus = "fail"
)

type JsonResponse struct {
	Data   interface{}        `json:"data"`
	Status JsonResponseStatus `json:"status"`
}

// MakeJsonResp writes data as the uniform json envelope. When data is an
// error the status is corrected to the class of the failure so callers can
// rely on the code regardless of which layer raised it.
func MakeJsonResp(c echo.Context, status int, data interface{}) error {
	if err, ok := data.(error); ok {
		switch {
		case errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrAuctionNotFound):
			status = http.StatusNotFound
		case errors.Is(err, domain.ErrBelowReservePrice) ||
			errors.Is(err, domain.ErrBidTooLow) ||
			errors.Is(err, domain.ErrSelfOutbid) ||
			errors.Is(err, domain.ErrBadParamInput):
			status = http.StatusBadRequest
		case errors.Is(err, domain.ErrAuctionOver) || errors.Is(err, domain.ErrAuctionStillInProgress):
			status = http.StatusConflict
		case errors.Is(err, domain.ErrEscrowFailure) ||
			errors.Is(err, domain.ErrPayoutFailure) ||
			errors.Is(err, domain.ErrCustodyFailure):
			status = http.StatusBadGateway
		}
		data = err.Error()
	}

	if status >= 400 {
		return c.JSON(status, JsonResponse{data, JsonResponseStatusFail})
	}

	if status >= 200 && status < 300 {
		return c.JSON(status, JsonResponse{data, JsonResponseStatusSuccess})
	}

	return c.JSON(status, data)
}
