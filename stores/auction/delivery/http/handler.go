package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	bCtx "github.com/reservex/goapi/base/ctx"
	"github.com/reservex/goapi/base/delivery"
	"github.com/reservex/goapi/base/validator"
	"github.com/reservex/goapi/domain"
	dAuction "github.com/reservex/goapi/domain/auction"
)

type handler struct {
	auction dAuction.UseCase
}

func New(e *echo.Echo, _auction dAuction.UseCase) {
	h := &handler{_auction}
	e.POST("/auctions", h.createAuction)
	e.GET("/auctions/:id", h.getAuction)
	e.POST("/auctions/:id/bids", h.placeBid)
	e.POST("/auctions/:id/finalize", h.finalizeAuction)
	e.GET("/auctions/:id/activities", h.getActivities)
}

func parseAuctionId(_ctx echo.Context) (dAuction.Id, error) {
	id, err := strconv.ParseUint(_ctx.Param("id"), 10, 64)
	if err != nil {
		return 0, domain.ErrBadParamInput
	}
	return dAuction.Id(id), nil
}

func (h *handler) createAuction(_ctx echo.Context) error {
	ctx := _ctx.Get("ctx").(bCtx.Ctx)
	type params struct {
		Seller       domain.Address     `json:"seller"`
		ChainId      domain.ChainId     `json:"chainId"`
		Collection   domain.Address     `json:"collection"`
		TokenId      domain.TokenId     `json:"tokenId"`
		ReservePrice domain.TokenAmount `json:"reservePrice"`
	}

	p := &params{}
	if err := _ctx.Bind(p); err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, "invalid params")
	}
	if !validator.IsValidAddress(string(p.Seller)) || !validator.IsValidAddress(string(p.Collection)) {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, "invalid address")
	}
	if p.Seller.Equals(domain.EmptyAddress) {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, "invalid address")
	}
	if len(p.TokenId) == 0 || p.ReservePrice == 0 {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, "invalid params")
	}

	asset := dAuction.AssetRef{
		ChainId:    p.ChainId,
		Collection: p.Collection,
		TokenId:    p.TokenId,
	}
	id, err := h.auction.CreateAuction(ctx, p.Seller, asset, p.ReservePrice)
	if err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusInternalServerError, err)
	}
	type response struct {
		Id dAuction.Id `json:"id"`
	}
	return delivery.MakeJsonResp(_ctx, http.StatusCreated, response{Id: id})
}

func (h *handler) getAuction(_ctx echo.Context) error {
	ctx := _ctx.Get("ctx").(bCtx.Ctx)
	id, err := parseAuctionId(_ctx)
	if err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, err)
	}

	res, err := h.auction.GetAuction(ctx, id)
	if err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(_ctx, http.StatusOK, res)
}

func (h *handler) placeBid(_ctx echo.Context) error {
	ctx := _ctx.Get("ctx").(bCtx.Ctx)
	id, err := parseAuctionId(_ctx)
	if err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, err)
	}

	type params struct {
		Bidder domain.Address     `json:"bidder"`
		Amount domain.TokenAmount `json:"amount"`
	}
	p := &params{}
	if err := _ctx.Bind(p); err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, "invalid params")
	}
	if !validator.IsValidAddress(string(p.Bidder)) || p.Bidder.Equals(domain.EmptyAddress) {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, "invalid address")
	}
	if p.Amount == 0 {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, "invalid params")
	}

	if err := h.auction.PlaceBid(ctx, id, p.Bidder, p.Amount); err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(_ctx, http.StatusOK, "ok")
}

func (h *handler) finalizeAuction(_ctx echo.Context) error {
	ctx := _ctx.Get("ctx").(bCtx.Ctx)
	id, err := parseAuctionId(_ctx)
	if err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, err)
	}

	type params struct {
		Caller domain.Address `json:"caller"`
	}
	p := &params{}
	if err := _ctx.Bind(p); err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, "invalid params")
	}
	if !validator.IsValidAddress(string(p.Caller)) {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, "invalid address")
	}

	if err := h.auction.FinalizeAuction(ctx, id, p.Caller); err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(_ctx, http.StatusOK, "ok")
}

func (h *handler) getActivities(_ctx echo.Context) error {
	ctx := _ctx.Get("ctx").(bCtx.Ctx)
	id, err := parseAuctionId(_ctx)
	if err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, err)
	}

	type params struct {
		Offset  int                     `query:"offset"`
		Limit   int                     `query:"limit"`
		Account *domain.Address         `query:"account"`
		Types   []dAuction.ActivityType `query:"types"`
		Since   *int64                  `query:"since"`
	}
	p := &params{Limit: 20}
	if err := _ctx.Bind(p); err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, "invalid params")
	}

	opts := []dAuction.FindActivityHistoryOptions{
		dAuction.ActivityHistoryWithAuctionId(id),
		dAuction.ActivityHistoryWithPagination(p.Offset, p.Limit),
	}
	if p.Account != nil {
		opts = append(opts, dAuction.ActivityHistoryWithAccount(*p.Account))
	}
	if len(p.Types) > 0 {
		opts = append(opts, dAuction.ActivityHistoryWithTypes(p.Types...))
	}
	if p.Since != nil {
		opts = append(opts, dAuction.ActivityHistoryWithTimeGTE(time.Unix(*p.Since, 0)))
	}

	items, count, err := h.auction.ListActivities(ctx, opts...)
	if err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusInternalServerError, err)
	}
	type response struct {
		Items []dAuction.ActivityHistory `json:"items"`
		Count int                        `json:"count"`
	}
	return delivery.MakeJsonResp(_ctx, http.StatusOK, response{Items: items, Count: count})
}
