package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"

	bCtx "github.com/reservex/goapi/base/ctx"
	"github.com/reservex/goapi/domain"
	"github.com/reservex/goapi/domain/auction"
)

const (
	sellerAddr = "0x1111111111111111111111111111111111111111"
	bidderAddr = "0x2222222222222222222222222222222222222222"
	collAddr   = "0x3333333333333333333333333333333333333333"
)

type stubUseCase struct {
	createId  auction.Id
	createErr error
	bidErr    error
	finalErr  error
	getRes    *auction.Auction
	getErr    error
	listRes   []auction.ActivityHistory
	listErr   error
	listOpts  []auction.FindActivityHistoryOptions
}

func (s *stubUseCase) CreateAuction(c bCtx.Ctx, seller domain.Address, asset auction.AssetRef, reservePrice domain.TokenAmount) (auction.Id, error) {
	return s.createId, s.createErr
}

func (s *stubUseCase) PlaceBid(c bCtx.Ctx, id auction.Id, bidder domain.Address, amount domain.TokenAmount) error {
	return s.bidErr
}

func (s *stubUseCase) FinalizeAuction(c bCtx.Ctx, id auction.Id, caller domain.Address) error {
	return s.finalErr
}

func (s *stubUseCase) GetAuction(c bCtx.Ctx, id auction.Id) (*auction.Auction, error) {
	return s.getRes, s.getErr
}

func (s *stubUseCase) ListActivities(c bCtx.Ctx, opts ...auction.FindActivityHistoryOptions) ([]auction.ActivityHistory, int, error) {
	s.listOpts = opts
	return s.listRes, len(s.listRes), s.listErr
}

type handlerSuite struct {
	suite.Suite

	echo *echo.Echo
	stub *stubUseCase
}

func (s *handlerSuite) SetupTest() {
	s.echo = echo.New()
	s.echo.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("ctx", bCtx.Background())
			return next(c)
		}
	})
	s.stub = &stubUseCase{}
	New(s.echo, s.stub)
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(handlerSuite))
}

func (s *handlerSuite) request(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func (s *handlerSuite) TestCreateAuction() {
	s.stub.createId = 3

	rec := s.request(http.MethodPost, "/auctions",
		`{"seller":"`+sellerAddr+`","chainId":1,"collection":"`+collAddr+`","tokenId":"42","reservePrice":100}`)

	s.Equal(http.StatusCreated, rec.Code)
	s.Contains(rec.Body.String(), `"id":3`)
}

func (s *handlerSuite) TestCreateAuctionRejectsBadAddress() {
	rec := s.request(http.MethodPost, "/auctions",
		`{"seller":"not-an-address","chainId":1,"collection":"`+collAddr+`","tokenId":"42","reservePrice":100}`)

	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *handlerSuite) TestCreateAuctionRejectsZeroReserve() {
	rec := s.request(http.MethodPost, "/auctions",
		`{"seller":"`+sellerAddr+`","chainId":1,"collection":"`+collAddr+`","tokenId":"42","reservePrice":0}`)

	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *handlerSuite) TestCreateAuctionCustodyFailure() {
	s.stub.createErr = domain.ErrCustodyFailure

	rec := s.request(http.MethodPost, "/auctions",
		`{"seller":"`+sellerAddr+`","chainId":1,"collection":"`+collAddr+`","tokenId":"42","reservePrice":100}`)

	s.Equal(http.StatusBadGateway, rec.Code)
}

func (s *handlerSuite) TestPlaceBid() {
	rec := s.request(http.MethodPost, "/auctions/0/bids",
		`{"bidder":"`+bidderAddr+`","amount":200}`)

	s.Equal(http.StatusOK, rec.Code)
}

func (s *handlerSuite) TestPlaceBidStatusMapping() {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"not found", domain.ErrAuctionNotFound, http.StatusNotFound},
		{"below reserve", domain.ErrBelowReservePrice, http.StatusBadRequest},
		{"too low", domain.ErrBidTooLow, http.StatusBadRequest},
		{"self outbid", domain.ErrSelfOutbid, http.StatusBadRequest},
		{"over", domain.ErrAuctionOver, http.StatusConflict},
		{"escrow", domain.ErrEscrowFailure, http.StatusBadGateway},
	}
	for _, tc := range cases {
		s.stub.bidErr = tc.err
		rec := s.request(http.MethodPost, "/auctions/0/bids",
			`{"bidder":"`+bidderAddr+`","amount":200}`)
		s.Equal(tc.code, rec.Code, tc.name)
	}
}

func (s *handlerSuite) TestPlaceBidRejectsBadId() {
	rec := s.request(http.MethodPost, "/auctions/abc/bids",
		`{"bidder":"`+bidderAddr+`","amount":200}`)

	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *handlerSuite) TestFinalizeStatusMapping() {
	cases := []struct {
		err  error
		code int
	}{
		{nil, http.StatusOK},
		{domain.ErrAuctionNotFound, http.StatusNotFound},
		{domain.ErrAuctionStillInProgress, http.StatusConflict},
		{domain.ErrPayoutFailure, http.StatusBadGateway},
		{domain.ErrCustodyFailure, http.StatusBadGateway},
	}
	for _, tc := range cases {
		s.stub.finalErr = tc.err
		rec := s.request(http.MethodPost, "/auctions/0/finalize",
			`{"caller":"`+bidderAddr+`"}`)
		s.Equal(tc.code, rec.Code)
	}
}

func (s *handlerSuite) TestGetAuction() {
	s.stub.getRes = &auction.Auction{
		Id:           5,
		Seller:       domain.Address(sellerAddr),
		ReservePrice: 100,
	}

	rec := s.request(http.MethodGet, "/auctions/5", "")

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"id":5`)
	s.Contains(rec.Body.String(), sellerAddr)
}

func (s *handlerSuite) TestGetAuctionNotFound() {
	s.stub.getErr = domain.ErrAuctionNotFound

	rec := s.request(http.MethodGet, "/auctions/5", "")

	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *handlerSuite) TestGetActivities() {
	s.stub.listRes = []auction.ActivityHistory{
		{AuctionId: 5, Type: auction.ActivityTypePlaceBid, Amount: 100},
	}

	rec := s.request(http.MethodGet, "/auctions/5/activities?offset=0&limit=10", "")

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"count":1`)
	s.Contains(rec.Body.String(), string(auction.ActivityTypePlaceBid))
}

func (s *handlerSuite) TestGetActivitiesSinceFilter() {
	rec := s.request(http.MethodGet, "/auctions/5/activities?since=1700000000", "")

	s.Equal(http.StatusOK, rec.Code)
	opts, err := auction.GetFindActivityHistoryOptions(s.stub.listOpts...)
	s.Require().NoError(err)
	s.Require().NotNil(opts.TimeGTE)
	s.Equal(time.Unix(1700000000, 0), *opts.TimeGTE)
}

func (s *handlerSuite) TestCreateAuctionRejectsZeroAddressSeller() {
	rec := s.request(http.MethodPost, "/auctions",
		`{"seller":"`+string(domain.EmptyAddress)+`","chainId":1,"collection":"`+collAddr+`","tokenId":"42","reservePrice":100}`)

	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *handlerSuite) TestPlaceBidRejectsZeroAddressBidder() {
	rec := s.request(http.MethodPost, "/auctions/0/bids",
		`{"bidder":"`+string(domain.EmptyAddress)+`","amount":200}`)

	s.Equal(http.StatusBadRequest, rec.Code)
}
