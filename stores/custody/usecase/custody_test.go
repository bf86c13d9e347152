package usecase

import (
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/suite"

	bCtx "github.com/reservex/goapi/base/ctx"
	"github.com/reservex/goapi/domain"
	"github.com/reservex/goapi/domain/auction"
	"github.com/reservex/goapi/domain/custody"
)

type fakeVaultRepo struct {
	records map[custody.VaultId]*custody.VaultRecord
}

func newFakeVaultRepo() *fakeVaultRepo {
	return &fakeVaultRepo{records: map[custody.VaultId]*custody.VaultRecord{}}
}

func (r *fakeVaultRepo) Insert(c bCtx.Ctx, rec *custody.VaultRecord) error {
	id := custody.VaultId{ChainId: rec.ChainId, Collection: rec.Collection, TokenId: rec.TokenId}
	r.records[id] = rec
	return nil
}

func (r *fakeVaultRepo) FindOne(c bCtx.Ctx, id custody.VaultId) (*custody.VaultRecord, error) {
	rec, ok := r.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return rec, nil
}

func (r *fakeVaultRepo) Remove(c bCtx.Ctx, id custody.VaultId) error {
	if _, ok := r.records[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.records, id)
	return nil
}

type custodySuite struct {
	suite.Suite

	ctx   bCtx.Ctx
	vault *fakeVaultRepo
	clk   *clock.Mock
	im    custody.Adapter
	asset auction.AssetRef
	owner domain.Address
}

func (s *custodySuite) SetupTest() {
	s.ctx = bCtx.Background()
	s.vault = newFakeVaultRepo()
	s.clk = clock.NewMock()
	s.im = NewCustodyUseCase(s.vault, s.clk)
	s.asset = auction.AssetRef{
		ChainId:    1,
		Collection: domain.Address("0xABCD"),
		TokenId:    domain.TokenId("42"),
	}
	s.owner = domain.Address("0xaaa1")
}

func TestCustodySuite(t *testing.T) {
	suite.Run(t, new(custodySuite))
}

func (s *custodySuite) TestPullInRecordsDepositor() {
	s.Require().NoError(s.im.PullIn(s.ctx, s.asset, s.owner))

	rec, err := s.vault.FindOne(s.ctx, custody.ToVaultId(s.asset))
	s.Require().NoError(err)
	s.Equal(s.owner.ToLower(), rec.Depositor)
	s.Equal(s.clk.Now(), rec.Time)
}

func (s *custodySuite) TestPullInRejectsDoubleCustody() {
	s.Require().NoError(s.im.PullIn(s.ctx, s.asset, s.owner))

	err := s.im.PullIn(s.ctx, s.asset, s.owner)
	s.Equal(domain.ErrCustodyFailure, err)
}

func (s *custodySuite) TestPushOutRemovesRecord() {
	s.Require().NoError(s.im.PullIn(s.ctx, s.asset, s.owner))
	s.Require().NoError(s.im.PushOut(s.ctx, s.asset, domain.Address("0xbbb2")))

	_, err := s.vault.FindOne(s.ctx, custody.ToVaultId(s.asset))
	s.Equal(domain.ErrNotFound, err)
}

func (s *custodySuite) TestPushOutRequiresCustody() {
	err := s.im.PushOut(s.ctx, s.asset, s.owner)
	s.Equal(domain.ErrCustodyFailure, err)
}

func (s *custodySuite) TestPullInAgainAfterPushOut() {
	s.Require().NoError(s.im.PullIn(s.ctx, s.asset, s.owner))
	s.Require().NoError(s.im.PushOut(s.ctx, s.asset, s.owner))
	s.Require().NoError(s.im.PullIn(s.ctx, s.asset, s.owner))
}
