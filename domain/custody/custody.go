package custody

import (
	"time"

	"github.com/reservex/goapi/base/ctx"
	"github.com/reservex/goapi/domain"
	"github.com/reservex/goapi/domain/auction"
)

// Adapter moves custody of an auctioned asset. The engine only moves custody
// at two points, it never inspects the asset itself: PullIn when an auction
// is created and PushOut when it settles.
type Adapter interface {
	PullIn(c ctx.Ctx, asset auction.AssetRef, from domain.Address) error
	PushOut(c ctx.Ctx, asset auction.AssetRef, to domain.Address) error
}

// VaultRecord marks one asset as held by the engine
type VaultRecord struct {
	ChainId    domain.ChainId `json:"chainId" bson:"chainId"`
	Collection domain.Address `json:"collection" bson:"collection"`
	TokenId    domain.TokenId `json:"tokenId" bson:"tokenId"`
	Depositor  domain.Address `json:"depositor" bson:"depositor"`
	Time       time.Time      `json:"time" bson:"time"`
}

// VaultId selects a vault record
type VaultId struct {
	ChainId    domain.ChainId `bson:"chainId"`
	Collection domain.Address `bson:"collection"`
	TokenId    domain.TokenId `bson:"tokenId"`
}

func ToVaultId(asset auction.AssetRef) VaultId {
	return VaultId{
		ChainId:    asset.ChainId,
		Collection: asset.Collection.ToLower(),
		TokenId:    asset.TokenId,
	}
}

type VaultRepo interface {
	Insert(c ctx.Ctx, rec *VaultRecord) error
	FindOne(c ctx.Ctx, id VaultId) (*VaultRecord, error)
	Remove(c ctx.Ctx, id VaultId) error
}
