package usecase

import (
	"github.com/reservex/goapi/base/ctx"
	hcdomain "github.com/reservex/goapi/domain/healthcheck"
)

type impl struct {
	repo hcdomain.HealthCheckRepo
}

func New(repo hcdomain.HealthCheckRepo) hcdomain.HealthCheckUsecase {
	return &impl{
		repo: repo,
	}
}

func (im *impl) Check(c ctx.Ctx) error {
	return im.repo.PingDB(c)
}
