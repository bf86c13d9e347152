package healthcheck

import (
	"github.com/reservex/goapi/base/ctx"
)

type HealthCheckUsecase interface {
	Check(c ctx.Ctx) error
}

type HealthCheckRepo interface {
	PingDB(c ctx.Ctx) error
}
