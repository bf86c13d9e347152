package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/viper"

	"github.com/reservex/goapi/base/ctx"
	"github.com/reservex/goapi/base/database/mongoclient"
	"github.com/reservex/goapi/base/log"
	bValidator "github.com/reservex/goapi/base/validator"
	"github.com/reservex/goapi/domain"
	dAuction "github.com/reservex/goapi/domain/auction"
	mmiddleware "github.com/reservex/goapi/middleware"
	"github.com/reservex/goapi/service/emitter"
	"github.com/reservex/goapi/service/query"
	auction_delivery "github.com/reservex/goapi/stores/auction/delivery/http"
	auction_repository "github.com/reservex/goapi/stores/auction/repository"
	auction_usecase "github.com/reservex/goapi/stores/auction/usecase"
	custody_repository "github.com/reservex/goapi/stores/custody/repository"
	custody_usecase "github.com/reservex/goapi/stores/custody/usecase"
	hc_delivery "github.com/reservex/goapi/stores/healthcheck/delivery/http"
	hc_repo "github.com/reservex/goapi/stores/healthcheck/repository"
	hc_usecase "github.com/reservex/goapi/stores/healthcheck/usecase"
	ledger_repository "github.com/reservex/goapi/stores/ledger/repository"
	ledger_usecase "github.com/reservex/goapi/stores/ledger/usecase"
)

func init() {
	viper.SetConfigType("yaml")
	viper.SetConfigFile(`infra/configs/config.yaml`)
	err := viper.ReadInConfig()
	if err != nil {
		panic(err)
	}

	if viper.GetBool(`debug`) {
		log.Log().Info("Service RUN on DEBUG mode")
	}
}

func main() {
	// init echo
	e := echo.New()
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	middL := mmiddleware.InitMiddleware()
	e.Use(middL.ResponseLogger())
	e.Use(middL.AddContext())
	e.Use(middleware.CORS())
	e.Validator = bValidator.NewCustomValidator(validator.New())

	context := ctx.Background()

	// init mongo client
	context.Info("init mongo")
	uri := viper.GetString("mongo.uri")
	authDBName := viper.GetString("mongo.authDBName")
	dbName := viper.GetString("mongo.dbName")
	enableSSL := viper.GetBool("mongo.enableSSL")
	mongoClient := mongoclient.MustConnectMongoClient(uri, authDBName, dbName, enableSSL, true, 2)
	q := query.New(mongoClient)

	clk := clock.New()

	// event fanout
	events := emitter.New(viper.GetInt("emitter.queueSize"))
	defer events.Close()

	// repos
	registry := auction_repository.NewRegistry()
	activityRepo := auction_repository.NewActivityHistoryRepo(q)
	accountRepo := ledger_repository.NewAccountRepo(q)
	vaultRepo := custody_repository.NewVaultRepo(q)
	hcRepo := hc_repo.New(mongoClient)

	// usecases
	custodyAdapter := custody_usecase.NewCustodyUseCase(vaultRepo, clk)
	ledgerService := ledger_usecase.NewLedgerUseCase(accountRepo)
	auctionUseCase := auction_usecase.NewAuctionUseCase(&auction_usecase.AuctionUseCaseCfg{
		Registry:     registry,
		Custody:      custodyAdapter,
		Ledger:       ledgerService,
		ActivityRepo: activityRepo,
		Emitter:      events,
		FeePolicy: dAuction.BasisPointsPolicy{
			ProtocolBps: viper.GetInt64("fees.protocolBps"),
			RoyaltyBps:  viper.GetInt64("fees.royaltyBps"),
		},
		Clock:                clk,
		Duration:             viper.GetDuration("auction.duration"),
		ExtensionWindow:      viper.GetDuration("auction.extensionWindow"),
		ProtocolFeeRecipient: domain.Address(viper.GetString("fees.protocolRecipient")),
		RoyaltyFeeRecipient:  domain.Address(viper.GetString("fees.royaltyRecipient")),
	})
	healthCheck := hc_usecase.New(hcRepo)

	// deliveries
	auction_delivery.New(e, auctionUseCase)
	hc_delivery.New(e, healthCheck)

	go func() {
		if err := e.Start(viper.GetString("server.address")); err != nil && err != http.ErrServerClosed {
			log.Log().WithField("err", err).Error("shutting down the server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 10 seconds.
	// Use a buffered channel to avoid missing signals as recommended for signal.Notify
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	sig := <-quit
	log.Log().WithField("signal", sig).Info("received signal")
	ctx, cancel := ctx.WithTimeout(context, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Log().WithField("err", err).Error("shutting down the server")
	} else {
		log.Log().Info("shutdown server successfully")
	}
}
