package app

import (
	"context"
	"fmt"
	"time"

	"shop_return_desk/config"
	"shop_return_desk/db"
	"shop_return_desk/logger"
	"shop_return_desk/metrics"
	"shop_return_desk/models"
	"shop_return_desk/printing"
	"shop_return_desk/records"
	"shop_return_desk/session"
	"shop_return_desk/stats"
	"shop_return_desk/validation"

	"github.com/gin-gonic/gin"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Short aliases for handlers.
type Ctx = gin.Context
type H = gin.H

const ServiceName = "shop-return-desk"

// Collection is everything the handlers of one record table share: its
// adapter, schema, refresh signal and facet cache.
type Collection[T any, P models.Entity[T]] struct {
	Adapter *records.Adapter[T, P]
	Schema  records.Schema[T]
	Signal  *records.Signal
	Facets  *records.FacetCache
}

// recordStore is a record backend that also serves the dashboards.
type recordStore[T any] interface {
	records.Store[T]
	stats.Source
}

// App holds the service's dependencies.
type App struct {
	Router   *gin.Engine
	DB       *gorm.DB // nil when DB_ENABLED=false
	RDB      *redis.Client
	WA       *webauthn.WebAuthn
	Config   *config.Config
	Log      *zap.Logger
	Metrics  *metrics.Registry
	Accounts db.Accounts

	ReturnItems   *Collection[models.ReturnItem, *models.ReturnItem]
	LaptopReturns *Collection[models.LaptopReturn, *models.LaptopReturn]
	Stats         *stats.Reader
	Printer       *printing.Renderer

	appSess *session.AppSessionStore
	waSess  *session.Store
	gate    *session.SubmitGate
}

func (a *App) AppSessions() *session.AppSessionStore { return a.appSess }
func (a *App) Ceremonies() *session.Store            { return a.waSess }
func (a *App) SubmitGate() *session.SubmitGate       { return a.gate }

// MustNew opens Postgres (unless disabled) and Redis and wires the App.
// Startup failures are fatal.
func MustNew(cfg *config.Config, log *zap.Logger) *App {
	var gdb *gorm.DB
	if cfg.DBEnabled {
		var err error
		if gdb, err = db.ConnectDB(cfg.DB.DSN(), log); err != nil {
			log.Fatal("database", zap.Error(err))
		}
	} else {
		log.Warn("DB_ENABLED=false, records and accounts are kept in memory")
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: 0})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal("redis", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	}

	a, err := New(cfg, log, gdb, rdb)
	if err != nil {
		log.Fatal("app", zap.Error(err))
	}
	return a
}

// New wires an App around open connections. With gdb nil the record tables
// and accounts live in memory.
func New(cfg *config.Config, log *zap.Logger, gdb *gorm.DB, rdb *redis.Client) (*App, error) {
	wa, err := webauthn.New(&webauthn.Config{
		RPDisplayName: "Shop Return Desk",
		RPID:          cfg.RPID,
		RPOrigins:     cfg.RPOrigins,
	})
	if err != nil {
		return nil, fmt.Errorf("webauthn: %w", err)
	}

	reg := metrics.New()

	r := gin.New()
	r.Use(logger.Recovery(log), logger.Gin(log), reg.Middleware())
	useCORS(r, cfg.WebOrigin)

	var accounts db.Accounts
	if gdb != nil {
		accounts = db.NewRepo(gdb)
	} else {
		accounts = db.NewMemoryAccounts()
	}

	riStore := newStore[models.ReturnItem](gdb)
	lrStore := newStore[models.LaptopReturn](gdb)

	reader := stats.NewReader(time.Now).
		Register(models.ReturnItems, riStore).
		Register(models.LaptopReturns, lrStore)

	a := &App{
		Router: r, DB: gdb, RDB: rdb, WA: wa, Config: cfg,
		Log: log, Metrics: reg, Accounts: accounts,

		ReturnItems:   newCollection[models.ReturnItem](riStore, validation.ReturnItems, log, reg),
		LaptopReturns: newCollection[models.LaptopReturn](lrStore, validation.LaptopReturns, log, reg),
		Stats:         reader,
		Printer:       printing.NewRenderer(time.Now),

		appSess: session.NewAppSessionStore(rdb, cfg.AppSessionTTL),
		waSess:  session.NewStore(rdb, cfg.SessionTTL),
		gate:    session.NewSubmitGate(rdb, cfg.SubmitGateTTL),
	}
	return a, nil
}

func newStore[T any, P models.Entity[T]](gdb *gorm.DB) recordStore[T] {
	if gdb == nil {
		return db.NewMemoryStore[T, P]()
	}
	return db.NewRecordStore[T, P](gdb)
}

func newCollection[T any, P models.Entity[T]](store records.Store[T], schema records.Schema[T], log *zap.Logger, reg *metrics.Registry) *Collection[T, P] {
	a := records.NewAdapter[T, P](store, records.WithLogger(log), records.WithMetrics(reg))
	sig := records.NewSignal()
	return &Collection[T, P]{
		Adapter: a,
		Schema:  schema,
		Signal:  sig,
		Facets:  records.NewFacetCache(a, sig),
	}
}

func (a *App) Close() {
	_ = a.RDB.Close()
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = a.Log.Sync()
}
