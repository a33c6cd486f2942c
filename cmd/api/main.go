package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"commerce/internal/config"
	"commerce/internal/domain/model"
	"commerce/internal/event"
	"commerce/internal/handler"
	"commerce/internal/infra/db"
	infraRepo "commerce/internal/infra/repository"
	"commerce/internal/logger"
	"commerce/internal/method"
	"commerce/internal/order"
	"commerce/internal/server"
	"commerce/internal/status"
	"commerce/internal/usecase"
)

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func main() {
	//設定
	if err := config.LoadEnvFile("../.env"); err != nil {
		panic(err)
	}
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.GoEnv)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		log.Fatal("db connect failed", "err", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Fatal("db migrate failed", "err", err)
	}
	exec := db.NewGormExecutor(gormDB)

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	catalogRepo := infraRepo.NewCatalogGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)

	//ステータス・支払い方法などの一覧
	orderStatuses := status.OrderCatalog()
	itemStatuses := status.ItemCatalog()
	refundMethods := method.Refunds()

	locations := make([]model.Location, 0, len(cfg.StockLocations))
	for _, l := range cfg.StockLocations {
		locations = append(locations, model.Location{Name: l.Name, DisplayName: l.DisplayName})
	}

	//注文ローダー
	entities := order.NewEntities(exec, order.EntityConfig{
		ItemStatuses:    itemStatuses,
		Locations:       model.NewLocations(locations...),
		Catalog:         catalogRepo,
		PaymentMethods:  method.Payments(),
		DispatchMethods: method.Dispatches(),
		RefundMethods:   refundMethods,
	}, log)
	loader := order.NewLoader(exec, userRepo, orderStatuses, itemStatuses, entities, log)

	//作成時のイベント（監査ログ）
	events := event.NewDispatcher(log)
	events.Subscribe(event.EntityCreateEnd, 0, event.NewAuditListener(time.Now))

	refunds := order.NewRefundCreate(exec, loader.Entities().Refunds, events,
		order.WithActor(cfg.CurrentUserID), order.WithLogger(log))

	//Usecase / Handler生成
	orderUC := usecase.NewOrderUsecase(loader, refunds, refundMethods, auditRepo, &realClock{}, log)
	orderH := handler.NewOrderHandler(orderUC, cfg.CurrentUserID)

	//Server起動
	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		if v[0] != ':' {
			addr = ":" + v
		} else {
			addr = v
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("server starting", "addr", addr, "env", cfg.GoEnv, "stock_locations", len(locations))
	if err := server.Start(ctx, addr, server.New(log, orderH)); err != nil {
		log.Fatal("server stopped", "err", err)
	}
}
