package main // Entry point package

import (
	"context"
	"log"

	"github.com/labstack/echo/v4"

	"github.com/NorthFirstGroup/backend/internal/clock"
	"github.com/NorthFirstGroup/backend/internal/config"
	"github.com/NorthFirstGroup/backend/internal/database"
	"github.com/NorthFirstGroup/backend/internal/handler"
	"github.com/NorthFirstGroup/backend/internal/inventory"
	"github.com/NorthFirstGroup/backend/internal/queue"
	"github.com/NorthFirstGroup/backend/internal/repository"
	"github.com/NorthFirstGroup/backend/internal/router"
	"github.com/NorthFirstGroup/backend/internal/service"
	"github.com/NorthFirstGroup/backend/migrations"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if cfg.MigrateOnStart {
		if err := migrations.Apply(context.Background(), db); err != nil {
			log.Fatalf("apply migrations: %v", err)
		}
	}

	// The seat counters guard every booking; without Redis the service
	// must not come up at all.
	rdb, err := config.NewRedisClient()
	if err != nil {
		log.Fatalf("connect redis: %v", err)
	}
	defer rdb.Close()

	seats := inventory.NewRedisSeatCache(rdb)
	svc := service.NewOrderService(
		repository.NewTxRunner(db),
		repository.NewActivityRepo(db),
		repository.NewShowtimeRepo(db),
		repository.NewSequenceRepo(db),
		repository.NewOrderRepo(db),
		seats,
		queue.NewPublisher(),
		clock.Real{},
		cfg.OrderRetentionDays,
	)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterOrders(e, handler.NewOrderHandler(svc), cfg.JWTSecret)
	router.RegisterOwnerInventory(e, handler.NewInventoryHandler(svc), cfg.JWTSecret)

	// Background consumer writing the order audit log; runs its own
	// reconnect loop for the broker.
	go func() {
		if err := queue.StartOrderConsumer(); err != nil {
			log.Printf("order consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
