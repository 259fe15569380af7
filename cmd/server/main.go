package main // POS order API server entry point

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/pos-order-api/internal/apperr"
	"github.com/iliyamo/pos-order-api/internal/config"
	"github.com/iliyamo/pos-order-api/internal/gateway"
	"github.com/iliyamo/pos-order-api/internal/handler"
	"github.com/iliyamo/pos-order-api/internal/orchestrator"
	"github.com/iliyamo/pos-order-api/internal/queue"
	"github.com/iliyamo/pos-order-api/internal/router"
	"github.com/iliyamo/pos-order-api/internal/sequence"
	"github.com/iliyamo/pos-order-api/internal/store"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Fatal("redis connection failed; the transaction store requires it")
	}

	kv := store.NewRedisKV(rdb)
	gw := gateway.New(cfg.GatewayEndpoint, cfg.WaiterEndpoint, cfg.ProjectID)
	orch := orchestrator.New(kv, gw, sequence.NewIssuer(rdb))

	e := echo.New()
	e.HTTPErrorHandler = apperr.HTTPErrorHandler
	router.RegisterRoutes(e)
	router.RegisterTransactions(e, cfg,
		handler.NewPlaceOrderHandler(orch, gw),
		handler.NewReturnOrderHandler(kv, gw))

	// consume order.confirmed events in the background; the consumer has
	// its own reconnect loop
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
