package main // continuous task runner: drains payment and report tasks

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/iliyamo/pos-order-api/internal/config"
	"github.com/iliyamo/pos-order-api/internal/database"
	"github.com/iliyamo/pos-order-api/internal/drainer"
	"github.com/iliyamo/pos-order-api/internal/gateway"
	"github.com/iliyamo/pos-order-api/internal/repository"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Fatal("redis connection failed; leader locks require it")
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("mysql connection failed: %v", err)
	}
	defer db.Close()

	tasks := repository.NewTaskRepo(db)
	lock := drainer.NewRedisLock(rdb, cfg.ProjectID)
	exec := drainer.GatewayExecutor{
		Session: gateway.New(cfg.GatewayEndpoint, cfg.WaiterEndpoint, cfg.ProjectID).Session(cfg.JobAccessToken),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	categories := []string{drainer.CategorySettlePayment, drainer.CategoryCreateReport}
	for _, category := range categories {
		d := drainer.New(category, lock, tasks, exec)
		go d.Run(ctx)
		log.Printf("task-drainer[%s]: started", category)
	}

	<-ctx.Done()
	log.Print("task runner shutting down")
}
