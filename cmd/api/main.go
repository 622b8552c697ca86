package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orderservice/internal/config"
	"orderservice/internal/handler"
	"orderservice/internal/infra/db"
	infraRepo "orderservice/internal/infra/repository"
	"orderservice/internal/logger"
	"orderservice/internal/server"
	"orderservice/internal/usecase"

	"go.uber.org/zap"
)

const (
	serviceName    = "Order REST API Service"
	serviceVersion = "1.0"
)

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	//設定
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.GoEnv, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	//DB接続
	gormDB, err := db.Connect(cfg, log)
	if err != nil {
		log.Error("db connect failed", zap.Error(err))
		return err
	}
	defer func() { _ = db.Close(gormDB) }()

	if err := db.Migrate(gormDB); err != nil {
		log.Error("migrate failed", zap.Error(err))
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}

	//Usecase生成
	txm := infraRepo.NewTxManagerGorm(gormDB)
	orderUC := usecase.NewOrderUsecase(txm, &realClock{}, log)

	//Handler生成
	orderH := handler.NewOrderHandler(orderUC)
	healthH := handler.NewHealthHandler(sqlDB, serviceName, serviceVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//Server起動
	srv := server.New(cfg, log, orderH, healthH)
	if err := srv.Run(ctx); err != nil {
		log.Error("server stopped", zap.Error(err))
		return err
	}
	log.Info("server stopped")
	return nil
}
