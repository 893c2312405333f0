package main

import (
	"context"
	"net/http"
	"os"

	"github.com/agrilink-hq/agrilink-client/internal/mockapi"
	"github.com/agrilink-hq/agrilink-client/pkg/config"
	"github.com/agrilink-hq/agrilink-client/pkg/logger"
	"github.com/joho/godotenv"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "mockapi"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "mockapi",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	addr := ":" + cfg.Mock.Port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting mock backend, demo login demo@agrilink.test / demo-password")

	server := &http.Server{
		Addr:    addr,
		Handler: mockapi.NewRouter(mockapi.NewStore(1), logg),
	}
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "mock backend stopped unexpectedly", err)
		os.Exit(1)
	}
}
