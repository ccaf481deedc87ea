package main

import (
	"flag"
	"os"
	"strings"
	"syscall"

	"github.com/retailsetu/delivery-engine/internal/app"
	"github.com/retailsetu/delivery-engine/internal/config"
	"github.com/retailsetu/delivery-engine/internal/logger"
	"github.com/retailsetu/delivery-engine/internal/models"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	if cfg.Server.Mode == "release" {
		if isWeakSecret(cfg.JWT.SecretKey) {
			stdLog.Fatalf("JWT secret is weak or still the default; configure a strong random key in production")
		}
	} else if isWeakSecret(cfg.JWT.SecretKey) {
		stdLog.Printf("warning: JWT secret is weak or still the default")
	}

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("database init failed: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("database migration failed: %v", err)
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	var mode string
	flag.StringVar(&mode, "mode", app.ModeAll, "run mode: all (default), api, worker")
	flag.Parse()

	if err := app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    mode,
	}); err != nil {
		stdLog.Fatalf("service run failed: %v", err)
	}
}

func isWeakSecret(secret string) bool {
	if len(secret) < 32 {
		return true
	}
	normalized := strings.ToLower(secret)
	return strings.Contains(normalized, "change-me") ||
		strings.Contains(normalized, "change-in-production") ||
		strings.Contains(normalized, "your-secret-key")
}
