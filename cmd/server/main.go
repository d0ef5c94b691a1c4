package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ogurasousui/employee-management/internal/adapters/http/handler"
	"github.com/ogurasousui/employee-management/internal/adapters/repository/postgres"
	"github.com/ogurasousui/employee-management/internal/core/employee"
	"github.com/ogurasousui/employee-management/internal/core/user"
	"github.com/ogurasousui/employee-management/internal/platform/auth"
	"github.com/ogurasousui/employee-management/internal/platform/config"
	pg "github.com/ogurasousui/employee-management/internal/platform/db/postgres"
	"github.com/ogurasousui/employee-management/internal/platform/logger"
	"github.com/ogurasousui/employee-management/internal/platform/server"
	"github.com/ogurasousui/employee-management/internal/platform/upload"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server stopped with error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, closeLog, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = closeLog() }()

	dbPool, err := pg.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize database pool")
		return err
	}
	defer dbPool.Close()

	txManager := pg.NewTransactionManager(dbPool)

	employeeRepo := postgres.NewEmployeeRepository(dbPool)
	employeeSvc := employee.NewService(employeeRepo, nil, txManager)

	userRepo := postgres.NewUserRepository(dbPool)
	userSvc := user.NewService(userRepo, user.WithBootstrapAdmin(cfg.Auth.BootstrapAdminEmail))

	uploads, err := upload.NewDiskStore(cfg.Upload.Dir, cfg.Upload.MaxBytes)
	if err != nil {
		return fmt.Errorf("init upload store: %w", err)
	}

	router := handler.NewRouter(handler.RouterDeps{
		Employees:      employeeSvc,
		Users:          userSvc,
		Tokens:         auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Uploads:        uploads,
		UploadDir:      uploads.Dir(),
		MaxUploadBytes: cfg.Upload.MaxBytes,
		Logger:         log,
	})

	srv := server.New(router, server.Options{
		ListenAddr:      cfg.Server.ListenAddr,
		HealthAddr:      cfg.Server.HealthAddr,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Logger:          log,
	})

	if err := srv.Run(ctx); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		return err
	}
	return nil
}
