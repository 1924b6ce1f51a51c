package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	grpcRouter "github.com/dtroode/profilekeeper/internal/api/grpc/router"
	grpcServer "github.com/dtroode/profilekeeper/internal/api/grpc/server"
	httpRouter "github.com/dtroode/profilekeeper/internal/api/http/router"
	httpServer "github.com/dtroode/profilekeeper/internal/api/http/server"
	"github.com/dtroode/profilekeeper/internal/backend"
	"github.com/dtroode/profilekeeper/internal/config"
	"github.com/dtroode/profilekeeper/internal/logger"
	"github.com/dtroode/profilekeeper/internal/model"
	"github.com/dtroode/profilekeeper/internal/server"
	"github.com/dtroode/profilekeeper/internal/service"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	store, err := backend.Open(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize profile store", "backend", cfg.Store.Backend, "error", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close profile store", "error", err)
		}
	}()
	logger.Info("profile store ready", "backend", store.Name, "namespace", cfg.Store.Namespace)

	profileService := service.NewProfile(store.Store, cfg.Store.OpTimeout, logger)

	gin.SetMode(gin.ReleaseMode)
	engine, err := httpRouter.New(profileService, store.Store, store.Name, cfg.HTTP.BasePath, cfg.Store.OpTimeout, logger.With("server", "http")).Register()
	if err != nil {
		logger.Fatal("failed to build http router", "error", err)
	}
	webServer := httpServer.NewHTTPServer(engine, fmt.Sprintf(":%s", cfg.HTTP.Port))
	adminServer := grpcServer.NewGRPCServer(
		grpcRouter.New(store.Store, cfg.Store.OpTimeout, logger.With("server", "grpc")).Register(),
		fmt.Sprintf(":%s", cfg.GRPC.Port),
	)

	servers := []struct {
		name string
		srv  model.Server
		sl   model.SecurityLayer
	}{
		{"http", webServer, server.NewSecurityLayer(cfg.HTTP.EnableHTTPS, cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)},
		{"grpc", adminServer, server.NewSecurityLayer(cfg.GRPC.EnableHTTPS, cfg.GRPC.CertFileName, cfg.GRPC.PrivateKeyFileName)},
	}

	var wg sync.WaitGroup
	for _, s := range servers {
		wg.Add(1)
		go func(name string, s model.Server, sl model.SecurityLayer) {
			defer wg.Done()
			logger.Info("Starting server on", "server", name, "address", s.Address())
			if err := s.Start(sl); err != nil {
				logger.Error("failed to start server", "server", name, "error", err)
				stop()
			}
		}(s.name, s.srv, s.sl)
	}

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	for _, s := range servers {
		if err := s.srv.Stop(shutdownCtx); err != nil {
			logger.Error("error during server shutdown", "server", s.name, "error", err, "address", s.srv.Address())
		}
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
