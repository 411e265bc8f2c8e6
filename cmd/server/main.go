package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"

	grpcadapter "github.com/simaogato/portfolio-backend/internal/adapter/grpc"
	httpadapter "github.com/simaogato/portfolio-backend/internal/adapter/http"
	"github.com/simaogato/portfolio-backend/internal/app"
	"github.com/simaogato/portfolio-backend/internal/config"
	"github.com/simaogato/portfolio-backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(logger.Config{Level: "info"})
		bootLog.Fatal().Err(err).Msg("Invalid configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty || cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	// 1. Wire database, price sources and services
	ctx := context.Background()
	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer application.Close()

	// 2. Start HTTP Server
	server := httpadapter.New(httpadapter.Config{
		Port:        cfg.Port,
		Log:         log,
		APIToken:    cfg.APIToken,
		DevMode:     cfg.DevMode,
		Ledger:      application.Ledger,
		Performance: application.Performance,
		History:     application.History,
		Watchlist:   application.Watchlist,
		Sectors:     application.Sectors,
	})

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to serve HTTP server")
		}
	}()

	// 3. Start gRPC Server
	var rpc *grpcadapter.Listener
	if cfg.GRPCPort > 0 {
		rpc = grpcadapter.NewListener(
			grpcadapter.NewServer(application.Ledger, application.Performance, application.History, log),
			cfg.GRPCPort,
			cfg.APIToken,
			log,
		)
		go func() {
			if err := rpc.Start(); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				log.Fatal().Err(err).Msg("Failed to serve gRPC server")
			}
		}()
	}

	// Graceful shutdown
	waitForShutdown(server, rpc, log)
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the servers
func waitForShutdown(server *httpadapter.Server, rpc *grpcadapter.Listener, log zerolog.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully")

	if rpc != nil {
		rpc.Stop()
		log.Info().Msg("gRPC server stopped")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
		return
	}
	log.Info().Msg("HTTP server stopped")
}
