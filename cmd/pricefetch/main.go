// Command pricefetch resolves historical close prices from Yahoo Finance.
//
//	pricefetch SYMBOL YYYY-MM-DD   prints PRICE:<close> of the first trading day
//	                               within three days of the date, or 0
//	pricefetch SYMBOL              prints the last 30 daily closes as
//	                               [{"date":"YYYY-MM-DD","value":<close>}, ...]
//
// It reads RAPIDAPI_KEY and RAPIDAPI_HOST from the environment. Failures are
// reported on stderr with a non-zero exit status.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/simaogato/portfolio-backend/internal/adapter/yahoo"
	"github.com/simaogato/portfolio-backend/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	// stdout carries the answer, so logs go to stderr and stay quiet by default
	log := logger.New(logger.Config{
		Level:  getEnv("PRICEFETCH_LOG_LEVEL", "error"),
		Output: os.Stderr,
	})

	apiKey := os.Getenv("RAPIDAPI_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("YAHOO_API_KEY")
	}
	client := yahoo.NewClient(yahoo.Config{
		APIKey:  apiKey,
		Host:    getEnv("RAPIDAPI_HOST", yahoo.DefaultHost),
		Timeout: 15 * time.Second,
	}, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], client, os.Stdout, os.Stderr))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
