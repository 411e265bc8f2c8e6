package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/simaogato/portfolio-backend/internal/app"
	"github.com/simaogato/portfolio-backend/internal/config"
	"github.com/simaogato/portfolio-backend/pkg/logger"
)

// stdout and stderr are replaced in tests
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// openApp loads the configuration and wires the services.
// Logs go to stderr so command output stays readable.
func openApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
		Output: stderr,
	})

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open portfolio: %w", err)
	}
	return a, nil
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
}
