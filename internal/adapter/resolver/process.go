package resolver

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simaogato/portfolio-backend/internal/domain"
)

// DefaultTimeout bounds a single resolver invocation
const DefaultTimeout = 30 * time.Second

// waitDelay bounds how long output pipes are drained after the process is killed
const waitDelay = 2 * time.Second

// Config describes how to launch the external historical price resolver
type Config struct {
	Command string        // Executable, e.g. "pricefetch"
	Args    []string      // Fixed leading arguments, e.g. a script path
	Timeout time.Duration // Per-invocation limit; DefaultTimeout when zero
}

// Process implements domain.HistoricalPriceSource by spawning the resolver program.
// The program is called as `<command> <args...> SYMBOL [YYYY-MM-DD]` with stdout
// and stderr merged.
type Process struct {
	cfg Config
	log zerolog.Logger
}

// NewProcess creates a new resolver process source
func NewProcess(cfg Config, log zerolog.Logger) *Process {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Process{
		cfg: cfg,
		log: log.With().Str("client", "resolver").Logger(),
	}
}

// PriceOn returns the close price of symbol on day.
// A non-zero exit, a timeout or an I/O error is returned as an error.
func (p *Process) PriceOn(ctx context.Context, symbol string, day time.Time) (decimal.Decimal, error) {
	output, err := p.run(ctx, symbol, day.Format(DateLayout))
	if err != nil {
		return decimal.Zero, err
	}
	return ParsePrice(output, true), nil
}

// Series returns the recent daily close series of symbol
func (p *Process) Series(ctx context.Context, symbol string) ([]domain.PricePoint, error) {
	output, err := p.run(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return ParseSeries(output)
}

func (p *Process) run(ctx context.Context, args ...string) (string, error) {
	if p.cfg.Command == "" {
		return "", fmt.Errorf("%w: resolver command is not configured", domain.ErrProvider)
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	argv := append(append([]string{}, p.cfg.Args...), args...)
	cmd := exec.CommandContext(ctx, p.cfg.Command, argv...)
	cmd.WaitDelay = waitDelay

	start := time.Now()
	out, err := cmd.CombinedOutput()
	output := string(out)

	p.log.Debug().
		Strs("args", args).
		Dur("duration", time.Since(start)).
		Int("output_bytes", len(out)).
		Msg("Resolver finished")

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return output, fmt.Errorf("%w: resolver timed out after %s", domain.ErrProvider, p.cfg.Timeout)
	}
	if err != nil {
		return output, fmt.Errorf("%w: resolver failed: %v: %s", domain.ErrProvider, err, strings.TrimSpace(output))
	}

	return output, nil
}
