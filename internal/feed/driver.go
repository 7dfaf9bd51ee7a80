package feed

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"stream-service/internal/hub"
	"stream-service/internal/room"
)

// Config holds driver configuration.
type Config struct {
	Interval time.Duration // Tick cadence (default: 2s)
	Symbols  []string      // Tracked symbols
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval: 2 * time.Second,
		Symbols:  []string{"AAPL", "GOOGL", "MSFT", "TSLA", "BTC", "ETH"},
	}
}

// Driver publishes one update per tracked symbol on a fixed cadence.
// It keeps running with zero subscribers — publishing to an empty room
// is a harmless no-op — and dispatch is fire-and-forget: a slow
// dispatch for one tick never delays the next.
type Driver struct {
	cfg    Config
	source Source
	pub    Publisher
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewDriver(cfg Config, source Source, pub Publisher, logger *slog.Logger) *Driver {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{
		cfg:    cfg,
		source: source,
		pub:    pub,
		logger: logger,
	}
}

// Start begins the tick loop.
func (d *Driver) Start(ctx context.Context) error {
	d.ctx, d.cancel = context.WithCancel(ctx)

	d.wg.Add(1)
	go d.run()

	d.logger.Info("feed driver started",
		"interval", d.cfg.Interval,
		"symbols", len(d.cfg.Symbols),
	)
	return nil
}

// Stop shuts the loop down and waits for in-flight ticks.
func (d *Driver) Stop(ctx context.Context) error {
	if d.cancel != nil {
		d.cancel()
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("feed driver stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Driver) run() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return
		case <-ticker.C:
			// Dispatch off the loop so the cadence is independent of
			// dispatch latency.
			d.wg.Add(1)
			go d.tick()
		}
	}
}

func (d *Driver) tick() {
	defer d.wg.Done()

	for _, symbol := range d.cfg.Symbols {
		update := d.source.NextUpdate(symbol)
		d.pub.Publish(room.Symbol(symbol), hub.EventMarketUpdate, update)
	}
}
