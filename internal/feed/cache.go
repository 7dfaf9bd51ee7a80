package feed

import (
	"context"
	"log/slog"
	"time"

	"stream-service/internal/hub"
	"stream-service/internal/room"
)

// QuoteCache stores the latest update per symbol.
type QuoteCache interface {
	CacheQuote(ctx context.Context, update hub.MarketUpdate) error
}

// CachingPublisher records each market update in the quote cache before
// handing it to the real publisher. Cache failures are logged and never
// block delivery.
type CachingPublisher struct {
	next   Publisher
	cache  QuoteCache
	logger *slog.Logger
}

func NewCachingPublisher(next Publisher, cache QuoteCache, logger *slog.Logger) *CachingPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachingPublisher{next: next, cache: cache, logger: logger}
}

func (p *CachingPublisher) Publish(id room.ID, event string, payload any) int {
	if update, ok := payload.(hub.MarketUpdate); ok && event == hub.EventMarketUpdate {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		if err := p.cache.CacheQuote(ctx, update); err != nil {
			p.logger.Warn("quote cache write failed", "symbol", update.Symbol, "error", err)
		}
		cancel()
	}
	return p.next.Publish(id, event, payload)
}
