package feed

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"stream-service/internal/hub"
	"stream-service/internal/room"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakePublisher records every publish. Safe for concurrent use.
type fakePublisher struct {
	mu    sync.Mutex
	calls []publishCall
}

type publishCall struct {
	room    room.ID
	event   string
	payload any
}

func (f *fakePublisher) Publish(id room.ID, event string, payload any) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, publishCall{room: id, event: event, payload: payload})
	return 1
}

func (f *fakePublisher) snapshot() []publishCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]publishCall, len(f.calls))
	copy(out, f.calls)
	return out
}

// fixedRand always returns the same float.
type fixedRand struct{ v float64 }

func (r fixedRand) Float64() float64 { return r.v }

// fixedClock always returns the same instant.
type fixedClock struct{ at time.Time }

func (c fixedClock) Now() time.Time { return c.at }

func TestSyntheticSourceWalk(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	// Float64 = 1.0 makes every step +1% of the last price.
	src := NewSyntheticSource(map[string]float64{"AAPL": 100}, fixedRand{1}, fixedClock{now})

	u1 := src.NextUpdate("AAPL")
	if u1.Symbol != "AAPL" {
		t.Errorf("Symbol = %q, want AAPL", u1.Symbol)
	}
	if u1.Price != 101 {
		t.Errorf("Price = %v, want 101", u1.Price)
	}
	if u1.Change != 1 {
		t.Errorf("Change = %v, want 1", u1.Change)
	}
	if u1.ChangePercent != 1 {
		t.Errorf("ChangePercent = %v, want 1", u1.ChangePercent)
	}
	if u1.Timestamp != now.UnixMilli() {
		t.Errorf("Timestamp = %d, want %d", u1.Timestamp, now.UnixMilli())
	}

	// The walk continues from the last price, not the base.
	u2 := src.NextUpdate("AAPL")
	if u2.Price != 102.01 {
		t.Errorf("second Price = %v, want 102.01", u2.Price)
	}
}

func TestSyntheticSourcePriceFloor(t *testing.T) {
	// Float64 = 0 makes every step -1%.
	src := NewSyntheticSource(map[string]float64{"X": 0.01}, fixedRand{0}, fixedClock{time.Now()})

	for i := 0; i < 10; i++ {
		if u := src.NextUpdate("X"); u.Price < 0.01 {
			t.Fatalf("Price = %v, fell below the floor", u.Price)
		}
	}
}

func TestSyntheticSourceUnknownSymbolGetsDefault(t *testing.T) {
	src := NewSyntheticSource(map[string]float64{}, fixedRand{0.5}, fixedClock{time.Now()})

	u := src.NextUpdate("NEW")
	if u.Price <= 0 {
		t.Errorf("Price = %v, want a positive default", u.Price)
	}
}

func TestDriverPublishesOnCadence(t *testing.T) {
	pub := &fakePublisher{}
	src := NewSyntheticSource(map[string]float64{"AAPL": 100, "TSLA": 200}, fixedRand{0.5}, fixedClock{time.Now()})
	d := NewDriver(Config{Interval: 5 * time.Millisecond, Symbols: []string{"AAPL", "TSLA"}}, src, pub, discardLogger())

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	deadline := time.After(time.Second)
	for len(pub.snapshot()) < 4 {
		select {
		case <-deadline:
			t.Fatalf("only %d publishes before deadline, want at least 4", len(pub.snapshot()))
		case <-time.After(5 * time.Millisecond):
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := d.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	seen := make(map[room.ID]bool)
	for _, call := range pub.snapshot() {
		if call.event != hub.EventMarketUpdate {
			t.Fatalf("event = %q, want %q", call.event, hub.EventMarketUpdate)
		}
		seen[call.room] = true
	}
	for _, sym := range []string{"AAPL", "TSLA"} {
		if !seen[room.Symbol(sym)] {
			t.Errorf("no publish for %s room", sym)
		}
	}
}

func TestDriverStopHaltsPublishing(t *testing.T) {
	pub := &fakePublisher{}
	src := NewSyntheticSource(map[string]float64{"AAPL": 100}, fixedRand{0.5}, fixedClock{time.Now()})
	d := NewDriver(Config{Interval: 5 * time.Millisecond, Symbols: []string{"AAPL"}}, src, pub, discardLogger())

	d.Start(context.Background())
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := d.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	count := len(pub.snapshot())
	time.Sleep(30 * time.Millisecond)
	if after := len(pub.snapshot()); after != count {
		t.Errorf("publishes continued after Stop: %d -> %d", count, after)
	}
}

// fakeTickReader replays scripted messages, then blocks until the
// context is canceled.
type fakeTickReader struct {
	msgs   []kafka.Message
	closed bool
}

func (f *fakeTickReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(f.msgs) == 0 {
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	msg := f.msgs[0]
	f.msgs = f.msgs[1:]
	return msg, nil
}

func (f *fakeTickReader) Close() error {
	f.closed = true
	return nil
}

func TestKafkaIngestorPublishesTicks(t *testing.T) {
	pub := &fakePublisher{}
	reader := &fakeTickReader{msgs: []kafka.Message{
		{Value: []byte(`{"symbol":"AAPL","price":187.5,"change":1.2,"changePercent":0.6,"timestamp":1700000000000}`)},
		{Value: []byte(`not json`)},
		{Value: []byte(`{"price":1.0}`)},
		{Value: []byte(`{"symbol":"TSLA","price":242.1}`)},
	}}
	ing := NewKafkaIngestor(reader, pub, discardLogger())

	if err := ing.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	deadline := time.After(time.Second)
	for len(pub.snapshot()) < 2 {
		select {
		case <-deadline:
			t.Fatalf("only %d publishes before deadline, want 2", len(pub.snapshot()))
		case <-time.After(5 * time.Millisecond):
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := ing.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if !reader.closed {
		t.Error("reader was not closed on Stop")
	}

	calls := pub.snapshot()
	if len(calls) != 2 {
		t.Fatalf("got %d publishes, want 2 (malformed ticks must be dropped)", len(calls))
	}
	if calls[0].room != room.Symbol("AAPL") || calls[1].room != room.Symbol("TSLA") {
		t.Errorf("publish rooms = %v, %v; want symbol:AAPL, symbol:TSLA", calls[0].room, calls[1].room)
	}
	update, ok := calls[0].payload.(hub.MarketUpdate)
	if !ok {
		t.Fatalf("payload type = %T, want hub.MarketUpdate", calls[0].payload)
	}
	if update.Price != 187.5 {
		t.Errorf("Price = %v, want 187.5", update.Price)
	}
}

// cacheRecorder captures cached quotes.
type cacheRecorder struct {
	mu     sync.Mutex
	quotes []hub.MarketUpdate
}

func (c *cacheRecorder) CacheQuote(_ context.Context, update hub.MarketUpdate) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.quotes = append(c.quotes, update)
	return nil
}

func TestCachingPublisherCachesMarketUpdates(t *testing.T) {
	pub := &fakePublisher{}
	cache := &cacheRecorder{}
	cp := NewCachingPublisher(pub, cache, discardLogger())

	update := hub.MarketUpdate{Symbol: "AAPL", Price: 187.5}
	cp.Publish(room.Symbol("AAPL"), hub.EventMarketUpdate, update)
	cp.Publish(room.User(1), hub.EventTradeConfirmation, hub.TradeConfirmation{TradeID: "t-1"})

	if len(pub.snapshot()) != 2 {
		t.Errorf("downstream publishes = %d, want 2", len(pub.snapshot()))
	}
	cache.mu.Lock()
	defer cache.mu.Unlock()
	if len(cache.quotes) != 1 {
		t.Fatalf("cached quotes = %d, want 1 (only market updates are cached)", len(cache.quotes))
	}
	if cache.quotes[0].Symbol != "AAPL" {
		t.Errorf("cached symbol = %q, want AAPL", cache.quotes[0].Symbol)
	}
}
