package feed

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"stream-service/internal/hub"
)

// Rand is the randomness the synthetic source consumes; tests pin it.
type Rand interface {
	Float64() float64
}

// Clock supplies timestamps; tests pin it.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// SyntheticSource random-walks each symbol around its base price. It
// stands in for a real market-data subscription in development and
// tests.
type SyntheticSource struct {
	mu         sync.Mutex
	basePrices map[string]float64
	lastPrices map[string]float64
	rand       Rand
	clock      Clock
}

func NewSyntheticSource(basePrices map[string]float64, rnd Rand, clock Clock) *SyntheticSource {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if clock == nil {
		clock = realClock{}
	}

	last := make(map[string]float64, len(basePrices))
	for sym, p := range basePrices {
		last[sym] = p
	}

	return &SyntheticSource{
		basePrices: basePrices,
		lastPrices: last,
		rand:       rnd,
		clock:      clock,
	}
}

// NextUpdate advances the walk for one symbol. Prices drift at most 1%
// per step and never go below one cent.
func (s *SyntheticSource) NextUpdate(symbol string) hub.MarketUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()

	base, ok := s.basePrices[symbol]
	if !ok {
		base = 100
		s.basePrices[symbol] = base
		s.lastPrices[symbol] = base
	}
	last := s.lastPrices[symbol]

	step := (s.rand.Float64()*2 - 1) * 0.01 * last
	price := math.Max(0.01, last+step)
	s.lastPrices[symbol] = price

	change := price - base
	changePercent := 0.0
	if base != 0 {
		changePercent = change / base * 100
	}

	return hub.MarketUpdate{
		Symbol:        symbol,
		Price:         round2(price),
		Change:        round2(change),
		ChangePercent: round2(changePercent),
		Timestamp:     s.clock.Now().UnixMilli(),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
