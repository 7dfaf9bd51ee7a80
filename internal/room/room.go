// Package room defines the typed room identifiers the hub distributes
// events to. A room is a named interest group: a user's private
// notification channel, a portfolio's follower audience, a market
// symbol, or a discussion thread.
package room

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind enumerates the four room families.
type Kind string

const (
	KindUser      Kind = "user"
	KindPortfolio Kind = "portfolio"
	KindSymbol    Kind = "symbol"
	KindThread    Kind = "thread"
)

// IsValid reports whether k is one of the known room kinds.
func (k Kind) IsValid() bool {
	switch k {
	case KindUser, KindPortfolio, KindSymbol, KindThread:
		return true
	default:
		return false
	}
}

var (
	ErrUnknownKind = errors.New("unknown room kind")
	ErrEmptyKey    = errors.New("room key is empty")
	ErrInvalidKey  = errors.New("invalid room key")
)

// ID is a tagged room identifier. The wire string is always derived
// through String(); raw concatenated strings never enter the directory.
type ID struct {
	Kind Kind
	Key  string
}

// String renders the canonical wire form, e.g. "symbol:AAPL".
func (id ID) String() string {
	return string(id.Kind) + ":" + id.Key
}

// IsZero reports whether id is the zero value.
func (id ID) IsZero() bool {
	return id.Kind == "" && id.Key == ""
}

// User is the private notification room of one identity.
func User(userID uint) ID {
	return ID{Kind: KindUser, Key: strconv.FormatUint(uint64(userID), 10)}
}

// Portfolio is the room of one portfolio's owner and followers.
func Portfolio(portfolioID uint) ID {
	return ID{Kind: KindPortfolio, Key: strconv.FormatUint(uint64(portfolioID), 10)}
}

// Symbol is the public market-data room for one ticker. Tickers are
// normalized to upper case so "btc" and "BTC" name the same room.
func Symbol(ticker string) ID {
	return ID{Kind: KindSymbol, Key: strings.ToUpper(strings.TrimSpace(ticker))}
}

// Thread is the public room for one discussion thread.
func Thread(threadID string) ID {
	return ID{Kind: KindThread, Key: threadID}
}

// New validates a kind/key pair coming off the wire and builds the ID.
// Numeric keys are required for user and portfolio rooms.
func New(kind Kind, key string) (ID, error) {
	if !kind.IsValid() {
		return ID{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return ID{}, ErrEmptyKey
	}

	switch kind {
	case KindUser, KindPortfolio:
		n, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			return ID{}, fmt.Errorf("%w: %q is not numeric", ErrInvalidKey, key)
		}
		if kind == KindUser {
			return User(uint(n)), nil
		}
		return Portfolio(uint(n)), nil
	case KindSymbol:
		return Symbol(key), nil
	default:
		return Thread(key), nil
	}
}

// Parse is the inverse of String.
func Parse(s string) (ID, error) {
	kind, key, ok := strings.Cut(s, ":")
	if !ok {
		return ID{}, fmt.Errorf("%w: missing separator in %q", ErrInvalidKey, s)
	}
	return New(Kind(kind), key)
}

// UserID returns the numeric key of a user room. The second return is
// false for any other kind.
func (id ID) UserID() (uint, bool) {
	if id.Kind != KindUser {
		return 0, false
	}
	n, err := strconv.ParseUint(id.Key, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(n), true
}

// PortfolioID returns the numeric key of a portfolio room.
func (id ID) PortfolioID() (uint, bool) {
	if id.Kind != KindPortfolio {
		return 0, false
	}
	n, err := strconv.ParseUint(id.Key, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(n), true
}
