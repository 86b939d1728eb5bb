// Package quote fetches live prices for instrument symbols.
//
// A Service wraps a Source with the plumbing a flaky public quote API needs:
// a short-lived cache, a rate limiter, request coalescing, retry with
// exponential backoff, and a cooldown for symbols that keep failing. Prices
// are advisory; every lookup can fail and callers fall back to cost-basis
// valuation when it does.
package quote

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"stockfolio"
)

// ErrRateLimited is returned when the upstream quote API rejects the request
// for quota reasons. The service backs off and retries before surfacing it.
var ErrRateLimited = errors.New("quote source rate limited")

// ErrUnknownSymbol is returned when the source has no quote for the symbol.
var ErrUnknownSymbol = errors.New("unknown symbol")

// Source resolves symbols to prices. Implementations are stateless; all
// caching and throttling lives in Service.
type Source interface {
	// Fetch returns prices for the given normalized symbols. The result may
	// be partial: symbols the source does not know are simply absent.
	Fetch(ctx context.Context, symbols []string) (stockfolio.PriceMap, error)
}

// Options tune a Service. The zero value picks reasonable defaults.
type Options struct {
	// CacheTTL is how long a fetched price stays fresh. Default 5 minutes.
	CacheTTL time.Duration
	// Cooldown is how long a failing symbol is skipped. Default 15 minutes.
	Cooldown time.Duration
	// RequestsPerSecond caps calls to the source. Default 2.
	RequestsPerSecond float64
	// Retries is the number of attempts per fetch. Default 3.
	Retries int
}

func (o Options) withDefaults() Options {
	if o.CacheTTL <= 0 {
		o.CacheTTL = 5 * time.Minute
	}
	if o.Cooldown <= 0 {
		o.Cooldown = 15 * time.Minute
	}
	if o.RequestsPerSecond <= 0 {
		o.RequestsPerSecond = 2
	}
	if o.Retries <= 0 {
		o.Retries = 3
	}
	return o
}

// Service is a caching, throttled front to a Source. Safe for concurrent use.
type Service struct {
	source  Source
	opts    Options
	prices  *gocache.Cache // symbol -> float64
	cooling *gocache.Cache // symbol -> struct{} while in cooldown
	limiter *rate.Limiter
	group   singleflight.Group
	backoff time.Duration // initial retry delay
}

// NewService wraps source with caching and throttling.
func NewService(source Source, opts Options) *Service {
	opts = opts.withDefaults()
	return &Service{
		source:  source,
		opts:    opts,
		prices:  gocache.New(opts.CacheTTL, 2*opts.CacheTTL),
		cooling: gocache.New(opts.Cooldown, 2*opts.Cooldown),
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
		backoff: time.Second,
	}
}

// Price returns the live price for one symbol.
func (s *Service) Price(ctx context.Context, symbol string) (float64, error) {
	symbol = stockfolio.NormalizeSymbol(symbol)
	prices, err := s.Prices(ctx, []string{symbol})
	if err != nil {
		return 0, err
	}
	price, ok := prices[symbol]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	return price, nil
}

// Prices returns live prices for the given symbols. The result may be
// partial: unknown symbols and symbols in cooldown are absent, not errors.
// A non-nil error is returned only when nothing could be fetched at all.
func (s *Service) Prices(ctx context.Context, symbols []string) (stockfolio.PriceMap, error) {
	prices := make(stockfolio.PriceMap, len(symbols))
	var missing []string
	for _, symbol := range symbols {
		symbol = stockfolio.NormalizeSymbol(symbol)
		if symbol == stockfolio.UnknownSymbol {
			continue
		}
		if v, ok := s.prices.Get(symbol); ok {
			prices[symbol] = v.(float64)
			continue
		}
		if _, cooling := s.cooling.Get(symbol); cooling {
			continue
		}
		missing = append(missing, symbol)
	}
	if len(missing) == 0 {
		return prices, nil
	}

	fetched, err := s.fetchCoalesced(ctx, missing)
	if err != nil {
		if len(prices) > 0 {
			// partial answer from the cache beats a hard failure.
			log.Printf("quote: fetch failed, serving %d cached prices: %v", len(prices), err)
			return prices, nil
		}
		return nil, err
	}

	for _, symbol := range missing {
		price, ok := fetched[symbol]
		if !ok {
			s.cooling.SetDefault(symbol, struct{}{})
			continue
		}
		s.prices.SetDefault(symbol, price)
		prices[symbol] = price
	}
	return prices, nil
}

// fetchCoalesced collapses concurrent fetches of the same symbol set into a
// single upstream call.
func (s *Service) fetchCoalesced(ctx context.Context, symbols []string) (stockfolio.PriceMap, error) {
	key := fmt.Sprint(symbols)
	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.fetchWithRetry(ctx, symbols)
	})
	if err != nil {
		return nil, err
	}
	return v.(stockfolio.PriceMap), nil
}

// fetchWithRetry calls the source under the rate limiter, retrying
// rate-limit rejections with exponential backoff.
func (s *Service) fetchWithRetry(ctx context.Context, symbols []string) (stockfolio.PriceMap, error) {
	backoff := s.backoff
	var lastErr error
	for attempt := 0; attempt < s.opts.Retries; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		prices, err := s.source.Fetch(ctx, symbols)
		if err == nil {
			return prices, nil
		}
		lastErr = err
		if !errors.Is(err, ErrRateLimited) {
			break
		}
		log.Printf("quote: rate limited, retrying in %v", backoff)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		backoff *= 2
	}
	return nil, fmt.Errorf("cannot fetch quotes for %v: %w", symbols, lastErr)
}
