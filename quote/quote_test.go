package quote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"stockfolio"
)

// fakeSource is a scripted Source for service tests.
type fakeSource struct {
	calls  atomic.Int64
	prices stockfolio.PriceMap
	errs   []error // consumed one per call, nil afterwards
}

func (f *fakeSource) Fetch(ctx context.Context, symbols []string) (stockfolio.PriceMap, error) {
	n := f.calls.Add(1)
	if int(n) <= len(f.errs) && f.errs[n-1] != nil {
		return nil, f.errs[n-1]
	}
	out := make(stockfolio.PriceMap)
	for _, s := range symbols {
		if p, ok := f.prices[s]; ok {
			out[s] = p
		}
	}
	return out, nil
}

func fastOptions() Options {
	return Options{
		CacheTTL:          time.Minute,
		Cooldown:          time.Minute,
		RequestsPerSecond: 1000,
		Retries:           3,
	}
}

func TestServiceCachesPrices(t *testing.T) {
	src := &fakeSource{prices: stockfolio.PriceMap{"AAPL": 123.45}}
	svc := NewService(src, fastOptions())

	for i := 0; i < 3; i++ {
		price, err := svc.Price(context.Background(), "aapl")
		if err != nil {
			t.Fatal(err)
		}
		if price != 123.45 {
			t.Fatalf("price = %v, want 123.45", price)
		}
	}
	if got := src.calls.Load(); got != 1 {
		t.Errorf("source called %d times, want 1 (cache hit after first)", got)
	}
}

func TestServiceRetriesOnRateLimit(t *testing.T) {
	src := &fakeSource{
		prices: stockfolio.PriceMap{"AAPL": 100},
		errs:   []error{ErrRateLimited, ErrRateLimited},
	}
	svc := NewService(src, fastOptions())
	svc.backoff = time.Millisecond

	price, err := svc.Price(context.Background(), "AAPL")
	if err != nil {
		t.Fatal(err)
	}
	if price != 100 {
		t.Errorf("price = %v, want 100 after retries", price)
	}
	if got := src.calls.Load(); got != 3 {
		t.Errorf("source called %d times, want 3", got)
	}
}

func TestServiceDoesNotRetryHardErrors(t *testing.T) {
	src := &fakeSource{errs: []error{errors.New("boom"), errors.New("boom"), errors.New("boom")}}
	svc := NewService(src, fastOptions())

	if _, err := svc.Price(context.Background(), "AAPL"); err == nil {
		t.Fatal("expected error")
	}
	if got := src.calls.Load(); got != 1 {
		t.Errorf("source called %d times, want 1 (no retry on hard errors)", got)
	}
}

func TestServiceCoolsDownUnknownSymbols(t *testing.T) {
	src := &fakeSource{prices: stockfolio.PriceMap{"AAPL": 100}}
	svc := NewService(src, fastOptions())

	prices, err := svc.Prices(context.Background(), []string{"AAPL", "NOPE"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := prices["NOPE"]; ok {
		t.Error("unknown symbol got a price")
	}
	if prices["AAPL"] != 100 {
		t.Errorf("prices = %v", prices)
	}

	// the unknown symbol is now in cooldown: the next call must not hit the
	// source for it (and AAPL is cached), so no upstream call at all.
	before := src.calls.Load()
	if _, err := svc.Prices(context.Background(), []string{"AAPL", "NOPE"}); err != nil {
		t.Fatal(err)
	}
	if got := src.calls.Load(); got != before {
		t.Errorf("source called %d extra times, want 0", got-before)
	}
}

func TestServiceSkipsUnknownSentinel(t *testing.T) {
	src := &fakeSource{}
	svc := NewService(src, fastOptions())

	prices, err := svc.Prices(context.Background(), []string{"", "   "})
	if err != nil {
		t.Fatal(err)
	}
	if len(prices) != 0 {
		t.Errorf("prices = %v, want empty", prices)
	}
	if got := src.calls.Load(); got != 0 {
		t.Errorf("source called %d times for placeholder symbols, want 0", got)
	}
}

func TestYahooFetch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("symbols"); got != "AAPL,MSFT" {
			t.Errorf("symbols = %q", got)
		}
		fmt.Fprint(w, `{"quoteResponse":{"result":[
			{"symbol":"AAPL","regularMarketPrice":190.5},
			{"symbol":"MSFT","regularMarketPrice":420.25}
		],"error":null}}`)
	}))
	defer ts.Close()

	y := NewYahoo()
	y.BaseURL = ts.URL
	prices, err := y.Fetch(context.Background(), []string{"AAPL", "MSFT"})
	if err != nil {
		t.Fatal(err)
	}
	if prices["AAPL"] != 190.5 || prices["MSFT"] != 420.25 {
		t.Errorf("prices = %v", prices)
	}
}

func TestYahooRateLimit(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	y := NewYahoo()
	y.BaseURL = ts.URL
	if _, err := y.Fetch(context.Background(), []string{"AAPL"}); !errors.Is(err, ErrRateLimited) {
		t.Errorf("err = %v, want ErrRateLimited", err)
	}
}

func TestJSONAPIFetch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/quote/AAPL":
			fmt.Fprint(w, `{"data":{"last":190.5}}`)
		case "/quote/STR":
			// value as a localized string
			fmt.Fprint(w, `{"data":{"last":"1 234,5"}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	src := NewJSONAPI(ts.URL+"/quote/{symbol}", "$.data.last")

	prices, err := src.Fetch(context.Background(), []string{"AAPL", "STR", "MISSING"})
	if err != nil {
		t.Fatal(err)
	}
	if prices["AAPL"] != 190.5 {
		t.Errorf("AAPL = %v, want 190.5", prices["AAPL"])
	}
	if prices["STR"] != 1234.5 {
		t.Errorf("STR = %v, want parsed localized string 1234.5", prices["STR"])
	}
	if _, ok := prices["MISSING"]; ok {
		t.Error("missing symbol got a price")
	}
}
