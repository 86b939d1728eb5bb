package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"stockfolio"
)

// yahooEndpoint is the public batch quote endpoint.
const yahooEndpoint = "https://query1.finance.yahoo.com/v7/finance/quote"

// Yahoo fetches quotes from the Yahoo Finance v7 quote API. One request
// resolves a whole batch of symbols.
type Yahoo struct {
	client *http.Client
	// BaseURL overrides the endpoint, for tests.
	BaseURL string
}

// NewYahoo creates a Yahoo source with a sensible timeout.
func NewYahoo() *Yahoo {
	return &Yahoo{client: &http.Client{Timeout: 10 * time.Second}}
}

func (y *Yahoo) Fetch(ctx context.Context, symbols []string) (stockfolio.PriceMap, error) {
	base := y.BaseURL
	if base == "" {
		base = yahooEndpoint
	}
	addr := fmt.Sprintf("%s?symbols=%s", base, strings.Join(symbols, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot create quote request: %w", err)
	}
	// the public endpoint rejects requests without a browser user agent.
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept", "application/json")

	resp, err := y.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cannot reach quote endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote endpoint returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("cannot read quote response: %w", err)
	}

	var parsed struct {
		QuoteResponse struct {
			Result []struct {
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"result"`
			Error any `json:"error"`
		} `json:"quoteResponse"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("cannot parse quote response: %w", err)
	}
	if parsed.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("quote endpoint error: %v", parsed.QuoteResponse.Error)
	}

	prices := make(stockfolio.PriceMap, len(parsed.QuoteResponse.Result))
	for _, r := range parsed.QuoteResponse.Result {
		if r.RegularMarketPrice <= 0 {
			continue
		}
		prices[stockfolio.NormalizeSymbol(r.Symbol)] = r.RegularMarketPrice
	}
	return prices, nil
}

var _ Source = (*Yahoo)(nil)
