package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"

	"stockfolio"
)

// JSONAPI fetches quotes from an arbitrary JSON-over-HTTP endpoint described
// by a URL template and a jsonpath expression. It covers the long tail of
// exchange and broker APIs without writing a client per provider.
//
// URLTemplate must contain "{symbol}", replaced per request. Path is a
// jsonpath expression evaluated against the response body; it must resolve
// to a number, a numeric string, or a one-element list of either.
type JSONAPI struct {
	URLTemplate string
	Path        string

	client *http.Client
}

// NewJSONAPI creates a generic JSON quote source.
func NewJSONAPI(urlTemplate, path string) *JSONAPI {
	return &JSONAPI{
		URLTemplate: urlTemplate,
		Path:        path,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

func (j *JSONAPI) Fetch(ctx context.Context, symbols []string) (stockfolio.PriceMap, error) {
	prices := make(stockfolio.PriceMap, len(symbols))
	for _, symbol := range symbols {
		price, err := j.fetchOne(ctx, symbol)
		if err != nil {
			if err == ErrRateLimited {
				return nil, err
			}
			// the result may be partial, a bad symbol is not fatal.
			continue
		}
		prices[symbol] = price
	}
	return prices, nil
}

func (j *JSONAPI) fetchOne(ctx context.Context, symbol string) (float64, error) {
	addr := strings.ReplaceAll(j.URLTemplate, "{symbol}", symbol)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return 0, fmt.Errorf("cannot create quote request: %w", err)
	}
	resp, err := j.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("cannot reach %q: %w", addr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return 0, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("quote endpoint returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("cannot read quote response: %w", err)
	}
	var jobj any
	if err := json.Unmarshal(body, &jobj); err != nil {
		return 0, fmt.Errorf("cannot parse quote response: %w", err)
	}

	jval, err := jsonpath.Get(j.Path, jobj)
	if err != nil {
		return 0, fmt.Errorf("cannot evaluate %q on quote for %q: %w", j.Path, symbol, err)
	}
	// jsonpath may return a list of one answer instead of a single answer.
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}

	switch v := jval.(type) {
	case float64:
		return v, nil
	case string:
		// some APIs return the value as a localized string.
		v = strings.ReplaceAll(v, ",", ".")
		v = strings.ReplaceAll(v, " ", "")
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("quote for %q is an invalid string %q: %w", symbol, v, err)
		}
		return price, nil
	default:
		return 0, fmt.Errorf("quote for %q is neither a float nor a string: %v", symbol, jval)
	}
}

var _ Source = (*JSONAPI)(nil)
