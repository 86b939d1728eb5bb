package stockfolio

// Allocation is the share of a single open position in its currency's market
// value, used for chart display only and never persisted.
type Allocation struct {
	Symbol      string  `json:"symbol"`
	Currency    string  `json:"currency"`
	MarketValue float64 `json:"marketValue"`
	Weight      Percent `json:"weight"`
}

// Overview is the dashboard-facing view derived from summaries and stats.
// Like the summaries it is recomputed from scratch on every pass.
type Overview struct {
	Open        []StockSummary
	Closed      []StockSummary
	Allocations []Allocation
	Returns     map[string]Percent // per-currency percent return
}

// BuildOverview partitions summaries into open and closed positions and
// derives the display metrics: allocation weights per currency and
// per-currency percent returns.
//
// Allocation weights are computed over the open positions with a known price:
// each weight is the position's market value over the sum of market values in
// the same currency, so weights per currency sum to 100% up to rounding.
// Closed positions are excluded from allocation and returns but keep
// contributing their realized P/L through the stats.
func BuildOverview(summaries []StockSummary, stats map[string]CurrencyStats) *Overview {
	o := &Overview{
		Returns: make(map[string]Percent, len(stats)),
	}

	valued := make(map[string]float64) // per-currency sum of open market values
	for _, s := range summaries {
		if s.Open() {
			o.Open = append(o.Open, s)
		} else {
			o.Closed = append(o.Closed, s)
		}
		if mv, ok := s.MarketValue(); ok {
			valued[s.Currency] += mv
		}
	}

	for _, s := range o.Open {
		mv, ok := s.MarketValue()
		if !ok {
			continue
		}
		alloc := Allocation{
			Symbol:      s.Symbol,
			Currency:    s.Currency,
			MarketValue: mv,
		}
		if total := valued[s.Currency]; total > 0 {
			alloc.Weight = Percent(mv / total * 100)
		}
		o.Allocations = append(o.Allocations, alloc)
	}

	for currency, cs := range stats {
		o.Returns[currency] = cs.PercentReturn()
	}

	return o
}
