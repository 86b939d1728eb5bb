package stockfolio

// StockSummary is the derived, per-instrument view of the portfolio. It is
// recomputed entirely on every accounting pass and carries no identity of its
// own; Transaction is the only persisted entity.
type StockSummary struct {
	Symbol   string
	Name     string
	Currency string

	TotalShares   float64 // net open quantity
	AvgCost       float64 // average cost per held share, 0 when nothing held
	CurrentPrice  float64 // live price, meaningful only when Priced
	Priced        bool    // whether a live price is known
	TotalInvested float64 // current cost basis in Currency
	RealizedPL    float64 // cumulative realized profit/loss in Currency

	// Transactions is the time-ordered list of contributing transactions,
	// a read-only view for drill-down display.
	Transactions []Transaction
}

// Open reports whether the position still holds shares.
func (s StockSummary) Open() bool { return s.TotalShares > 0 }

// MarketValue returns the live valuation of the open position.
// It reports false when no live price is known or nothing is held.
func (s StockSummary) MarketValue() (float64, bool) {
	if !s.Priced || s.TotalShares <= 0 {
		return 0, false
	}
	return s.TotalShares * s.CurrentPrice, true
}

// UnrealizedPL returns the paper profit or loss against the live price.
// It reports false when no live price is known or nothing is held.
func (s StockSummary) UnrealizedPL() (float64, bool) {
	mv, ok := s.MarketValue()
	if !ok {
		return 0, false
	}
	return mv - s.TotalInvested, true
}

// MarshalJSON writes the summary with a canonical field order, omitting the
// current price when it is unknown.
func (s StockSummary) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("symbol", s.Symbol)
	w.Optional("name", s.Name)
	w.Append("currency", s.Currency)
	w.Append("totalShares", s.TotalShares)
	w.Append("avgCost", s.AvgCost)
	if s.Priced {
		w.Append("currentPrice", s.CurrentPrice)
	}
	w.Append("totalInvested", s.TotalInvested)
	w.Append("realizedPL", s.RealizedPL)
	w.Append("transactions", s.Transactions)
	return w.MarshalJSON()
}

// CurrencyStats aggregates summaries of a single currency. USD and CAD stats
// are tracked independently and never merged; no currency conversion happens
// anywhere in the engine.
type CurrencyStats struct {
	Currency          string  `json:"currency"`
	TotalValue        float64 `json:"totalValue"`
	TotalCostBasis    float64 `json:"totalCostBasis"`
	TotalRealizedPL   float64 `json:"totalRealizedPL"`
	TotalUnrealizedPL float64 `json:"totalUnrealizedPL"`
}

// PercentReturn is the unrealized return over the cost basis, 0 when there is
// no cost basis to divide by.
func (c CurrencyStats) PercentReturn() Percent {
	if c.TotalCostBasis <= 0 {
		return 0
	}
	return Percent(c.TotalUnrealizedPL / c.TotalCostBasis * 100)
}
