package stockfolio

import (
	"math"
	"slices"
	"sort"
	"strings"
)

// PriceMap maps a normalized symbol to a live price. It may be partial,
// stale, or empty at any time; a missing entry means "unknown", never an
// error.
type PriceMap map[string]float64

// Lookup returns the price for a symbol, normalizing the key first.
func (p PriceMap) Lookup(symbol string) (float64, bool) {
	v, ok := p[NormalizeSymbol(symbol)]
	return v, ok
}

// closeOutEpsilon absorbs floating-point residue when a position is fully
// closed: a net quantity within this distance of zero is forced to exactly
// zero, together with its cost basis.
const closeOutEpsilon = 1e-6

// ComputeSummaries derives per-instrument summaries and currency-partitioned
// aggregate statistics from an unordered set of transactions and a live-price
// map.
//
// The function is pure: no I/O, no side effects, and deterministic for a
// given input. Transactions are grouped by normalized symbol, each group is
// replayed in stable date order through a running average-cost state, and one
// StockSummary is emitted per group, sorted by symbol ascending.
//
// Replay rules, per group:
//   - BUY of s shares at price p: sharesHeld += s, totalCost += s*p.
//   - SELL of s shares at price p: the cost of the sold shares is s times the
//     running average cost; the difference to the proceeds is realized P/L.
//     Selling more than held is not rejected, the net quantity may go
//     negative.
//   - Records with NaN or infinite shares/price are skipped, never fatal.
//
// When a group holds shares and a live price is known, the group contributes
// its market value to the currency's totalValue; without a price the cost
// basis is the fallback valuation. A group's currency is the currency of its
// first transaction in sorted order (mixed-currency groups are a data-entry
// inconsistency; the remainder of the group is reported in that currency
// rather than split into sub-summaries).
func ComputeSummaries(transactions []Transaction, prices PriceMap) ([]StockSummary, map[string]CurrencyStats) {
	groups := make(map[string][]Transaction)
	for _, tx := range transactions {
		tx = tx.Normalize()
		groups[tx.Symbol] = append(groups[tx.Symbol], tx)
	}

	symbols := make([]string, 0, len(groups))
	for symbol := range groups {
		symbols = append(symbols, symbol)
	}
	slices.Sort(symbols)

	summaries := make([]StockSummary, 0, len(groups))
	stats := make(map[string]CurrencyStats)

	for _, symbol := range symbols {
		group := groups[symbol]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Date.Before(group[j].Date)
		})

		currency := group[0].Currency
		name := ""
		var sharesHeld, totalCost, realizedPL float64

		for _, tx := range group {
			if name == "" {
				name = tx.Name
			}
			if !finite(tx.Shares) || !finite(tx.Price) {
				continue // malformed record, a no-op for the replay
			}
			switch tx.Type {
			case Buy:
				sharesHeld += tx.Shares
				totalCost += tx.Shares * tx.Price
			case Sell:
				var avg float64
				if sharesHeld != 0 {
					avg = totalCost / sharesHeld
				}
				costOfSold := tx.Shares * avg
				realizedPL += tx.Shares*tx.Price - costOfSold
				sharesHeld -= tx.Shares
				totalCost -= costOfSold
			}
		}

		// Close-out clamp: a fully closed position must be exactly flat.
		if math.Abs(sharesHeld) <= closeOutEpsilon {
			sharesHeld = 0
			totalCost = 0
		}

		var avgCost float64
		if sharesHeld != 0 {
			avgCost = totalCost / sharesHeld
		}

		summary := StockSummary{
			Symbol:        symbol,
			Name:          name,
			Currency:      currency,
			TotalShares:   sharesHeld,
			AvgCost:       avgCost,
			TotalInvested: totalCost,
			RealizedPL:    realizedPL,
			Transactions:  group,
		}
		if price, ok := prices.Lookup(symbol); ok {
			summary.CurrentPrice = price
			summary.Priced = true
		}
		summaries = append(summaries, summary)

		bucket := stats[currency]
		bucket.Currency = currency
		bucket.TotalCostBasis += totalCost
		bucket.TotalRealizedPL += realizedPL
		if summary.Priced && sharesHeld > 0 {
			bucket.TotalValue += sharesHeld * summary.CurrentPrice
			bucket.TotalUnrealizedPL += sharesHeld*summary.CurrentPrice - totalCost
		} else {
			// cost basis is the fallback valuation when no live price exists.
			bucket.TotalValue += totalCost
		}
		stats[currency] = bucket
	}

	return summaries, stats
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// SortPolicy selects the presentation order of emitted summaries.
// The engine emits by symbol; by-name ordering is a display concern.
type SortPolicy int

const (
	SortBySymbol SortPolicy = iota
	SortByName
)

// SortSummaries reorders summaries in place according to the policy.
func SortSummaries(summaries []StockSummary, policy SortPolicy) {
	switch policy {
	case SortByName:
		sort.SliceStable(summaries, func(i, j int) bool {
			return strings.Compare(summaries[i].Name, summaries[j].Name) < 0
		})
	default:
		sort.SliceStable(summaries, func(i, j int) bool {
			return summaries[i].Symbol < summaries[j].Symbol
		})
	}
}
