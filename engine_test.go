package stockfolio

import (
	"math"
	"reflect"
	"testing"
	"time"
)

// approx compares floats with the tolerance used throughout the engine tests.
func approx(got, want float64) bool {
	return math.Abs(got-want) < 1e-9
}

// testLedger builds the canonical fixture of the engine tests: a position
// bought in two lots and partially sold.
func testLedger(t *testing.T) []Transaction {
	t.Helper()
	return []Transaction{
		NewBuy(NewDate(2025, time.January, 10), "AAPL", "Apple Inc.", 10, 100),
		NewBuy(NewDate(2025, time.February, 5), "AAPL", "", 10, 200),
		NewSell(NewDate(2025, time.March, 1), "AAPL", "", 5, 180),
	}
}

func findSummary(t *testing.T, summaries []StockSummary, symbol string) StockSummary {
	t.Helper()
	for _, s := range summaries {
		if s.Symbol == symbol {
			return s
		}
	}
	t.Fatalf("no summary for symbol %q", symbol)
	return StockSummary{}
}

func TestComputeSummaries_AverageCost(t *testing.T) {
	summaries, _ := ComputeSummaries(testLedger(t)[:2], nil)

	s := findSummary(t, summaries, "AAPL")
	if !approx(s.AvgCost, 150) {
		t.Errorf("AvgCost = %v, want 150", s.AvgCost)
	}
	if !approx(s.TotalShares, 20) {
		t.Errorf("TotalShares = %v, want 20", s.TotalShares)
	}
	if !approx(s.TotalInvested, 3000) {
		t.Errorf("TotalInvested = %v, want 3000", s.TotalInvested)
	}
	if s.Name != "Apple Inc." {
		t.Errorf("Name = %q, want first-seen name to win", s.Name)
	}
}

func TestComputeSummaries_RealizedPLOnPartialSell(t *testing.T) {
	summaries, _ := ComputeSummaries(testLedger(t), nil)

	s := findSummary(t, summaries, "AAPL")
	if !approx(s.RealizedPL, 150) {
		t.Errorf("RealizedPL = %v, want 5*(180-150) = 150", s.RealizedPL)
	}
	if !approx(s.TotalShares, 15) {
		t.Errorf("TotalShares = %v, want 15", s.TotalShares)
	}
	if !approx(s.TotalInvested, 2250) {
		t.Errorf("TotalInvested = %v, want 15*150 = 2250", s.TotalInvested)
	}
	if !approx(s.AvgCost, 150) {
		t.Errorf("AvgCost = %v, want unchanged 150 after a sell", s.AvgCost)
	}
}

func TestComputeSummaries_Determinism(t *testing.T) {
	txs := testLedger(t)
	txs = append(txs,
		NewBuy(NewDate(2025, time.January, 2), "SHOP", "Shopify", 3, 90),
		NewSell(NewDate(2025, time.April, 2), "SHOP", "", 1, 120),
	)
	prices := PriceMap{"AAPL": 190, "SHOP": 110}

	s1, st1 := ComputeSummaries(txs, prices)
	s2, st2 := ComputeSummaries(txs, prices)

	if !reflect.DeepEqual(s1, s2) {
		t.Error("summaries differ between two identical passes")
	}
	if !reflect.DeepEqual(st1, st2) {
		t.Error("stats differ between two identical passes")
	}
}

func TestComputeSummaries_CloseOutClamp(t *testing.T) {
	// Three thirds of a share leave 1e-16-ish residue with binary floats.
	third := 10.0 / 3.0
	txs := []Transaction{
		NewBuy(NewDate(2025, time.May, 1), "VTI", "", 10, 250),
		NewSell(NewDate(2025, time.May, 2), "VTI", "", third, 260),
		NewSell(NewDate(2025, time.May, 3), "VTI", "", third, 260),
		NewSell(NewDate(2025, time.May, 4), "VTI", "", third, 260),
	}

	summaries, _ := ComputeSummaries(txs, nil)
	s := findSummary(t, summaries, "VTI")
	if s.TotalShares != 0 {
		t.Errorf("TotalShares = %v, want exactly 0 after close-out", s.TotalShares)
	}
	if s.TotalInvested != 0 {
		t.Errorf("TotalInvested = %v, want exactly 0 after close-out", s.TotalInvested)
	}
	if s.AvgCost != 0 {
		t.Errorf("AvgCost = %v, want 0 when nothing is held", s.AvgCost)
	}
}

func TestComputeSummaries_CurrencyIsolation(t *testing.T) {
	usd := NewBuy(NewDate(2025, time.June, 1), "MSFT", "Microsoft", 2, 400)
	cad := NewBuy(NewDate(2025, time.June, 1), "SHOP", "Shopify", 4, 100)
	cad.Currency = CAD

	summaries, stats := ComputeSummaries([]Transaction{usd, cad}, nil)

	if len(summaries) != 2 {
		t.Fatalf("len(summaries) = %d, want 2", len(summaries))
	}
	if got := stats[USD].TotalCostBasis; !approx(got, 800) {
		t.Errorf("USD cost basis = %v, want 800", got)
	}
	if got := stats[CAD].TotalCostBasis; !approx(got, 400) {
		t.Errorf("CAD cost basis = %v, want 400", got)
	}
	if got := stats[USD].TotalValue; !approx(got, 800) {
		t.Errorf("USD totalValue = %v, want cost-basis fallback 800", got)
	}
}

func TestComputeSummaries_SkipsNonFiniteRecords(t *testing.T) {
	good := NewBuy(NewDate(2025, time.July, 1), "NVDA", "", 5, 100)
	badShares := NewBuy(NewDate(2025, time.July, 2), "NVDA", "", math.NaN(), 100)
	badPrice := NewSell(NewDate(2025, time.July, 3), "NVDA", "", 1, math.Inf(1))

	summaries, _ := ComputeSummaries([]Transaction{good, badShares, badPrice}, nil)
	s := findSummary(t, summaries, "NVDA")
	if !approx(s.TotalShares, 5) || !approx(s.TotalInvested, 500) {
		t.Errorf("state = (%v, %v), want malformed records skipped (5, 500)",
			s.TotalShares, s.TotalInvested)
	}
	if len(s.Transactions) != 3 {
		t.Errorf("len(Transactions) = %d, want all 3 kept in the drill-down view", len(s.Transactions))
	}
}

func TestComputeSummaries_OversellGoesNegative(t *testing.T) {
	// Selling more than held is not rejected, the holding goes negative.
	txs := []Transaction{
		NewBuy(NewDate(2025, time.July, 1), "GME", "", 5, 20),
		NewSell(NewDate(2025, time.July, 2), "GME", "", 8, 30),
	}

	summaries, _ := ComputeSummaries(txs, nil)
	s := findSummary(t, summaries, "GME")
	if !approx(s.TotalShares, -3) {
		t.Errorf("TotalShares = %v, want -3", s.TotalShares)
	}
	// realized on the 8 sold against the 20 average: 8*(30-20)
	if !approx(s.RealizedPL, 80) {
		t.Errorf("RealizedPL = %v, want 80", s.RealizedPL)
	}
}

func TestComputeSummaries_SellFromEmptyPosition(t *testing.T) {
	// An orphan sell uses a zero average cost, all proceeds are realized.
	txs := []Transaction{
		NewSell(NewDate(2025, time.July, 2), "TSLA", "", 2, 300),
	}

	summaries, _ := ComputeSummaries(txs, nil)
	s := findSummary(t, summaries, "TSLA")
	if !approx(s.RealizedPL, 600) {
		t.Errorf("RealizedPL = %v, want 600", s.RealizedPL)
	}
	if !approx(s.TotalShares, -2) {
		t.Errorf("TotalShares = %v, want -2", s.TotalShares)
	}
}

func TestComputeSummaries_GroupingAndOrder(t *testing.T) {
	txs := []Transaction{
		NewBuy(NewDate(2025, time.March, 2), "msft ", "", 1, 400),
		NewBuy(NewDate(2025, time.January, 2), "AAPL", "", 1, 100),
		NewBuy(NewDate(2025, time.February, 2), " MSFT", "", 1, 410),
		NewBuy(NewDate(2025, time.April, 2), "", "Mystery", 1, 10),
	}

	summaries, _ := ComputeSummaries(txs, nil)
	var symbols []string
	for _, s := range summaries {
		symbols = append(symbols, s.Symbol)
	}
	want := []string{"AAPL", "MSFT", UnknownSymbol}
	if !reflect.DeepEqual(symbols, want) {
		t.Fatalf("symbols = %v, want grouped and sorted %v", symbols, want)
	}

	msft := findSummary(t, summaries, "MSFT")
	if len(msft.Transactions) != 2 {
		t.Fatalf("MSFT group size = %d, want 2", len(msft.Transactions))
	}
	if msft.Transactions[0].Date.After(msft.Transactions[1].Date) {
		t.Error("group transactions are not in date order")
	}
}

func TestComputeSummaries_StableTieBreak(t *testing.T) {
	// Two trades on the same day replay in arrival order: buy then sell
	// realizes against the buy's cost; the reverse order would not.
	day := NewDate(2025, time.August, 1)
	buy := NewBuy(day, "AMD", "", 10, 100)
	sell := NewSell(day, "AMD", "", 10, 110)

	summaries, _ := ComputeSummaries([]Transaction{buy, sell}, nil)
	s := findSummary(t, summaries, "AMD")
	if !approx(s.RealizedPL, 100) {
		t.Errorf("RealizedPL = %v, want 100 (buy replayed before same-day sell)", s.RealizedPL)
	}
}

func TestComputeSummaries_UnrealizedWithLivePrice(t *testing.T) {
	txs := testLedger(t)
	summaries, stats := ComputeSummaries(txs, PriceMap{"AAPL": 200})

	s := findSummary(t, summaries, "AAPL")
	mv, ok := s.MarketValue()
	if !ok || !approx(mv, 3000) {
		t.Errorf("MarketValue = (%v, %v), want (3000, true)", mv, ok)
	}
	upl, ok := s.UnrealizedPL()
	if !ok || !approx(upl, 750) {
		t.Errorf("UnrealizedPL = (%v, %v), want (750, true)", upl, ok)
	}
	if got := stats[USD].TotalUnrealizedPL; !approx(got, 750) {
		t.Errorf("stats unrealized = %v, want 750", got)
	}
	if got := stats[USD].TotalValue; !approx(got, 3000) {
		t.Errorf("stats totalValue = %v, want 3000", got)
	}
}

func TestComputeSummaries_EmptyInput(t *testing.T) {
	summaries, stats := ComputeSummaries(nil, nil)
	if len(summaries) != 0 || len(stats) != 0 {
		t.Errorf("empty input yields (%d summaries, %d stats), want (0, 0)",
			len(summaries), len(stats))
	}
}

func TestSortSummaries(t *testing.T) {
	summaries := []StockSummary{
		{Symbol: "ZM", Name: "Zoom"},
		{Symbol: "AAPL", Name: "Apple"},
		{Symbol: "MSFT", Name: "Microsoft"},
	}

	SortSummaries(summaries, SortByName)
	if summaries[0].Name != "Apple" || summaries[2].Name != "Zoom" {
		t.Errorf("SortByName order = %v", summaries)
	}

	SortSummaries(summaries, SortBySymbol)
	if summaries[0].Symbol != "AAPL" || summaries[2].Symbol != "ZM" {
		t.Errorf("SortBySymbol order = %v", summaries)
	}
}

func TestCurrencyStats_PercentReturnGuard(t *testing.T) {
	cs := CurrencyStats{Currency: USD, TotalCostBasis: 0, TotalUnrealizedPL: 42}
	if got := cs.PercentReturn(); got != 0 {
		t.Errorf("PercentReturn with zero cost basis = %v, want 0", got)
	}

	cs = CurrencyStats{Currency: USD, TotalCostBasis: 1000, TotalUnrealizedPL: 150}
	if got := cs.PercentReturn(); !got.Equal(15) {
		t.Errorf("PercentReturn = %v, want 15%%", got)
	}
}
