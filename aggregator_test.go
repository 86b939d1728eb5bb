package stockfolio

import (
	"math"
	"testing"
	"time"
)

func TestBuildOverview_PartitionsOpenAndClosed(t *testing.T) {
	txs := []Transaction{
		NewBuy(NewDate(2025, time.January, 5), "AAPL", "Apple", 10, 100),
		NewBuy(NewDate(2025, time.January, 5), "MSFT", "Microsoft", 2, 400),
		NewBuy(NewDate(2025, time.February, 5), "GME", "GameStop", 5, 20),
		NewSell(NewDate(2025, time.March, 5), "GME", "", 5, 25),
	}

	summaries, stats := ComputeSummaries(txs, PriceMap{"AAPL": 120, "MSFT": 450})
	o := BuildOverview(summaries, stats)

	if len(o.Open) != 2 {
		t.Errorf("len(Open) = %d, want 2", len(o.Open))
	}
	if len(o.Closed) != 1 || o.Closed[0].Symbol != "GME" {
		t.Errorf("Closed = %v, want just the flat GME position", o.Closed)
	}
	// Closed positions never appear in the allocation.
	for _, a := range o.Allocations {
		if a.Symbol == "GME" {
			t.Error("closed position leaked into allocations")
		}
	}
}

func TestBuildOverview_WeightsSumToHundredPerCurrency(t *testing.T) {
	usd1 := NewBuy(NewDate(2025, time.January, 5), "AAPL", "", 10, 100)
	usd2 := NewBuy(NewDate(2025, time.January, 5), "MSFT", "", 3, 400)
	cad := NewBuy(NewDate(2025, time.January, 5), "SHOP", "", 7, 90)
	cad.Currency = CAD

	prices := PriceMap{"AAPL": 110, "MSFT": 410, "SHOP": 95}
	summaries, stats := ComputeSummaries([]Transaction{usd1, usd2, cad}, prices)
	o := BuildOverview(summaries, stats)

	sums := make(map[string]float64)
	for _, a := range o.Allocations {
		sums[a.Currency] += float64(a.Weight)
	}
	for currency, sum := range sums {
		if math.Abs(sum-100) > 0.01 {
			t.Errorf("%s weights sum to %v, want 100", currency, sum)
		}
	}
	if len(sums) != 2 {
		t.Errorf("allocations cover %d currencies, want 2", len(sums))
	}
}

func TestBuildOverview_UnpricedPositionHasNoWeight(t *testing.T) {
	txs := []Transaction{
		NewBuy(NewDate(2025, time.January, 5), "AAPL", "", 10, 100),
		NewBuy(NewDate(2025, time.January, 5), "OBSCURE", "", 4, 50),
	}

	summaries, stats := ComputeSummaries(txs, PriceMap{"AAPL": 120})
	o := BuildOverview(summaries, stats)

	if len(o.Open) != 2 {
		t.Fatalf("len(Open) = %d, want 2", len(o.Open))
	}
	if len(o.Allocations) != 1 || o.Allocations[0].Symbol != "AAPL" {
		t.Fatalf("Allocations = %v, want only the priced AAPL position", o.Allocations)
	}
	if !o.Allocations[0].Weight.Equal(100) {
		t.Errorf("sole priced position weight = %v, want 100%%", o.Allocations[0].Weight)
	}
}

func TestBuildOverview_Returns(t *testing.T) {
	txs := []Transaction{
		NewBuy(NewDate(2025, time.January, 5), "AAPL", "", 10, 100),
	}

	summaries, stats := ComputeSummaries(txs, PriceMap{"AAPL": 115})
	o := BuildOverview(summaries, stats)

	if got := o.Returns[USD]; !got.Equal(15) {
		t.Errorf("USD return = %v, want 15%%", got)
	}
}
