// Package renderer turns engine output into markdown reports.
//
// Each report has two halves: a view struct holding display-ready values
// (Money, Percent, formatted quantities) and a template rendering it. The
// view structs marshal to JSON too, so the same data backs both the text
// report and a machine-readable export.
package renderer

import (
	"fmt"
	"strings"
	"text/template"

	"stockfolio"
)

// Report is the display-ready summary of a whole portfolio.
type Report struct {
	// Date of the report.
	Date stockfolio.Date `json:"date"`
	// Stats holds one row per currency present in the portfolio.
	Stats []StatsRow `json:"stats"`
	// Open positions, largest first within the report order.
	Open []PositionRow `json:"open,omitempty"`
	// Closed positions, kept for their realized P/L.
	Closed []PositionRow `json:"closed,omitempty"`
	// Allocations per open priced position.
	Allocations []AllocationRow `json:"allocations,omitempty"`
}

// StatsRow is one currency's aggregate line.
type StatsRow struct {
	Currency     string             `json:"currency"`
	TotalValue   stockfolio.Money   `json:"totalValue"`
	CostBasis    stockfolio.Money   `json:"costBasis"`
	RealizedPL   stockfolio.Money   `json:"realizedPL"`
	UnrealizedPL stockfolio.Money   `json:"unrealizedPL"`
	Return       stockfolio.Percent `json:"return"`
}

// PositionRow is one instrument's line in the report.
type PositionRow struct {
	Symbol      string           `json:"symbol"`
	Name        string           `json:"name,omitempty"`
	Shares      string           `json:"shares"`
	AvgCost     stockfolio.Money `json:"avgCost"`
	Price       string           `json:"price"`
	MarketValue string           `json:"marketValue"`
	RealizedPL  stockfolio.Money `json:"realizedPL"`
}

// AllocationRow is one open position's share of its currency bucket.
type AllocationRow struct {
	Symbol   string             `json:"symbol"`
	Currency string             `json:"currency"`
	Value    stockfolio.Money   `json:"value"`
	Weight   stockfolio.Percent `json:"weight"`
}

// NewReport builds a display-ready report from the engine output.
func NewReport(on stockfolio.Date, summaries []stockfolio.StockSummary, stats map[string]stockfolio.CurrencyStats) *Report {
	o := stockfolio.BuildOverview(summaries, stats)
	r := &Report{Date: on}

	for _, currency := range []string{stockfolio.USD, stockfolio.CAD} {
		cs, ok := stats[currency]
		if !ok {
			continue
		}
		r.Stats = append(r.Stats, StatsRow{
			Currency:     cs.Currency,
			TotalValue:   stockfolio.M(cs.TotalValue, cs.Currency),
			CostBasis:    stockfolio.M(cs.TotalCostBasis, cs.Currency),
			RealizedPL:   stockfolio.M(cs.TotalRealizedPL, cs.Currency),
			UnrealizedPL: stockfolio.M(cs.TotalUnrealizedPL, cs.Currency),
			Return:       cs.PercentReturn(),
		})
	}

	for _, s := range o.Open {
		r.Open = append(r.Open, newPositionRow(s))
	}
	for _, s := range o.Closed {
		r.Closed = append(r.Closed, newPositionRow(s))
	}
	for _, a := range o.Allocations {
		r.Allocations = append(r.Allocations, AllocationRow{
			Symbol:   a.Symbol,
			Currency: a.Currency,
			Value:    stockfolio.M(a.MarketValue, a.Currency),
			Weight:   a.Weight,
		})
	}
	return r
}

func newPositionRow(s stockfolio.StockSummary) PositionRow {
	row := PositionRow{
		Symbol:     s.Symbol,
		Name:       s.Name,
		Shares:     formatShares(s.TotalShares),
		AvgCost:    stockfolio.M(s.AvgCost, s.Currency),
		Price:      "-",
		RealizedPL: stockfolio.M(s.RealizedPL, s.Currency),
	}
	if s.Priced {
		row.Price = stockfolio.M(s.CurrentPrice, s.Currency).String()
	}
	if mv, ok := s.MarketValue(); ok {
		row.MarketValue = stockfolio.M(mv, s.Currency).String()
	} else {
		// cost basis stands in when there is no live price.
		row.MarketValue = stockfolio.M(s.TotalInvested, s.Currency).String() + " *"
	}
	return row
}

// formatShares prints a share quantity without trailing decimal noise.
func formatShares(q float64) string {
	s := fmt.Sprintf("%.4f", q)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

const reportMarkdownTemplate = `# Portfolio Report on {{ .Date }}

| Currency | Total Value | Cost Basis | Realized P/L | Unrealized P/L | Return |
|:---|---:|---:|---:|---:|---:|
{{- range .Stats }}
| {{ .Currency }} | {{ .TotalValue }} | {{ .CostBasis }} | {{ .RealizedPL.SignedString }} | {{ .UnrealizedPL.SignedString }} | {{ .Return.SignedString }} |
{{- end }}

{{- if .Open }}

## Open Positions

| Symbol | Name | Shares | Avg Cost | Price | Market Value | Realized P/L |
|:---|:---|---:|---:|---:|---:|---:|
{{- range .Open }}
| {{ .Symbol }} | {{ .Name }} | {{ .Shares }} | {{ .AvgCost }} | {{ .Price }} | {{ .MarketValue }} | {{ .RealizedPL.SignedString }} |
{{- end }}

Values marked * are cost basis, no live price was available.
{{- end -}}

{{- if .Closed }}

## Closed Positions

| Symbol | Name | Realized P/L |
|:---|:---|---:|
{{- range .Closed }}
| {{ .Symbol }} | {{ .Name }} | {{ .RealizedPL.SignedString }} |
{{- end }}
{{- end -}}

{{- if .Allocations }}

## Allocation

| Symbol | Currency | Value | Weight |
|:---|:---|---:|---:|
{{- range .Allocations }}
| {{ .Symbol }} | {{ .Currency }} | {{ .Value }} | {{ .Weight }} |
{{- end }}
{{- end -}}
`

// RenderReport renders the Report struct to a markdown string.
func RenderReport(r *Report) string {
	tmpl := template.Must(template.New("report").Parse(reportMarkdownTemplate))
	var b strings.Builder
	if err := tmpl.Execute(&b, r); err != nil {
		return fmt.Sprintf("error executing template: %v", err)
	}
	return b.String()
}
