package renderer

import (
	"fmt"
	"strings"
	"text/template"

	"stockfolio"
)

// TransactionLog is the display-ready list of a ledger's transactions.
type TransactionLog struct {
	Count int              `json:"count"`
	Rows  []TransactionRow `json:"rows,omitempty"`
}

// TransactionRow is one trade line.
type TransactionRow struct {
	ID       string           `json:"id"`
	Date     stockfolio.Date  `json:"date"`
	Type     string           `json:"type"`
	Symbol   string           `json:"symbol"`
	Name     string           `json:"name,omitempty"`
	Shares   string           `json:"shares"`
	Price    stockfolio.Money `json:"price"`
	Amount   stockfolio.Money `json:"amount"`
	Account  string           `json:"account,omitempty"`
	Exchange string           `json:"exchange,omitempty"`
}

// NewTransactionLog builds a display-ready trade list, in date order.
func NewTransactionLog(ledger *stockfolio.Ledger) *TransactionLog {
	log := &TransactionLog{Count: ledger.Len()}
	for _, tx := range ledger.Sorted() {
		log.Rows = append(log.Rows, TransactionRow{
			ID:       tx.ID,
			Date:     tx.Date,
			Type:     string(tx.Type),
			Symbol:   tx.Symbol,
			Name:     tx.Name,
			Shares:   formatShares(tx.Shares),
			Price:    stockfolio.M(tx.Price, tx.Currency),
			Amount:   stockfolio.M(tx.Shares*tx.Price, tx.Currency),
			Account:  tx.Account,
			Exchange: tx.Exchange,
		})
	}
	return log
}

const transactionLogMarkdownTemplate = `# Transactions ({{ .Count }})

{{- if .Rows }}

| Date | Type | Symbol | Shares | Price | Amount | Id |
|:---|:---|:---|---:|---:|---:|:---|
{{- range .Rows }}
| {{ .Date }} | {{ .Type }} | {{ .Symbol }} | {{ .Shares }} | {{ .Price }} | {{ .Amount }} | {{ .ID }} |
{{- end }}
{{- else }}

No transactions recorded.
{{- end -}}
`

// RenderTransactionLog renders the TransactionLog struct to a markdown string.
func RenderTransactionLog(l *TransactionLog) string {
	tmpl := template.Must(template.New("transactions").Parse(transactionLogMarkdownTemplate))
	var b strings.Builder
	if err := tmpl.Execute(&b, l); err != nil {
		return fmt.Sprintf("error executing template: %v", err)
	}
	return b.String()
}
