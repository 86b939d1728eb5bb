package stockfolio

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// TxType identifies the side of a trade.
type TxType string

const (
	Buy  TxType = "BUY"
	Sell TxType = "SELL"
)

// NormalizeTxType uppercases and trims a raw type string. It is idempotent.
// Unrecognized values are returned normalized but unchanged; the engine skips
// them during replay instead of failing.
func NormalizeTxType(s string) TxType {
	return TxType(strings.ToUpper(strings.TrimSpace(s)))
}

// ParseTxType parses a raw string into a Buy or Sell type.
func ParseTxType(s string) (TxType, error) {
	switch t := NormalizeTxType(s); t {
	case Buy, Sell:
		return t, nil
	default:
		return t, fmt.Errorf("unknown transaction type: %q", s)
	}
}

// UnknownSymbol is the sentinel grouping key for transactions whose symbol is
// missing. Grouping under a sentinel keeps the record visible instead of
// erroring out.
const UnknownSymbol = "UNKNOWN"

// Supported currencies. Amounts in different currencies are reported
// separately and never summed together.
const (
	USD = "USD"
	CAD = "CAD"
)

// NormalizeSymbol canonicalizes an instrument symbol: uppercase, trimmed,
// empty input maps to UnknownSymbol. It is idempotent, and must be applied
// identically at write and read time so that grouping is stable.
func NormalizeSymbol(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return UnknownSymbol
	}
	return s
}

// NormalizeMeta canonicalizes free-text classification metadata
// (account, exchange): uppercase, trimmed. Idempotent.
func NormalizeMeta(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// NormalizeCurrency canonicalizes a currency code. Anything that is not CAD,
// including the empty string, defaults to USD.
func NormalizeCurrency(s string) string {
	if strings.ToUpper(strings.TrimSpace(s)) == CAD {
		return CAD
	}
	return USD
}

// Transaction is an immutable record of one trade. It is the only persisted
// entity; summaries and stats are pure derivations recomputed on every pass.
type Transaction struct {
	ID       string  // opaque unique identifier, assigned at creation, never reused
	Date     Date    // calendar date; ties are broken by arrival order
	Type     TxType  // BUY or SELL
	Symbol   string  // normalized grouping key
	Name     string  // display name, first-seen value wins per group
	Shares   float64 // positive quantity; NaN makes the record a no-op in replay
	Price    float64 // positive price per share, in Currency
	Account  string  // normalized metadata, not part of the grouping key
	Exchange string  // normalized metadata, not part of the grouping key
	Currency string  // USD or CAD
}

// NewBuy creates a buy transaction with a fresh id and normalized fields.
func NewBuy(on Date, symbol, name string, shares, price float64) Transaction {
	return NewTransaction(on, Buy, symbol, name, shares, price)
}

// NewSell creates a sell transaction with a fresh id and normalized fields.
func NewSell(on Date, symbol, name string, shares, price float64) Transaction {
	return NewTransaction(on, Sell, symbol, name, shares, price)
}

// NewTransaction creates a transaction with a fresh id and normalized fields.
func NewTransaction(on Date, typ TxType, symbol, name string, shares, price float64) Transaction {
	return Transaction{
		ID:       uuid.NewString(),
		Date:     on,
		Type:     NormalizeTxType(string(typ)),
		Symbol:   NormalizeSymbol(symbol),
		Name:     strings.TrimSpace(name),
		Shares:   shares,
		Price:    price,
		Currency: USD,
	}
}

// Normalize returns a copy with all normalized fields in canonical form.
// Normalization is idempotent: Normalize(Normalize(t)) == Normalize(t).
func (t Transaction) Normalize() Transaction {
	t.Type = NormalizeTxType(string(t.Type))
	t.Symbol = NormalizeSymbol(t.Symbol)
	t.Name = strings.TrimSpace(t.Name)
	t.Account = NormalizeMeta(t.Account)
	t.Exchange = NormalizeMeta(t.Exchange)
	t.Currency = NormalizeCurrency(t.Currency)
	return t
}

// Equal reports whether two transactions are the same record.
func (t Transaction) Equal(o Transaction) bool { return t == o }

// MarshalJSON writes the transaction with a canonical field order, omitting
// empty metadata.
func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", t.ID)
	w.Append("date", t.Date)
	w.Append("type", t.Type)
	w.Append("symbol", t.Symbol)
	w.Optional("name", t.Name)
	w.Append("shares", t.Shares)
	w.Append("price", t.Price)
	w.Optional("account", t.Account)
	w.Optional("exchange", t.Exchange)
	w.Append("currency", t.Currency)
	return w.MarshalJSON()
}

// UnmarshalJSON reads a transaction and applies the same normalization as
// write time, so that grouping keys are stable across save/load cycles.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	type plain struct {
		ID       string  `json:"id"`
		Date     Date    `json:"date"`
		Type     string  `json:"type"`
		Symbol   string  `json:"symbol"`
		Name     string  `json:"name"`
		Shares   float64 `json:"shares"`
		Price    float64 `json:"price"`
		Account  string  `json:"account"`
		Exchange string  `json:"exchange"`
		Currency string  `json:"currency"`
	}
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*t = Transaction{
		ID:       p.ID,
		Date:     p.Date,
		Type:     TxType(p.Type),
		Symbol:   p.Symbol,
		Name:     p.Name,
		Shares:   p.Shares,
		Price:    p.Price,
		Account:  p.Account,
		Exchange: p.Exchange,
		Currency: p.Currency,
	}.Normalize()
	if t.ID == "" {
		// records imported from foreign backups may lack an id.
		t.ID = uuid.NewString()
	}
	return nil
}
