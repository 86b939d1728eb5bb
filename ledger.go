package stockfolio

import (
	"fmt"
	"iter"
	"slices"
	"sort"
)

// Ledger is an ordered-insertion collection of transactions.
//
// The ledger preserves arrival order: the engine sorts by date with a stable
// sort, so two trades on the same day replay in the order they were recorded.
// Writers are expected to serialize access per user session; the ledger itself
// performs no locking.
type Ledger struct {
	transactions []Transaction
}

// NewLedger creates an empty ledger.
func NewLedger(txs ...Transaction) *Ledger {
	l := &Ledger{transactions: make([]Transaction, 0, len(txs))}
	l.Append(txs...)
	return l
}

// Append normalizes and appends transactions, preserving arrival order.
func (l *Ledger) Append(txs ...Transaction) {
	for _, tx := range txs {
		l.transactions = append(l.transactions, tx.Normalize())
	}
}

// Get returns the transaction with the given id.
func (l *Ledger) Get(id string) (Transaction, bool) {
	for _, tx := range l.transactions {
		if tx.ID == id {
			return tx, true
		}
	}
	return Transaction{}, false
}

// Update replaces the transaction with the same id, keeping its position in
// the arrival order.
func (l *Ledger) Update(tx Transaction) error {
	for i, existing := range l.transactions {
		if existing.ID == tx.ID {
			l.transactions[i] = tx.Normalize()
			return nil
		}
	}
	return fmt.Errorf("no transaction with id %q", tx.ID)
}

// Delete removes the transaction with the given id. It reports whether a
// transaction was removed.
func (l *Ledger) Delete(id string) bool {
	for i, tx := range l.transactions {
		if tx.ID == id {
			l.transactions = append(l.transactions[:i], l.transactions[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of transactions in the ledger.
func (l *Ledger) Len() int { return len(l.transactions) }

// Slice returns a copy of the transactions in arrival order.
func (l *Ledger) Slice() []Transaction {
	return slices.Clone(l.transactions)
}

// Transactions returns an iterator over transactions in arrival order.
// With no filters every transaction is yielded; with filters a transaction is
// yielded when any filter accepts it.
func (l *Ledger) Transactions(filters ...func(Transaction) bool) iter.Seq2[int, Transaction] {
	return func(yield func(int, Transaction) bool) {
		for i, tx := range l.transactions {
			accept := len(filters) == 0
			for _, filter := range filters {
				if filter(tx) {
					accept = true
					break
				}
			}
			if !accept {
				continue
			}
			if !yield(i, tx) {
				return
			}
		}
	}
}

// Sorted returns a copy of the transactions sorted by date ascending.
// The sort is stable, transactions on the same day keep their arrival order.
func (l *Ledger) Sorted() []Transaction {
	txs := slices.Clone(l.transactions)
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date.Before(txs[j].Date)
	})
	return txs
}

// OldestDate returns the date of the earliest transaction, or the zero Date
// for an empty ledger.
func (l *Ledger) OldestDate() Date {
	var oldest Date
	for i, tx := range l.transactions {
		if i == 0 || tx.Date.Before(oldest) {
			oldest = tx.Date
		}
	}
	return oldest
}

// Symbols returns an iterator over the unique normalized symbols in the
// ledger, sorted ascending.
func (l *Ledger) Symbols() iter.Seq[string] {
	return func(yield func(string) bool) {
		visited := make(map[string]struct{})
		for _, tx := range l.transactions {
			visited[tx.Symbol] = struct{}{}
		}
		symbols := make([]string, 0, len(visited))
		for s := range visited {
			symbols = append(symbols, s)
		}
		slices.Sort(symbols)
		for _, s := range symbols {
			if !yield(s) {
				return
			}
		}
	}
}

// Currencies returns an iterator over the currencies present in the ledger,
// sorted ascending.
func (l *Ledger) Currencies() iter.Seq[string] {
	return func(yield func(string) bool) {
		visited := make(map[string]struct{})
		for _, tx := range l.transactions {
			visited[tx.Currency] = struct{}{}
		}
		currencies := make([]string, 0, len(visited))
		for c := range visited {
			currencies = append(currencies, c)
		}
		slices.Sort(currencies)
		for _, c := range currencies {
			if !yield(c) {
				return
			}
		}
	}
}

// BySymbol returns a predicate that filters transactions by normalized symbol.
func BySymbol(symbol string) func(Transaction) bool {
	symbol = NormalizeSymbol(symbol)
	return func(tx Transaction) bool { return tx.Symbol == symbol }
}

// ByAccount returns a predicate that filters transactions by account.
func ByAccount(account string) func(Transaction) bool {
	account = NormalizeMeta(account)
	return func(tx Transaction) bool { return tx.Account == account }
}

// ByCurrency returns a predicate that filters transactions by currency.
func ByCurrency(currency string) func(Transaction) bool {
	currency = NormalizeCurrency(currency)
	return func(tx Transaction) bool { return tx.Currency == currency }
}
