package stockfolio

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// this file contains functions to handle the backup import/export format.
// The document carries the raw transaction list, not the derived summaries:
// summaries are recomputed from transactions on every pass, so backing them
// up would only invite drift.

// backupVersion identifies the current export document layout.
const backupVersion = 1

type backupDocument struct {
	Version      int           `json:"version"`
	ExportedAt   string        `json:"exportedAt"`
	Transactions []Transaction `json:"transactions"`
}

// ExportTransactions writes the raw transaction list to 'w' as a single
// portable JSON document.
func ExportTransactions(w io.Writer, txs []Transaction) error {
	doc := backupDocument{
		Version:      backupVersion,
		ExportedAt:   time.Now().UTC().Format(time.RFC3339),
		Transactions: txs,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("cannot write backup document: %w", err)
	}
	return nil
}

// ImportTransactions reads a backup document written by ExportTransactions
// and returns its transactions, normalized. Records without an id receive a
// fresh one during decoding.
func ImportTransactions(r io.Reader) ([]Transaction, error) {
	var doc backupDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("cannot parse backup document: %w", err)
	}
	if doc.Version > backupVersion {
		return nil, fmt.Errorf("unsupported backup version %d", doc.Version)
	}
	return doc.Transactions, nil
}

// MergeTransactions merges imported transactions into existing ones by id:
// an import with a known id replaces the existing record, others are
// appended in import order.
func MergeTransactions(existing, imported []Transaction) []Transaction {
	index := make(map[string]int, len(existing))
	merged := make([]Transaction, len(existing))
	copy(merged, existing)
	for i, tx := range merged {
		index[tx.ID] = i
	}
	for _, tx := range imported {
		if i, ok := index[tx.ID]; ok {
			merged[i] = tx
			continue
		}
		index[tx.ID] = len(merged)
		merged = append(merged, tx)
	}
	return merged
}
