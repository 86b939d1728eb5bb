package stockfolio

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestExportImportRoundTrip(t *testing.T) {
	txs := []Transaction{
		NewBuy(NewDate(2025, time.January, 2), "AAPL", "Apple", 10, 100),
		NewSell(NewDate(2025, time.February, 2), "AAPL", "", 4, 120),
	}

	var buf bytes.Buffer
	if err := ExportTransactions(&buf, txs); err != nil {
		t.Fatal(err)
	}

	got, err := ImportTransactions(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(txs) {
		t.Fatalf("imported %d transactions, want %d", len(got), len(txs))
	}
	for i := range txs {
		if !got[i].Equal(txs[i]) {
			t.Errorf("tx %d mismatch:\n in: %+v\nout: %+v", i, txs[i], got[i])
		}
	}
}

func TestImportRejectsNewerVersion(t *testing.T) {
	doc := `{"version": 2, "transactions": []}`
	if _, err := ImportTransactions(strings.NewReader(doc)); err == nil {
		t.Error("version 2 document accepted, want error")
	}
}

func TestImportGarbage(t *testing.T) {
	if _, err := ImportTransactions(strings.NewReader("not json")); err == nil {
		t.Error("garbage input accepted, want error")
	}
}

func TestMergeTransactions(t *testing.T) {
	a := NewBuy(NewDate(2025, time.January, 2), "AAPL", "", 10, 100)
	b := NewBuy(NewDate(2025, time.January, 3), "MSFT", "", 2, 400)

	edited := a
	edited.Shares = 12
	fresh := NewSell(NewDate(2025, time.February, 2), "AAPL", "", 4, 120)

	merged := MergeTransactions([]Transaction{a, b}, []Transaction{edited, fresh})
	if len(merged) != 3 {
		t.Fatalf("len(merged) = %d, want 3", len(merged))
	}
	if merged[0].Shares != 12 {
		t.Errorf("existing record was not replaced by id: %+v", merged[0])
	}
	if merged[1].ID != b.ID {
		t.Error("untouched record moved")
	}
	if merged[2].ID != fresh.ID {
		t.Error("new record was not appended last")
	}
}
