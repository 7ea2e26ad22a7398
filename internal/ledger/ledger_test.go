package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"badgereader/internal/badge"
	"badgereader/internal/share"
	"badgereader/internal/shift"
)

var ana = badge.Person{ID: "ana", Name: "Ana", Email: "ana@example.com"}

func newBook(t *testing.T, target int) (*Book, share.Store) {
	t.Helper()
	store, err := share.NewDir(t.TempDir())
	if err != nil {
		t.Fatalf("share dir: %v", err)
	}
	return NewBook(store, target), store
}

func closedShift(start time.Time, minutes int) shift.Action {
	end := start.Add(time.Duration(minutes) * time.Minute)
	return shift.Action{
		PersonID:        ana.ID,
		NewState:        shift.StateOut,
		TimeEffective:   end.Unix(),
		ShiftStart:      start.Unix(),
		ShiftEnd:        end.Unix(),
		DurationMinutes: minutes,
	}
}

func TestFirstEverMonthStartsFromZero(t *testing.T) {
	book, _ := newBook(t, 300)
	ctx := context.Background()

	start := time.Date(2026, time.August, 3, 9, 0, 0, 0, time.Local)
	balance, err := book.RegisterShift(ctx, ana, closedShift(start, 510))
	if err != nil {
		t.Fatalf("register shift: %v", err)
	}
	if balance != 210 {
		t.Fatalf("expected balance 210, got %d", balance)
	}

	doc, err := book.Read(ctx, ana, time.August, 2026)
	if err != nil {
		t.Fatalf("read ledger: %v", err)
	}
	if doc.OpeningBalance != 0 {
		t.Fatalf("expected opening balance 0, got %d", doc.OpeningBalance)
	}
	if doc.Target != 300 {
		t.Fatalf("expected target 300, got %d", doc.Target)
	}
	if len(doc.Rows) != 1 {
		t.Fatalf("expected one row, got %d", len(doc.Rows))
	}
	row := doc.Rows[0]
	if row.Net != 210 || row.Balance != 210 {
		t.Fatalf("unexpected row %+v", row)
	}
	if row.Duration != "08:30" {
		t.Fatalf("unexpected duration cell %q", row.Duration)
	}
}

func TestBalanceAccumulatesAcrossAppends(t *testing.T) {
	book, _ := newBook(t, 300)
	ctx := context.Background()

	day := time.Date(2026, time.August, 3, 9, 0, 0, 0, time.Local)
	durations := []int{330, 240, 300, 415}
	want := 0
	var balance int
	var err error
	for i, minutes := range durations {
		balance, err = book.RegisterShift(ctx, ana, closedShift(day.AddDate(0, 0, i), minutes))
		if err != nil {
			t.Fatalf("register shift %d: %v", i, err)
		}
		want += minutes - 300
	}
	if balance != want {
		t.Fatalf("final balance: got %d, want %d", balance, want)
	}

	doc, err := book.Read(ctx, ana, time.August, 2026)
	if err != nil {
		t.Fatalf("read ledger: %v", err)
	}
	if doc.Balance != want {
		t.Fatalf("persisted balance: got %d, want %d", doc.Balance, want)
	}
	if len(doc.Rows) != len(durations) {
		t.Fatalf("expected %d rows, got %d", len(durations), len(doc.Rows))
	}
}

func TestMonthRolloverCarriesBalance(t *testing.T) {
	book, _ := newBook(t, 300)
	ctx := context.Background()

	// July ends at +120.
	julyShift := time.Date(2026, time.July, 20, 8, 0, 0, 0, time.Local)
	balance, err := book.RegisterShift(ctx, ana, closedShift(julyShift, 420))
	if err != nil {
		t.Fatalf("july shift: %v", err)
	}
	if balance != 120 {
		t.Fatalf("july balance: got %d, want 120", balance)
	}

	// First August close creates the new document with the carried balance.
	augustShift := time.Date(2026, time.August, 2, 8, 0, 0, 0, time.Local)
	balance, err = book.RegisterShift(ctx, ana, closedShift(augustShift, 330))
	if err != nil {
		t.Fatalf("august shift: %v", err)
	}
	if balance != 150 {
		t.Fatalf("august balance: got %d, want 150", balance)
	}

	doc, err := book.Read(ctx, ana, time.August, 2026)
	if err != nil {
		t.Fatalf("read august ledger: %v", err)
	}
	if doc.OpeningBalance != 120 {
		t.Fatalf("august opening balance: got %d, want 120", doc.OpeningBalance)
	}

	july, err := book.Read(ctx, ana, time.July, 2026)
	if err != nil {
		t.Fatalf("read july ledger: %v", err)
	}
	if july.Balance != 120 {
		t.Fatal("rollover must not modify the previous month's document")
	}
}

func TestMalformedPreviousBalanceFallsBackToZero(t *testing.T) {
	book, store := newBook(t, 300)
	ctx := context.Background()

	// A July document whose balance cell holds garbage.
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), "Data"); err != nil {
		t.Fatal(err)
	}
	if err := f.SetCellValue("Data", cellBalance, "not a number"); err != nil {
		t.Fatal(err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	if err := store.WriteFile(Filename(ana.Name, time.July, 2026), buf.Bytes()); err != nil {
		t.Fatal(err)
	}

	augustShift := time.Date(2026, time.August, 2, 8, 0, 0, 0, time.Local)
	balance, err := book.RegisterShift(ctx, ana, closedShift(augustShift, 330))
	if err != nil {
		t.Fatalf("august shift: %v", err)
	}
	if balance != 30 {
		t.Fatalf("expected zero opening plus 30 net, got %d", balance)
	}
}

func TestNegativeBalancePersists(t *testing.T) {
	book, _ := newBook(t, 300)
	ctx := context.Background()

	start := time.Date(2026, time.August, 3, 9, 0, 0, 0, time.Local)
	balance, err := book.RegisterShift(ctx, ana, closedShift(start, 120))
	if err != nil {
		t.Fatalf("register shift: %v", err)
	}
	if balance != -180 {
		t.Fatalf("expected deficit of -180, got %d", balance)
	}

	doc, err := book.Read(ctx, ana, time.August, 2026)
	if err != nil {
		t.Fatalf("read ledger: %v", err)
	}
	if doc.Balance != -180 {
		t.Fatalf("persisted deficit: got %d, want -180", doc.Balance)
	}
}
