package ledger

import (
	"testing"
	"time"
)

func TestFilenameDeterministic(t *testing.T) {
	a := Filename("Ana Musterfrau", time.August, 2026)
	b := Filename("Ana Musterfrau", time.August, 2026)
	if a != b {
		t.Fatalf("same inputs produced %q and %q", a, b)
	}
	if a != "monthly_data_Ana_Musterfrau_August_2026.xlsx" {
		t.Fatalf("unexpected filename %q", a)
	}
}

func TestFilenameDistinguishesPeriods(t *testing.T) {
	aug := Filename("Ana", time.August, 2026)
	jul := Filename("Ana", time.July, 2026)
	prevYear := Filename("Ana", time.August, 2025)
	if aug == jul || aug == prevYear {
		t.Fatalf("periods must produce distinct names: %q %q %q", aug, jul, prevYear)
	}
}

func TestPreviousMonth(t *testing.T) {
	month, year := PreviousMonth(time.August, 2026)
	if month != time.July || year != 2026 {
		t.Fatalf("got %s %d", month, year)
	}
	month, year = PreviousMonth(time.January, 2026)
	if month != time.December || year != 2025 {
		t.Fatalf("january must roll the year: got %s %d", month, year)
	}
}
