// Package ledger maintains the per-person monthly timesheet documents
// on the remote share. Each document carries an opening balance rolled
// over from the previous month, one row per closed shift, and a running
// minute balance against a fixed per-shift target.
package ledger

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"badgereader/internal/badge"
	"badgereader/internal/share"
	"badgereader/internal/shift"
)

const (
	sheetName = "Data"

	cellPerson  = "B2"
	cellPeriod  = "B3"
	cellOpening = "B4"
	cellTarget  = "B5"
	cellBalance = "B6"

	headerRow    = 8
	firstDataRow = 9
	// one-based column index of the running balance in a data row
	balanceColumn = 7
)

var rowHeaders = []string{
	"Day", "Shift Start", "Shift End", "Duration",
	"Target (min)", "Net (min)", "Balance (min)",
}

// Row is one closed shift as persisted in a monthly document.
type Row struct {
	Day      string
	Start    string
	End      string
	Duration string
	Target   int
	Net      int
	Balance  int
}

// Document is a fully parsed monthly ledger.
type Document struct {
	Person         string
	Month          time.Month
	Year           int
	OpeningBalance int
	Target         int
	Balance        int
	Rows           []Row
}

// Book locates, creates and updates monthly ledger documents. The
// running balance is stored as a literal number in the header and
// rewritten on every append; reads resolve a cell's computed value, so
// documents whose balance cell holds a formula still read back a
// number.
type Book struct {
	store  share.Store
	target int
}

// NewBook returns a Book writing to store with the given fixed
// per-shift target in minutes.
func NewBook(store share.Store, targetMinutes int) *Book {
	return &Book{store: store, target: targetMinutes}
}

// RegisterShift appends one closed shift to the person's document for
// the month the shift ended in, creating the document first if this is
// the month's first shift. Returns the new running balance in minutes.
func (b *Book) RegisterShift(ctx context.Context, person badge.Person, action shift.Action) (int, error) {
	end := time.Unix(action.ShiftEnd, 0)
	month, year := end.Month(), end.Year()
	name := Filename(person.Name, month, year)

	exists, err := b.store.Exists(name)
	if err != nil {
		return 0, fmt.Errorf("check ledger %s: %w", name, err)
	}
	if !exists {
		opening := b.openingBalance(person, month, year)
		if err := b.create(name, person, month, year, opening); err != nil {
			return 0, err
		}
	}

	f, err := b.open(name)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	newBalance, err := b.appendRow(f, name, action)
	if err != nil {
		return 0, err
	}
	if err := b.save(f, name); err != nil {
		return 0, err
	}
	return newBalance, nil
}

// openingBalance resolves the previous month's ending balance. A
// missing previous document is the normal first-month case; a document
// with an unreadable balance is logged and treated the same way. Both
// yield zero.
func (b *Book) openingBalance(person badge.Person, month time.Month, year int) int {
	prevMonth, prevYear := PreviousMonth(month, year)
	prevName := Filename(person.Name, prevMonth, prevYear)

	exists, err := b.store.Exists(prevName)
	if err != nil {
		slog.Warn("previous ledger existence check failed", "file", prevName, "err", err)
		return 0
	}
	if !exists {
		return 0
	}

	f, err := b.open(prevName)
	if err != nil {
		slog.Warn("previous ledger unreadable, starting from zero balance", "file", prevName, "err", err)
		return 0
	}
	defer f.Close()

	value, err := f.GetCellValue(sheetName, cellBalance)
	if err != nil {
		slog.Warn("previous ledger balance unreadable, starting from zero balance", "file", prevName, "err", err)
		return 0
	}
	balance, ok := parseMinutes(value)
	if !ok {
		slog.Warn("previous ledger balance not numeric, starting from zero balance", "file", prevName, "value", value)
		return 0
	}
	return balance
}

func (b *Book) create(name string, person badge.Person, month time.Month, year int, opening int) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return err
	}
	header := map[string]any{
		"A1":       "Badge Reader Timesheet",
		"A2":       "Person",
		cellPerson: person.Name,
		"A3":       "Period",
		cellPeriod: fmt.Sprintf("%s %d", month.String(), year),
		"A4":       "Opening Balance (min)",
		cellOpening: opening,
		"A5":       "Target per Shift (min)",
		cellTarget: b.target,
		"A6":       "Running Balance (min)",
		cellBalance: opening,
	}
	for cell, value := range header {
		if err := f.SetCellValue(sheetName, cell, value); err != nil {
			return err
		}
	}
	for i, h := range rowHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, headerRow)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return err
		}
	}
	slog.Info("created monthly ledger", "file", name, "openingBalanceMin", opening)
	return b.save(f, name)
}

// appendRow locates the last data row, reads the balance immediately
// preceding the new row, and writes the shift row plus the updated
// header balance.
func (b *Book) appendRow(f *excelize.File, name string, action shift.Action) (int, error) {
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return 0, fmt.Errorf("read ledger %s: %w", name, err)
	}

	nextRow := firstDataRow
	if len(rows) >= firstDataRow {
		nextRow = len(rows) + 1
	}

	previous, err := b.previousBalance(f, name, nextRow)
	if err != nil {
		return 0, err
	}

	net := action.DurationMinutes - b.target
	newBalance := previous + net

	start := time.Unix(action.ShiftStart, 0)
	end := time.Unix(action.ShiftEnd, 0)
	values := []any{
		end.Format("2006-01-02"),
		start.Format("15:04"),
		end.Format("15:04"),
		shift.FormatHoursMinutes(action.DurationMinutes),
		b.target,
		net,
		newBalance,
	}
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, nextRow)
		if err != nil {
			return 0, err
		}
		if err := f.SetCellValue(sheetName, cell, v); err != nil {
			return 0, err
		}
	}
	if err := f.SetCellValue(sheetName, cellBalance, newBalance); err != nil {
		return 0, err
	}
	return newBalance, nil
}

// previousBalance reads the balance the new row builds on: the last
// data row's balance cell, or the opening balance for the month's
// first row.
func (b *Book) previousBalance(f *excelize.File, name string, nextRow int) (int, error) {
	if nextRow > firstDataRow {
		cell, err := excelize.CoordinatesToCellName(balanceColumn, nextRow-1)
		if err != nil {
			return 0, err
		}
		value, err := f.GetCellValue(sheetName, cell)
		if err != nil {
			return 0, fmt.Errorf("read ledger %s balance cell %s: %w", name, cell, err)
		}
		if balance, ok := parseMinutes(value); ok {
			return balance, nil
		}
		slog.Warn("last row balance not numeric, falling back to header", "file", name, "cell", cell)
	}

	value, err := f.GetCellValue(sheetName, cellOpening)
	if err != nil {
		return 0, fmt.Errorf("read ledger %s opening balance: %w", name, err)
	}
	balance, ok := parseMinutes(value)
	if !ok {
		slog.Warn("opening balance not numeric, treating as zero", "file", name, "value", value)
		return 0, nil
	}
	return balance, nil
}

// Read parses a person's monthly document, if it exists.
func (b *Book) Read(ctx context.Context, person badge.Person, month time.Month, year int) (*Document, error) {
	name := Filename(person.Name, month, year)
	f, err := b.open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc := &Document{Person: person.Name, Month: month, Year: year}

	opening, err := f.GetCellValue(sheetName, cellOpening)
	if err != nil {
		return nil, err
	}
	doc.OpeningBalance, _ = parseMinutes(opening)

	target, err := f.GetCellValue(sheetName, cellTarget)
	if err != nil {
		return nil, err
	}
	doc.Target, _ = parseMinutes(target)

	balance, err := f.GetCellValue(sheetName, cellBalance)
	if err != nil {
		return nil, err
	}
	doc.Balance, _ = parseMinutes(balance)

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, err
	}
	for i := firstDataRow - 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) < balanceColumn {
			continue
		}
		target, _ := parseMinutes(row[4])
		net, _ := parseMinutes(row[5])
		rowBalance, _ := parseMinutes(row[6])
		doc.Rows = append(doc.Rows, Row{
			Day:      row[0],
			Start:    row[1],
			End:      row[2],
			Duration: row[3],
			Target:   target,
			Net:      net,
			Balance:  rowBalance,
		})
	}
	return doc, nil
}

func (b *Book) open(name string) (*excelize.File, error) {
	data, err := b.store.ReadFile(name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("ledger %s: %w", name, err)
		}
		return nil, fmt.Errorf("read ledger %s: %w", name, err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", name, err)
	}
	return f, nil
}

func (b *Book) save(f *excelize.File, name string) error {
	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("encode ledger %s: %w", name, err)
	}
	if err := b.store.WriteFile(name, buf.Bytes()); err != nil {
		return fmt.Errorf("write ledger %s: %w", name, err)
	}
	return nil
}

// parseMinutes accepts both integer and decimal renderings of a minute
// count, since resolved formula values may come back as floats.
func parseMinutes(value string) (int, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(trimmed); err == nil {
		return n, true
	}
	if v, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return int(v), true
	}
	return 0, false
}
