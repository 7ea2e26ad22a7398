// Package sheetlog is the spreadsheet swipe-log backend: a single
// workbook on the share with the newest record inserted at the top of
// the data region, mirroring how the hosted-sheet variant of the log
// is kept for manual review.
package sheetlog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"badgereader/internal/badge"
	"badgereader/internal/shift"
	"badgereader/internal/share"
	"badgereader/internal/storage"
)

const (
	sheetName = "Data"
	// Row 1 is the workbook title, row 2 the column headers; data
	// starts at row 3 with the most recent record first.
	firstDataRow = 3
)

var columnHeaders = []string{"Timestamp", "BadgeID", "Action"}

type Log struct {
	store share.Store
	name  string
	dir   *badge.Directory
}

func New(store share.Store, name string, dir *badge.Directory) *Log {
	return &Log{store: store, name: name, dir: dir}
}

func (l *Log) open() (*excelize.File, error) {
	data, err := l.store.ReadFile(l.name)
	if err != nil {
		if os.IsNotExist(err) {
			return l.create()
		}
		return nil, fmt.Errorf("read swipe workbook %s: %w", l.name, err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open swipe workbook %s: %w", l.name, err)
	}
	return f, nil
}

func (l *Log) create() (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(sheetName, "A1", "Badge Reader Swipe Log"); err != nil {
		return nil, err
	}
	for i, header := range columnHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 2)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (l *Log) save(f *excelize.File) error {
	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("encode swipe workbook: %w", err)
	}
	if err := l.store.WriteFile(l.name, buf.Bytes()); err != nil {
		return fmt.Errorf("write swipe workbook %s: %w", l.name, err)
	}
	return nil
}

func (l *Log) LogSwipe(ctx context.Context, timestamp int64, badgeID string, action shift.Action) error {
	f, err := l.open()
	if err != nil {
		return err
	}
	defer f.Close()

	actionJSON, err := json.Marshal(action)
	if err != nil {
		return fmt.Errorf("encode swipe action: %w", err)
	}

	if err := f.InsertRows(sheetName, firstDataRow, 1); err != nil {
		return fmt.Errorf("insert swipe row: %w", err)
	}
	row := strconv.Itoa(firstDataRow)
	if err := f.SetCellValue(sheetName, "A"+row, timestamp); err != nil {
		return err
	}
	if err := f.SetCellValue(sheetName, "B"+row, badgeID); err != nil {
		return err
	}
	if err := f.SetCellValue(sheetName, "C"+row, string(actionJSON)); err != nil {
		return err
	}
	return l.save(f)
}

// CheckHealth opens the workbook and verifies the column headers, the
// same sanity check the original sheet deployment ran at startup.
func (l *Log) CheckHealth(ctx context.Context) error {
	exists, err := l.store.Exists(l.name)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	f, err := l.open()
	if err != nil {
		return err
	}
	defer f.Close()

	for i, want := range columnHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 2)
		if err != nil {
			return err
		}
		got, err := f.GetCellValue(sheetName, cell)
		if err != nil {
			return err
		}
		if got != want {
			return fmt.Errorf("swipe workbook %s header %s: got %q, want %q", l.name, cell, got, want)
		}
	}
	return nil
}

// LatestStates walks the data region top to bottom. Because the newest
// record sits at the top, the first row seen for a badge is its latest
// state; the scan stops early once every configured badge is resolved.
func (l *Log) LatestStates(ctx context.Context) (map[string]storage.BadgeState, error) {
	states := make(map[string]storage.BadgeState)

	exists, err := l.store.Exists(l.name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return states, nil
	}

	f, err := l.open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("read swipe workbook %s: %w", l.name, err)
	}
	if len(rows) < firstDataRow {
		return states, nil
	}

	for _, row := range rows[firstDataRow-1:] {
		if len(states) == l.dir.BadgeCount() {
			break
		}
		if len(row) < 3 {
			continue
		}
		uid := badge.NormalizeUID(row[1])
		if !l.dir.Known(uid) {
			continue
		}
		if _, seen := states[uid]; seen {
			continue
		}
		ts, err := strconv.ParseInt(strings.TrimSpace(row[0]), 10, 64)
		if err != nil {
			slog.Warn("skipping swipe row with bad timestamp", "file", l.name, "value", row[0])
			continue
		}
		var action shift.Action
		if err := json.Unmarshal([]byte(row[2]), &action); err != nil {
			slog.Warn("skipping swipe row with bad action payload", "file", l.name, "err", err)
			continue
		}
		states[uid] = storage.BadgeState{State: action.NewState, Timestamp: ts}
	}
	return states, nil
}
