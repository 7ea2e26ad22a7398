// Package filelog is the JSONL swipe-log backend: one JSON record per
// line, appended to a single file on the share.
package filelog

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"badgereader/internal/badge"
	"badgereader/internal/shift"
	"badgereader/internal/share"
	"badgereader/internal/storage"
)

type Log struct {
	store share.Store
	name  string
	dir   *badge.Directory
}

func New(store share.Store, name string, dir *badge.Directory) *Log {
	return &Log{store: store, name: name, dir: dir}
}

func (l *Log) LogSwipe(ctx context.Context, timestamp int64, badgeID string, action shift.Action) error {
	rec := storage.Record{Timestamp: timestamp, BadgeID: badgeID, Action: action}
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode swipe record: %w", err)
	}
	line = append(line, '\n')
	if err := l.store.Append(l.name, line); err != nil {
		return fmt.Errorf("append swipe record to %s: %w", l.name, err)
	}
	return nil
}

// CheckHealth verifies the log file can be opened for append.
func (l *Log) CheckHealth(ctx context.Context) error {
	if err := l.store.Append(l.name, nil); err != nil {
		return fmt.Errorf("swipe log %s not writable: %w", l.name, err)
	}
	return nil
}

// LatestStates scans the whole log in append order. Later records for
// the same badge overwrite earlier ones, so the final map holds each
// badge's chronologically last state. Records for unconfigured badges
// and malformed lines are skipped.
func (l *Log) LatestStates(ctx context.Context) (map[string]storage.BadgeState, error) {
	states := make(map[string]storage.BadgeState)

	data, err := l.store.ReadFile(l.name)
	if err != nil {
		if os.IsNotExist(err) {
			return states, nil
		}
		return nil, fmt.Errorf("read swipe log %s: %w", l.name, err)
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec storage.Record
		if err := json.Unmarshal(line, &rec); err != nil {
			slog.Warn("skipping malformed swipe log line", "file", l.name, "err", err)
			continue
		}
		uid := badge.NormalizeUID(rec.BadgeID)
		if !l.dir.Known(uid) {
			continue
		}
		states[uid] = storage.BadgeState{State: rec.Action.NewState, Timestamp: rec.Timestamp}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan swipe log %s: %w", l.name, err)
	}
	return states, nil
}
