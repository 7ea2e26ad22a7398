// Package pglog is the Postgres swipe-log backend. The table's serial
// id preserves append order, which LatestStates relies on.
package pglog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"badgereader/internal/badge"
	"badgereader/internal/shift"
	"badgereader/internal/storage"
)

type Log struct {
	DB  *pgxpool.Pool
	dir *badge.Directory
}

func New(db *pgxpool.Pool, dir *badge.Directory) *Log {
	return &Log{DB: db, dir: dir}
}

// Init creates the swipe table if it does not exist yet.
func (l *Log) Init(ctx context.Context) error {
	_, err := l.DB.Exec(ctx, `
    CREATE TABLE IF NOT EXISTS swipes (
      id BIGSERIAL PRIMARY KEY,
      ts BIGINT NOT NULL,
      badge_id TEXT NOT NULL,
      action JSONB NOT NULL
    )
  `)
	if err != nil {
		return fmt.Errorf("create swipes table: %w", err)
	}
	return nil
}

func (l *Log) LogSwipe(ctx context.Context, timestamp int64, badgeID string, action shift.Action) error {
	payload, err := json.Marshal(action)
	if err != nil {
		return fmt.Errorf("encode swipe action: %w", err)
	}
	_, err = l.DB.Exec(ctx, `
    INSERT INTO swipes (ts, badge_id, action)
    VALUES ($1, $2, $3)
  `, timestamp, badgeID, payload)
	if err != nil {
		return fmt.Errorf("insert swipe record: %w", err)
	}
	return nil
}

func (l *Log) CheckHealth(ctx context.Context) error {
	return l.DB.Ping(ctx)
}

// LatestStates picks, per badge, the row with the highest id.
func (l *Log) LatestStates(ctx context.Context) (map[string]storage.BadgeState, error) {
	rows, err := l.DB.Query(ctx, `
    SELECT DISTINCT ON (badge_id) badge_id, ts, action
    FROM swipes
    ORDER BY badge_id, id DESC
  `)
	if err != nil {
		return nil, fmt.Errorf("query latest swipe states: %w", err)
	}
	defer rows.Close()

	states := make(map[string]storage.BadgeState)
	for rows.Next() {
		var badgeID string
		var ts int64
		var payload []byte
		if err := rows.Scan(&badgeID, &ts, &payload); err != nil {
			return nil, err
		}
		uid := badge.NormalizeUID(badgeID)
		if !l.dir.Known(uid) {
			continue
		}
		var action shift.Action
		if err := json.Unmarshal(payload, &action); err != nil {
			continue
		}
		states[uid] = storage.BadgeState{State: action.NewState, Timestamp: ts}
	}
	return states, rows.Err()
}
