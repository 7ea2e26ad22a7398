// Package storage defines the swipe-log contract and its persisted
// record format. Backends live in subpackages; the engine depends only
// on the SwipeLogger interface, selected once at startup.
package storage

import (
	"context"

	"badgereader/internal/shift"
)

// Record is one persisted swipe. Field names are the on-disk format
// and must stay stable so old logs remain readable after restarts.
type Record struct {
	Timestamp int64        `json:"timestamp"`
	BadgeID   string       `json:"badge_id"`
	Action    shift.Action `json:"action"`
}

// BadgeState is a badge's most recent logged state.
type BadgeState struct {
	State     shift.State
	Timestamp int64
}

// SwipeLogger is the append-only swipe log. LogSwipe must preserve
// submission order; LatestStates must return, per configured badge,
// the state of that badge's chronologically last record.
type SwipeLogger interface {
	LogSwipe(ctx context.Context, timestamp int64, badgeID string, action shift.Action) error
	CheckHealth(ctx context.Context) error
	LatestStates(ctx context.Context) (map[string]BadgeState, error)
}
