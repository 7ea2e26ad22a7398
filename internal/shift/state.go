package shift

import (
	"log/slog"
	"time"
)

// State is a badge's shift state.
type State string

const (
	StateIn  State = "in"
	StateOut State = "out"
)

// Action is the transition payload produced by one accepted swipe.
// The JSON field names are the persisted swipe-log format and must stay
// stable across restarts.
type Action struct {
	PersonID        string `json:"person_id"`
	NewState        State  `json:"new_state"`
	TimeEffective   int64  `json:"time_effective"`
	ShiftStart      int64  `json:"shift_start_timestamp,omitempty"`
	ShiftEnd        int64  `json:"shift_end_timestamp,omitempty"`
	DurationMinutes int    `json:"shift_duration_min,omitempty"`
}

// RestoredState is the last known state of a badge, read back from the
// swipe log at startup.
type RestoredState struct {
	State     State
	Timestamp int64
}

// StateTable tracks the in/out state of every configured badge. It is
// not safe for concurrent use; the owning engine serializes access.
type StateTable struct {
	debounce time.Duration
	buffer   time.Duration

	states     map[string]State
	lastSwipe  map[string]time.Time
	shiftStart map[string]time.Time
}

func NewStateTable(debounce, buffer time.Duration) *StateTable {
	return &StateTable{
		debounce:   debounce,
		buffer:     buffer,
		states:     make(map[string]State),
		lastSwipe:  make(map[string]time.Time),
		shiftStart: make(map[string]time.Time),
	}
}

// Initialize sets every known badge to "out" and then overlays the
// restored states. Restored badges that are not in knownBadges are
// logged and skipped. A badge restored to "in" also gets its shift
// start set, so closing the shift after a restart still yields a
// duration.
func (t *StateTable) Initialize(knownBadges []string, restored map[string]RestoredState) {
	for _, uid := range knownBadges {
		t.states[uid] = StateOut
	}
	for uid, r := range restored {
		if _, ok := t.states[uid]; !ok {
			slog.Warn("skipping restored state for unconfigured badge", "badgeId", uid)
			continue
		}
		t.states[uid] = r.State
		if r.State == StateIn {
			t.shiftStart[uid] = time.Unix(r.Timestamp, 0)
		}
	}
}

// IsDebounced reports whether a swipe at now is a duplicate of a
// previously accepted swipe. The boundary is inclusive-exclusive: a
// swipe exactly one debounce window after the last accepted one is not
// a duplicate. Does not mutate state.
func (t *StateTable) IsDebounced(badgeID string, now time.Time) bool {
	last, ok := t.lastSwipe[badgeID]
	if !ok {
		return false
	}
	since := now.Sub(last)
	if since < t.debounce {
		slog.Warn("ignoring duplicate swipe",
			"badgeId", badgeID,
			"sinceLastSwipe", since,
			"debounceWindow", t.debounce,
		)
		return true
	}
	return false
}

// HandleSwipe applies one accepted swipe. It must only be called after
// IsDebounced returned false for the same badge and time. The returned
// duration text is empty for an opening swipe.
func (t *StateTable) HandleSwipe(badgeID, personID string, now time.Time) (State, Action, string) {
	t.lastSwipe[badgeID] = now

	if t.states[badgeID] != StateIn {
		t.states[badgeID] = StateIn
		t.shiftStart[badgeID] = now

		effective := now.Add(-t.buffer).Truncate(time.Minute)
		return StateIn, Action{
			PersonID:      personID,
			NewState:      StateIn,
			TimeEffective: effective.Unix(),
		}, ""
	}

	t.states[badgeID] = StateOut
	start, ok := t.shiftStart[badgeID]
	if !ok {
		slog.Warn("closing shift with no recorded start, using swipe time", "badgeId", badgeID)
		start = now
	}
	delete(t.shiftStart, badgeID)

	duration := now.Sub(start)
	effective := now.Add(t.buffer).Truncate(time.Minute)
	return StateOut, Action{
		PersonID:        personID,
		NewState:        StateOut,
		TimeEffective:   effective.Unix(),
		ShiftStart:      start.Unix(),
		ShiftEnd:        effective.Unix(),
		DurationMinutes: int(duration.Minutes()),
	}, FormatDuration(duration)
}

// Current returns the tracked state of a badge, defaulting to "out".
func (t *StateTable) Current(badgeID string) State {
	if s, ok := t.states[badgeID]; ok {
		return s
	}
	return StateOut
}

// ShiftStartedAt returns the open shift start for a badge, if any.
func (t *StateTable) ShiftStartedAt(badgeID string) (time.Time, bool) {
	start, ok := t.shiftStart[badgeID]
	return start, ok
}
