// Package engine composes the state table, swipe log and monthly
// ledger into the single entry point one incoming swipe goes through.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"badgereader/internal/badge"
	"badgereader/internal/ledger"
	"badgereader/internal/shift"
	"badgereader/internal/storage"
)

// ErrBadConfiguration marks a badge that maps to a person id with no
// person record. Distinct from an unrecognized badge, which is a
// normal outcome, not an error.
var ErrBadConfiguration = errors.New("badge mapped to unknown person")

// Outcome classifies what one swipe amounted to.
type Outcome string

const (
	OutcomeStarted      Outcome = "started"
	OutcomeEnded        Outcome = "ended"
	OutcomeDuplicate    Outcome = "duplicate"
	OutcomeUnrecognized Outcome = "unrecognized"
)

// Result is what the engine hands back for one processed swipe. For an
// ended shift, Balance holds the updated running balance unless
// LedgerErr is set; LedgerErr flags a failed ledger update on an
// otherwise successful state transition.
type Result struct {
	Outcome   Outcome
	BadgeID   string
	Person    badge.Person
	State     shift.State
	Duration  string
	Balance   int
	LedgerErr error
}

// Engine owns the in-memory state table for the process lifetime. All
// swipe processing is serialized through its mutex: two concurrent
// swipes of the same badge must not both observe "out".
type Engine struct {
	mu     sync.Mutex
	dir    *badge.Directory
	states *shift.StateTable
	log    storage.SwipeLogger
	book   *ledger.Book
}

func New(dir *badge.Directory, states *shift.StateTable, log storage.SwipeLogger, book *ledger.Book) *Engine {
	return &Engine{dir: dir, states: states, log: log, book: book}
}

// Restore initializes the state table from the swipe log's latest
// known record per badge. Must run before the first ProcessSwipe.
func (e *Engine) Restore(ctx context.Context) error {
	restored, err := e.log.LatestStates(ctx)
	if err != nil {
		return fmt.Errorf("read latest states: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	states := make(map[string]shift.RestoredState, len(restored))
	for uid, s := range restored {
		states[uid] = shift.RestoredState{State: s.State, Timestamp: s.Timestamp}
	}
	e.states.Initialize(e.dir.UIDs(), states)
	slog.Info("restored shift states", "badges", e.dir.BadgeCount(), "restored", len(states))
	return nil
}

// ProcessSwipe handles one externally delivered swipe. It returns an
// error only for configuration failures; every expected outcome,
// including an unrecognized badge or a debounced duplicate, comes back
// as a Result.
func (e *Engine) ProcessSwipe(ctx context.Context, badgeID string, now time.Time) (Result, error) {
	uid := badge.NormalizeUID(badgeID)

	personID, ok := e.dir.PersonID(uid)
	if !ok {
		slog.Warn("unrecognized badge swiped", "badgeId", uid)
		return Result{Outcome: OutcomeUnrecognized, BadgeID: uid}, nil
	}
	person, ok := e.dir.Person(personID)
	if !ok {
		slog.Error("badge maps to non-existent person", "badgeId", uid, "personId", personID)
		return Result{}, fmt.Errorf("badge %s: %w", uid, ErrBadConfiguration)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.states.IsDebounced(uid, now) {
		return Result{Outcome: OutcomeDuplicate, BadgeID: uid, Person: person, State: e.states.Current(uid)}, nil
	}

	newState, action, durationText := e.states.HandleSwipe(uid, personID, now)
	slog.Info("accepted swipe", "badgeId", uid, "person", person.Name, "newState", newState)

	// Best effort: a failed append does not roll back the in-memory
	// transition. The live state machine outlives a broken audit trail.
	if err := e.log.LogSwipe(ctx, now.Unix(), uid, action); err != nil {
		slog.Error("swipe log append failed", "badgeId", uid, "err", err)
	}

	result := Result{
		Outcome:  OutcomeStarted,
		BadgeID:  uid,
		Person:   person,
		State:    newState,
		Duration: durationText,
	}
	if newState == shift.StateIn {
		return result, nil
	}

	result.Outcome = OutcomeEnded
	balance, err := e.book.RegisterShift(ctx, person, action)
	if err != nil {
		slog.Error("ledger update failed", "person", person.Name, "err", err)
		result.LedgerErr = err
		return result, nil
	}
	result.Balance = balance
	return result, nil
}

// Status returns the current in/out state per configured badge.
func (e *Engine) Status() map[string]shift.State {
	e.mu.Lock()
	defer e.mu.Unlock()

	status := make(map[string]shift.State, e.dir.BadgeCount())
	for _, uid := range e.dir.UIDs() {
		status[uid] = e.states.Current(uid)
	}
	return status
}

// CheckHealth probes the swipe log backend.
func (e *Engine) CheckHealth(ctx context.Context) error {
	return e.log.CheckHealth(ctx)
}
