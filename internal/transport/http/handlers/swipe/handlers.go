// Package swipe exposes the reader-facing webhook. The reader POSTs
// the badge UID after the access-key middleware has already let the
// request through; the handler translates engine results into plain
// text responses the reader firmware displays.
package swipe

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"badgereader/internal/engine"
	"badgereader/internal/notify"
	"badgereader/internal/platform/metrics"
)

type Handler struct {
	engine    *engine.Engine
	notifier  notify.Notifier
	collector *metrics.Collector
}

func NewHandler(eng *engine.Engine, notifier notify.Notifier, collector *metrics.Collector) *Handler {
	return &Handler{engine: eng, notifier: notifier, collector: collector}
}

func (h *Handler) HandleSwipe(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}
	uid := r.PostFormValue("UID")
	if uid == "" {
		uid = r.URL.Query().Get("UID")
	}
	if uid == "" {
		slog.Warn("swipe request with no UID field", "remote", r.RemoteAddr)
		http.Error(w, "Missing 'UID' in payload", http.StatusBadRequest)
		return
	}

	result, err := h.engine.ProcessSwipe(r.Context(), uid, time.Now())
	if err != nil {
		if errors.Is(err, engine.ErrBadConfiguration) {
			http.Error(w, "Internal server error - bad configuration", http.StatusInternalServerError)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	switch result.Outcome {
	case engine.OutcomeUnrecognized:
		h.collector.SwipeUnrecognized()
		h.notifier.UnrecognizedBadge(r.Context(), result.BadgeID)
		http.Error(w, "Unrecognized card", http.StatusUnauthorized)

	case engine.OutcomeDuplicate:
		h.collector.SwipeDuplicate()
		fmt.Fprintf(w, "Duplicate swipe for %s. Please wait.", result.Person.Name)

	case engine.OutcomeStarted:
		h.collector.SwipeAccepted()
		h.notifier.ShiftStarted(r.Context(), result.Person)
		fmt.Fprintf(w, "Welcome, %s. Your shift has started.", result.Person.Name)

	case engine.OutcomeEnded:
		h.collector.SwipeAccepted()
		if result.LedgerErr != nil {
			h.collector.LedgerFailure()
			h.notifier.LedgerUpdateFailed(r.Context(), result.Person, result.LedgerErr)
		}
		h.notifier.ShiftEnded(r.Context(), result.Person, result.Duration, result.Balance, result.LedgerErr == nil)
		fmt.Fprintf(w, "Goodbye, %s. Your shift has ended.", result.Person.Name)

	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) HandleInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, `<html>
    <head><title>Badge Reader Server</title></head>
    <body>
        <h1>Badge Reader HTTP Server</h1>
        <p>This server is running and listening for POST requests for badge data.</p>
    </body>
</html>`)
}
