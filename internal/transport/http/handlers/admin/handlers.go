// Package admin is the JWT-guarded operations surface: live badge
// status and monthly PDF report generation.
package admin

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"time"

	"badgereader/internal/badge"
	"badgereader/internal/engine"
	"badgereader/internal/ledger"
	"badgereader/internal/platform/metrics"
	"badgereader/internal/report"
	"badgereader/internal/share"
	"badgereader/internal/transport/http/api"
	"badgereader/internal/transport/http/middleware"
)

type Handler struct {
	engine    *engine.Engine
	dir       *badge.Directory
	book      *ledger.Book
	store     share.Store
	generator *report.Generator
	collector *metrics.Collector
}

func NewHandler(eng *engine.Engine, dir *badge.Directory, book *ledger.Book, store share.Store, generator *report.Generator, collector *metrics.Collector) *Handler {
	return &Handler{engine: eng, dir: dir, book: book, store: store, generator: generator, collector: collector}
}

// HandleMetrics returns the process-local counters.
func (h *Handler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	api.Success(w, h.collector.Snapshot(), middleware.GetRequestID(r.Context()))
}

// HandleStatus returns the current in/out state per configured badge.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	status := h.engine.Status()
	payload := make(map[string]any, len(status))
	for uid, state := range status {
		entry := map[string]any{"state": state}
		if personID, ok := h.dir.PersonID(uid); ok {
			if person, ok := h.dir.Person(personID); ok {
				entry["person"] = person.Name
			}
		}
		payload[uid] = entry
	}
	api.Success(w, payload, middleware.GetRequestID(r.Context()))
}

// HandleDocuments lists the monthly ledger documents currently on the
// share, sorted by name. The swipe log and other share files are not
// included.
func (h *Handler) HandleDocuments(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	names, err := h.store.List()
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "share_unavailable", "share listing failed", reqID)
		return
	}

	documents := make([]string, 0, len(names))
	for _, name := range names {
		if strings.HasPrefix(name, "monthly_data_") && strings.HasSuffix(name, ".xlsx") {
			documents = append(documents, name)
		}
	}
	sort.Strings(documents)
	api.Success(w, map[string]any{"documents": documents}, reqID)
}

type reportRequest struct {
	PersonID string `json:"personId"`
	Month    int    `json:"month"`
	Year     int    `json:"year"`
}

// HandleMonthlyReport renders a person's monthly ledger to PDF and
// stores it under the report directory.
func (h *Handler) HandleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_body", "invalid JSON body", reqID)
		return
	}
	if req.Month < 1 || req.Month > 12 {
		api.Fail(w, http.StatusBadRequest, "invalid_month", "month must be 1-12", reqID)
		return
	}
	person, ok := h.dir.Person(req.PersonID)
	if !ok {
		api.Fail(w, http.StatusNotFound, "unknown_person", "no such person", reqID)
		return
	}

	month := time.Month(req.Month)
	doc, err := h.book.Read(r.Context(), person, month, req.Year)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "ledger_missing", "no ledger document for that period", reqID)
		return
	}

	path, err := h.generator.Write(doc)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "report rendering failed", reqID)
		return
	}

	api.Success(w, map[string]any{"path": path, "shifts": len(doc.Rows), "balanceMin": doc.Balance}, reqID)
}
