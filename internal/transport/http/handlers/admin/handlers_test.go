package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"badgereader/internal/auth"
	"badgereader/internal/badge"
	"badgereader/internal/engine"
	"badgereader/internal/ledger"
	"badgereader/internal/platform/metrics"
	"badgereader/internal/report"
	"badgereader/internal/share"
	"badgereader/internal/shift"
	"badgereader/internal/storage/filelog"
	"badgereader/internal/transport/http/middleware"
)

const jwtSecret = "admin-secret"

type fixture struct {
	handler *Handler
	engine  *engine.Engine
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store, err := share.NewDir(t.TempDir())
	if err != nil {
		t.Fatalf("share dir: %v", err)
	}
	dir := badge.New(
		[]badge.Badge{{UID: "AABBCCDD", PersonID: "ana"}},
		[]badge.Person{{ID: "ana", Name: "Ana Musterfrau"}},
	)
	log := filelog.New(store, "swipe_log.jsonl", dir)
	book := ledger.NewBook(store, 300)
	eng := engine.New(dir, shift.NewStateTable(0, 0), log, book)
	if err := eng.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	gen := report.NewGenerator(book, dir, t.TempDir(), nil)
	return fixture{
		handler: NewHandler(eng, dir, book, store, gen, metrics.New()),
		engine:  eng,
	}
}

func bearerToken(t *testing.T) string {
	t.Helper()
	token, err := auth.GenerateToken(jwtSecret, "admin", time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return "Bearer " + token
}

func TestStatusRequiresBearerToken(t *testing.T) {
	fx := newFixture(t)
	guarded := middleware.AdminAuth(jwtSecret)(http.HandlerFunc(fx.handler.HandleStatus))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	rec := httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status without token: got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status with bad token: got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	req.Header.Set("Authorization", bearerToken(t))
	rec = httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status with valid token: got %d, body %q", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Success bool                      `json:"success"`
		Data    map[string]map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if !envelope.Success {
		t.Fatal("envelope not successful")
	}
	entry, ok := envelope.Data["aabbccdd"]
	if !ok {
		t.Fatalf("badge missing from status: %v", envelope.Data)
	}
	if entry["state"] != "out" || entry["person"] != "Ana Musterfrau" {
		t.Fatalf("status entry: got %v", entry)
	}
}

func TestDocumentsListsLedgerFilesOnly(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	rec := httptest.NewRecorder()
	fx.handler.HandleDocuments(rec, httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	var empty struct {
		Data struct {
			Documents []string `json:"documents"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &empty); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if len(empty.Data.Documents) != 0 {
		t.Fatalf("expected no documents yet, got %v", empty.Data.Documents)
	}

	// One closed shift creates a ledger document; the swipe log file it
	// also creates must not show up in the listing.
	start := time.Date(2026, time.August, 3, 9, 0, 0, 0, time.UTC)
	if _, err := fx.engine.ProcessSwipe(ctx, "aabbccdd", start); err != nil {
		t.Fatalf("in-swipe: %v", err)
	}
	if _, err := fx.engine.ProcessSwipe(ctx, "aabbccdd", start.Add(5*time.Hour)); err != nil {
		t.Fatalf("out-swipe: %v", err)
	}

	rec = httptest.NewRecorder()
	fx.handler.HandleDocuments(rec, httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	var envelope struct {
		Data struct {
			Documents []string `json:"documents"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if len(envelope.Data.Documents) != 1 {
		t.Fatalf("expected one document, got %v", envelope.Data.Documents)
	}
	if envelope.Data.Documents[0] != "monthly_data_Ana_Musterfrau_August_2026.xlsx" {
		t.Fatalf("document name: got %q", envelope.Data.Documents[0])
	}
}

func TestMonthlyReportValidation(t *testing.T) {
	fx := newFixture(t)

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/reports/monthly", strings.NewReader(body))
		rec := httptest.NewRecorder()
		fx.handler.HandleMonthlyReport(rec, req)
		return rec
	}

	if rec := post("{nope"); rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed body: got %d", rec.Code)
	}
	if rec := post(`{"personId":"ana","month":13,"year":2026}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("month out of range: got %d", rec.Code)
	}
	if rec := post(`{"personId":"ghost","month":8,"year":2026}`); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown person: got %d", rec.Code)
	}
	if rec := post(`{"personId":"ana","month":8,"year":2026}`); rec.Code != http.StatusNotFound {
		t.Fatalf("missing ledger document: got %d", rec.Code)
	}
}

func TestMonthlyReportRendersExistingDocument(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	start := time.Date(2026, time.August, 3, 9, 0, 0, 0, time.UTC)
	if _, err := fx.engine.ProcessSwipe(ctx, "aabbccdd", start); err != nil {
		t.Fatalf("in-swipe: %v", err)
	}
	if _, err := fx.engine.ProcessSwipe(ctx, "aabbccdd", start.Add(5*time.Hour)); err != nil {
		t.Fatalf("out-swipe: %v", err)
	}

	body, _ := json.Marshal(map[string]any{"personId": "ana", "month": 8, "year": 2026})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports/monthly", strings.NewReader(string(body)))
	rec := httptest.NewRecorder()
	fx.handler.HandleMonthlyReport(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %q", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data struct {
			Path       string `json:"path"`
			Shifts     int    `json:"shifts"`
			BalanceMin int    `json:"balanceMin"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.Data.Shifts != 1 {
		t.Fatalf("shifts: got %d", envelope.Data.Shifts)
	}
	if envelope.Data.BalanceMin != 0 {
		t.Fatalf("balance: got %d", envelope.Data.BalanceMin)
	}
	if !strings.HasSuffix(envelope.Data.Path, ".pdf") {
		t.Fatalf("report path: got %q", envelope.Data.Path)
	}
}
