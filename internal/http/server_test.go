package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/emi"
	"fintrack/internal/ledger"
	applog "fintrack/internal/log"
	"fintrack/internal/storage/memory"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store := memory.New()
	logger := applog.New(applog.Config{
		Component: applog.ComponentHTTP,
		Handler:   slog.NewTextHandler(io.Discard, nil),
	})
	return NewServer(":0",
		ledger.NewService(store, nil),
		emi.NewService(store, nil),
		logger)
}

func doJSON(t *testing.T, srv *Server, method, path, user, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if user != "" {
		req.Header.Set(userHeader, user)
	}
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestMissingUserHeader(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/api/months", "", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCreateMonthAndConflict(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/months", "alice",
		`{"month":"2025-07","salary":"2500.00"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var doc core.MonthLedger
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if doc.SalaryCredited.Cents != 250000 {
		t.Errorf("expected salary 250000 cents, got %d", doc.SalaryCredited.Cents)
	}
	if doc.Balance.Cents != 250000 {
		t.Errorf("expected balance 250000 cents, got %d", doc.Balance.Cents)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/months", "alice",
		`{"month":"2025-07"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate, got %d", rec.Code)
	}
}

func TestAddDayFlow(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/months/2025-07/days", "alice",
		`{"date":"2025-07-03","items":[{"purpose":"groceries","amount":"42.50"},{"purpose":"bus","amount":"2.00"}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var doc core.MonthLedger
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if doc.MonthlyTotal.Cents != 4450 {
		t.Errorf("expected total 4450 cents, got %d", doc.MonthlyTotal.Cents)
	}
	if len(doc.Days) != 1 || len(doc.Days[0].Items) != 2 {
		t.Fatalf("unexpected days shape: %+v", doc.Days)
	}
	if doc.Days[0].Items[0].ID == 0 {
		t.Error("expected item IDs to be assigned")
	}

	rec = doJSON(t, srv, http.MethodPut, "/api/months/2025-07/salary", "alice",
		`{"salary":"1000.00"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if doc.Balance.Cents != 100000-4450 {
		t.Errorf("expected balance %d, got %d", 100000-4450, doc.Balance.Cents)
	}
}

func TestAddDayOutsideMonth(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/months/2025-07/days", "alice",
		`{"date":"2025-08-01","items":[{"purpose":"rent","amount":"700"}]}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestDeleteItemKeepsDay(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/months/2025-07/days", "alice",
		`{"date":"2025-07-03","items":[{"purpose":"coffee","amount":"3.00"}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var doc core.MonthLedger
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	itemID := doc.Days[0].Items[0].ID

	rec = doJSON(t, srv, http.MethodDelete,
		"/api/months/2025-07/days/2025-07-03/items/"+jsonInt(itemID), "alice", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(doc.Days) != 1 {
		t.Fatalf("expected empty day to remain, got %d days", len(doc.Days))
	}
	if len(doc.Days[0].Items) != 0 {
		t.Errorf("expected day to have no items, got %d", len(doc.Days[0].Items))
	}
	if doc.MonthlyTotal.Cents != 0 {
		t.Errorf("expected total 0, got %d", doc.MonthlyTotal.Cents)
	}
}

func TestEmiLifecycle(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/emis", "bob",
		`{"title":"car loan","startMonth":"2025-11","amountPerMonth":"150.00","duration":4}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var doc core.EMI
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if doc.TotalAmount.Cents != 60000 {
		t.Errorf("expected total 60000 cents, got %d", doc.TotalAmount.Cents)
	}
	if got := doc.Schedule[3].Month.String(); got != "2026-02" {
		t.Errorf("expected schedule to roll into 2026-02, got %s", got)
	}

	id := jsonInt(doc.ID)
	rec = doJSON(t, srv, http.MethodPut, "/api/emis/"+id+"/entries/0", "bob",
		`{"paid":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if doc.RemainingAmount.Cents != 45000 {
		t.Errorf("expected remaining 45000 cents, got %d", doc.RemainingAmount.Cents)
	}

	rec = doJSON(t, srv, http.MethodPut, "/api/emis/"+id+"/entries/4", "bob",
		`{"paid":true}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for out-of-range index, got %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodDelete, "/api/emis/"+id, "bob", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	rec = doJSON(t, srv, http.MethodGet, "/api/emis/"+id, "bob", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestDashboard(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, srv, http.MethodPost, "/api/months/2025-06/days", "carol",
		`{"date":"2025-06-10","items":[{"purpose":"gym","amount":"30.00"}]}`)
	doJSON(t, srv, http.MethodPost, "/api/months/2025-07/days", "carol",
		`{"date":"2025-07-01","items":[{"purpose":"rent","amount":"700.00"}]}`)
	doJSON(t, srv, http.MethodPost, "/api/emis", "carol",
		`{"title":"phone","startMonth":"2025-06","amountPerMonth":"25.00","duration":12}`)

	rec := doJSON(t, srv, http.MethodGet, "/api/dashboard", "carol", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var dash core.Dashboard
	if err := json.Unmarshal(rec.Body.Bytes(), &dash); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(dash.Months) != 2 || len(dash.Emis) != 1 {
		t.Fatalf("unexpected dashboard shape: %d months, %d emis", len(dash.Months), len(dash.Emis))
	}
	if dash.TotalExpenses.Cents != 73000 {
		t.Errorf("expected total expenses 73000 cents, got %d", dash.TotalExpenses.Cents)
	}
	if dash.TotalEmiDebt.Cents != 30000 {
		t.Errorf("expected emi debt 30000 cents, got %d", dash.TotalEmiDebt.Cents)
	}
}

func TestUnknownFieldRejected(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodPost, "/api/months", "alice",
		`{"month":"2025-07","salry":"100"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for unknown field, got %d", rec.Code)
	}
}

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
