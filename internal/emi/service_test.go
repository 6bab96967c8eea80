package emi

import (
	"context"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/storage/memory"
)

func newTestService() *Service {
	return NewService(memory.New(), nil)
}

func month(t *testing.T, s string) core.Month {
	t.Helper()
	m, err := core.ParseMonth(s)
	if err != nil {
		t.Fatalf("ParseMonth(%q): %v", s, err)
	}
	return m
}

func TestCreateEmiRollover(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	e, err := svc.CreateEmi(ctx, "u1", "Fridge", month(t, "2025-11"), core.Money{Cents: 20000}, 4)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	want := []string{"2025-11", "2025-12", "2026-01", "2026-02"}
	for i, w := range want {
		if got := e.Schedule[i].Month.String(); got != w {
			t.Errorf("schedule[%d] = %s, want %s", i, got, w)
		}
	}
	if e.TotalAmount.Cents != 80000 || e.RemainingAmount.Cents != 80000 {
		t.Errorf("total=%d remaining=%d, want 80000/80000", e.TotalAmount.Cents, e.RemainingAmount.Cents)
	}
}

func TestCreateEmiValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	start := month(t, "2025-01")

	if _, err := svc.CreateEmi(ctx, "u1", "", start, core.Money{Cents: 100}, 2); !core.IsClientError(err) {
		t.Errorf("empty title = %v, want client error", err)
	}
	if _, err := svc.CreateEmi(ctx, "u1", "TV", start, core.Money{Cents: 0}, 2); !core.IsClientError(err) {
		t.Errorf("zero amount = %v, want client error", err)
	}
	if _, err := svc.CreateEmi(ctx, "u1", "TV", start, core.Money{Cents: 100}, 0); !core.IsClientError(err) {
		t.Errorf("zero duration = %v, want client error", err)
	}
}

func TestSetEntryStatus(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	e, err := svc.CreateEmi(ctx, "u1", "Sofa", month(t, "2025-01"), core.Money{Cents: 10000}, 3)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.SetEntryStatus(ctx, e.ID, 0, true)
	if err != nil {
		t.Fatalf("set paid: %v", err)
	}
	if got.RemainingAmount.Cents != 20000 {
		t.Errorf("remaining = %d, want 20000", got.RemainingAmount.Cents)
	}

	// Idempotent: paying an already-paid entry changes nothing.
	got, err = svc.SetEntryStatus(ctx, e.ID, 0, true)
	if err != nil {
		t.Fatalf("set paid again: %v", err)
	}
	if got.RemainingAmount.Cents != 20000 {
		t.Errorf("remaining after repeat = %d, want 20000", got.RemainingAmount.Cents)
	}

	// Reverting to unpaid is allowed.
	got, err = svc.SetEntryStatus(ctx, e.ID, 0, false)
	if err != nil {
		t.Fatalf("revert: %v", err)
	}
	if got.RemainingAmount.Cents != 30000 {
		t.Errorf("remaining after revert = %d, want 30000", got.RemainingAmount.Cents)
	}
	if err := got.CheckInvariants(); err != nil {
		t.Errorf("invariants: %v", err)
	}

	// The change survived the store round trip.
	back, err := svc.GetEmi(ctx, e.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if back.Schedule[0].Paid {
		t.Error("entry should be unpaid after revert")
	}
}

func TestSetEntryStatusBounds(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	e, err := svc.CreateEmi(ctx, "u1", "Desk", month(t, "2025-01"), core.Money{Cents: 100}, 3)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.SetEntryStatus(ctx, e.ID, 3, true); !core.IsClientError(err) {
		t.Errorf("index == duration: %v, want invalid input", err)
	}
	if _, err := svc.SetEntryStatus(ctx, e.ID, -1, true); !core.IsClientError(err) {
		t.Errorf("index -1: %v, want invalid input", err)
	}
	if _, err := svc.SetEntryStatus(ctx, 999, 0, true); !core.IsNotFound(err) {
		t.Errorf("missing emi: %v, want not found", err)
	}
}

func TestDeleteEmiIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	e, err := svc.CreateEmi(ctx, "u1", "Oven", month(t, "2025-01"), core.Money{Cents: 100}, 2)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	deleted, err := svc.DeleteEmi(ctx, e.ID)
	if err != nil || !deleted {
		t.Fatalf("delete = %v, %v, want true, nil", deleted, err)
	}
	deleted, err = svc.DeleteEmi(ctx, e.ID)
	if err != nil || deleted {
		t.Errorf("second delete = %v, %v, want false, nil", deleted, err)
	}
	if _, err := svc.GetEmi(ctx, e.ID); !core.IsNotFound(err) {
		t.Errorf("get after delete = %v, want not found", err)
	}
}

func TestListEmis(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	start := month(t, "2025-01")

	if _, err := svc.CreateEmi(ctx, "u1", "A", start, core.Money{Cents: 100}, 2); err != nil {
		t.Fatalf("create A: %v", err)
	}
	if _, err := svc.CreateEmi(ctx, "u1", "B", start, core.Money{Cents: 200}, 2); err != nil {
		t.Fatalf("create B: %v", err)
	}
	if _, err := svc.CreateEmi(ctx, "u2", "C", start, core.Money{Cents: 300}, 2); err != nil {
		t.Fatalf("create C: %v", err)
	}

	got, err := svc.ListEmis(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Title != "A" || got[1].Title != "B" {
		t.Errorf("titles = %s, %s", got[0].Title, got[1].Title)
	}
}
