package core

import (
	"encoding/json"
	"testing"
)

func mustMonth(t *testing.T, s string) Month {
	t.Helper()
	m, err := ParseMonth(s)
	if err != nil {
		t.Fatalf("ParseMonth(%q): %v", s, err)
	}
	return m
}

func mustDate(t *testing.T, s string) Date {
	t.Helper()
	d, err := ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}

func TestMonthAddMonthsRollover(t *testing.T) {
	tests := []struct {
		start string
		n     int
		want  string
	}{
		{"2025-11", 0, "2025-11"},
		{"2025-11", 1, "2025-12"},
		{"2025-11", 2, "2026-01"},
		{"2025-01", 12, "2026-01"},
		{"2025-12", 13, "2027-01"},
	}
	for _, tt := range tests {
		got := mustMonth(t, tt.start).AddMonths(tt.n).String()
		if got != tt.want {
			t.Errorf("%s + %d months = %s, want %s", tt.start, tt.n, got, tt.want)
		}
	}
}

func TestDateInMonth(t *testing.T) {
	m := mustMonth(t, "2025-06")
	if !mustDate(t, "2025-06-05").In(m) {
		t.Error("2025-06-05 should be in 2025-06")
	}
	if mustDate(t, "2025-07-01").In(m) {
		t.Error("2025-07-01 should not be in 2025-06")
	}
}

func TestMonthJSONRoundTrip(t *testing.T) {
	m := mustMonth(t, "2025-06")
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"2025-06"` {
		t.Fatalf("marshal = %s, want \"2025-06\"", data)
	}
	var back Month
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.String() != "2025-06" {
		t.Errorf("round trip = %s", back)
	}
}

func TestParseMonthRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "2025", "2025-13", "06-2025", "2025-06-01"} {
		if _, err := ParseMonth(s); err == nil {
			t.Errorf("ParseMonth(%q) should fail", s)
		}
	}
}

func TestRecalculate(t *testing.T) {
	l := NewMonthLedger("u1", mustMonth(t, "2025-06"), Money{Cents: 100000})
	l.Days = []Day{
		{
			Date: mustDate(t, "2025-06-05"),
			Items: []LineItem{
				{ID: 1, Purpose: "Food", Amount: Money{Cents: 20000}},
				{ID: 2, Purpose: "Fuel", Amount: Money{Cents: 5000}},
			},
		},
		{
			Date:  mustDate(t, "2025-06-07"),
			Items: []LineItem{{ID: 3, Purpose: "Rent", Amount: Money{Cents: 30000}}},
		},
	}

	l.Recalculate()

	if l.Days[0].DayTotal.Cents != 25000 {
		t.Errorf("day 1 total = %d, want 25000", l.Days[0].DayTotal.Cents)
	}
	if l.MonthlyTotal.Cents != 55000 {
		t.Errorf("monthly total = %d, want 55000", l.MonthlyTotal.Cents)
	}
	if l.Balance.Cents != 45000 {
		t.Errorf("balance = %d, want 45000", l.Balance.Cents)
	}
	if err := l.CheckInvariants(); err != nil {
		t.Errorf("invariants: %v", err)
	}
}

func TestRecalculateEmptyDay(t *testing.T) {
	l := NewMonthLedger("u1", mustMonth(t, "2025-06"), Money{})
	l.Days = []Day{{Date: mustDate(t, "2025-06-05"), Items: []LineItem{}, DayTotal: Money{Cents: 999}}}

	l.Recalculate()

	if l.Days[0].DayTotal.Cents != 0 {
		t.Errorf("empty day total = %d, want 0", l.Days[0].DayTotal.Cents)
	}
	if l.MonthlyTotal.Cents != 0 || l.Balance.Cents != 0 {
		t.Errorf("monthly=%d balance=%d, want 0/0", l.MonthlyTotal.Cents, l.Balance.Cents)
	}
}

func TestAssignItemIDs(t *testing.T) {
	l := NewMonthLedger("u1", mustMonth(t, "2025-06"), Money{})
	items := l.AssignItemIDs([]LineItem{
		{Purpose: "A", Amount: Money{Cents: 100}},
		{Purpose: "B", Amount: Money{Cents: 200}},
	})
	if items[0].ID != 1 || items[1].ID != 2 {
		t.Errorf("ids = %d, %d, want 1, 2", items[0].ID, items[1].ID)
	}
	more := l.AssignItemIDs([]LineItem{{Purpose: "C", Amount: Money{Cents: 300}}})
	if more[0].ID != 3 {
		t.Errorf("next id = %d, want 3", more[0].ID)
	}
}

func TestNewEMIScheduleRollover(t *testing.T) {
	e, err := NewEMI("u1", "Laptop", mustMonth(t, "2025-11"), Money{Cents: 150000}, 4)
	if err != nil {
		t.Fatalf("NewEMI: %v", err)
	}

	want := []string{"2025-11", "2025-12", "2026-01", "2026-02"}
	if len(e.Schedule) != len(want) {
		t.Fatalf("schedule length = %d, want %d", len(e.Schedule), len(want))
	}
	for i, w := range want {
		if got := e.Schedule[i].Month.String(); got != w {
			t.Errorf("schedule[%d] = %s, want %s", i, got, w)
		}
		if e.Schedule[i].Paid {
			t.Errorf("schedule[%d] should start unpaid", i)
		}
		if e.Schedule[i].Amount.Cents != 150000 {
			t.Errorf("schedule[%d] amount = %d", i, e.Schedule[i].Amount.Cents)
		}
	}
	if e.TotalAmount.Cents != 600000 {
		t.Errorf("total = %d, want 600000", e.TotalAmount.Cents)
	}
	if e.RemainingAmount.Cents != 600000 {
		t.Errorf("remaining = %d, want 600000", e.RemainingAmount.Cents)
	}
	if err := e.CheckInvariants(); err != nil {
		t.Errorf("invariants: %v", err)
	}
}

func TestNewEMIValidation(t *testing.T) {
	start := NewMonth(2025, 1)
	if _, err := NewEMI("u1", "  ", start, Money{Cents: 100}, 3); err == nil {
		t.Error("empty title should fail")
	}
	if _, err := NewEMI("u1", "TV", start, Money{Cents: 0}, 3); err == nil {
		t.Error("zero amount should fail")
	}
	if _, err := NewEMI("u1", "TV", start, Money{Cents: 100}, 0); err == nil {
		t.Error("zero duration should fail")
	}
}

func TestRecalcRemaining(t *testing.T) {
	e, err := NewEMI("u1", "Bike", NewMonth(2025, 1), Money{Cents: 10000}, 3)
	if err != nil {
		t.Fatalf("NewEMI: %v", err)
	}

	e.Schedule[0].Paid = true
	e.RecalcRemaining()
	if e.RemainingAmount.Cents != 20000 {
		t.Errorf("remaining = %d, want 20000", e.RemainingAmount.Cents)
	}

	// Marking the same entry paid again must not change anything.
	e.Schedule[0].Paid = true
	e.RecalcRemaining()
	if e.RemainingAmount.Cents != 20000 {
		t.Errorf("remaining after repeat = %d, want 20000", e.RemainingAmount.Cents)
	}

	// Reverting back to unpaid restores the amount.
	e.Schedule[0].Paid = false
	e.RecalcRemaining()
	if e.RemainingAmount.Cents != 30000 {
		t.Errorf("remaining after revert = %d, want 30000", e.RemainingAmount.Cents)
	}
	if err := e.CheckInvariants(); err != nil {
		t.Errorf("invariants: %v", err)
	}
}

func TestLineItemValidate(t *testing.T) {
	if err := (LineItem{Purpose: " ", Amount: Money{Cents: 100}}).Validate(); err == nil {
		t.Error("blank purpose should fail")
	}
	if err := (LineItem{Purpose: "Food", Amount: Money{Cents: -1}}).Validate(); err == nil {
		t.Error("negative amount should fail")
	}
	if err := (LineItem{Purpose: "Food", Amount: Money{Cents: 0}}).Validate(); err != nil {
		t.Errorf("zero amount should pass: %v", err)
	}
}
