package core

import (
	"fmt"
	"strings"
)

type (
	// LineItem is a single expense entry within a day. ID is assigned by
	// the owning ledger when the item is first persisted and is unique
	// within that ledger.
	LineItem struct {
		ID      int64  `json:"id"`
		Purpose string `json:"purpose"`
		Amount  Money  `json:"amount"`
	}

	// Day groups the line items of one calendar date. DayTotal is derived:
	// always the sum of the item amounts, recomputed on every mutation.
	Day struct {
		Date     Date       `json:"date"`
		Items    []LineItem `json:"items"`
		DayTotal Money      `json:"dayTotal"`
	}

	// MonthLedger is the per-user, per-month expense document. MonthlyTotal
	// and Balance are derived from Days and SalaryCredited. NextItemID is
	// the allocator for line item IDs within this document.
	MonthLedger struct {
		ID             int64  `json:"id"`
		UserID         string `json:"userId"`
		Month          Month  `json:"month"`
		SalaryCredited Money  `json:"salaryCredited"`
		Days           []Day  `json:"days"`
		MonthlyTotal   Money  `json:"monthlyTotal"`
		Balance        Money  `json:"balance"`
		NextItemID     int64  `json:"nextItemId"`
	}

	// ScheduleEntry is one installment period of an EMI.
	ScheduleEntry struct {
		Month  Month `json:"month"`
		Amount Money `json:"amount"`
		Paid   bool  `json:"paid"`
	}

	// EMI is a fixed-installment loan document. TotalAmount is fixed at
	// creation; RemainingAmount is derived from the entry statuses.
	EMI struct {
		ID              int64           `json:"id"`
		UserID          string          `json:"userId"`
		Title           string          `json:"title"`
		StartMonth      Month           `json:"startMonth"`
		AmountPerMonth  Money           `json:"amountPerMonth"`
		Duration        int             `json:"duration"`
		Schedule        []ScheduleEntry `json:"schedule"`
		TotalAmount     Money           `json:"totalAmount"`
		RemainingAmount Money           `json:"remainingAmount"`
	}
)

func (li LineItem) Validate() error {
	if strings.TrimSpace(li.Purpose) == "" {
		return ErrEmptyPurpose
	}
	if err := li.Amount.Validate(); err != nil {
		return err
	}
	return nil
}

// NewMonthLedger creates an empty ledger for a user and month. Totals start
// consistent: no days, monthly total zero, balance equal to the salary.
func NewMonthLedger(userID string, month Month, salary Money) *MonthLedger {
	return &MonthLedger{
		UserID:         userID,
		Month:          month,
		SalaryCredited: salary,
		Days:           []Day{},
		MonthlyTotal:   Money{},
		Balance:        salary,
		NextItemID:     1,
	}
}

// FindDay returns a pointer into Days for the given date, or nil.
func (l *MonthLedger) FindDay(date Date) *Day {
	for i := range l.Days {
		if l.Days[i].Date.Equal(date.Time) {
			return &l.Days[i]
		}
	}
	return nil
}

// AssignItemIDs gives every item without an ID the next free ID in this
// ledger. Existing IDs are never reassigned.
func (l *MonthLedger) AssignItemIDs(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)
	for i := range out {
		if out[i].ID == 0 {
			out[i].ID = l.NextItemID
			l.NextItemID++
		}
	}
	return out
}

// Recalculate re-derives every dependent total from the source-of-truth
// collections: each day's total from its items, the monthly total from the
// day totals, the balance from salary minus monthly total. It runs after
// every structural mutation, before the document is persisted. O(days x
// items) per call, which is fine for a month's bounded size; recomputing
// from scratch keeps the aggregates free of accumulator drift.
func (l *MonthLedger) Recalculate() {
	var monthly Money
	for i := range l.Days {
		var dayTotal Money
		for _, item := range l.Days[i].Items {
			dayTotal = dayTotal.Add(item.Amount)
		}
		l.Days[i].DayTotal = dayTotal
		monthly = monthly.Add(dayTotal)
	}
	l.MonthlyTotal = monthly
	l.Balance = l.SalaryCredited.Sub(monthly)
}

// CheckInvariants verifies the derived-total invariants. Used by tests.
func (l *MonthLedger) CheckInvariants() error {
	var monthly int64
	for _, d := range l.Days {
		var day int64
		for _, item := range d.Items {
			day += item.Amount.Cents
		}
		if d.DayTotal.Cents != day {
			return fmt.Errorf("day %s total %d != sum of items %d", d.Date, d.DayTotal.Cents, day)
		}
		monthly += day
	}
	if l.MonthlyTotal.Cents != monthly {
		return fmt.Errorf("monthly total %d != sum of day totals %d", l.MonthlyTotal.Cents, monthly)
	}
	if l.Balance.Cents != l.SalaryCredited.Cents-monthly {
		return fmt.Errorf("balance %d != salary %d - monthly %d", l.Balance.Cents, l.SalaryCredited.Cents, monthly)
	}
	return nil
}

// NewEMI creates a loan with its full schedule generated eagerly: entry i is
// dated startMonth + i calendar months, amount fixed, unpaid. TotalAmount is
// amountPerMonth x duration and never changes afterwards.
func NewEMI(userID, title string, startMonth Month, amountPerMonth Money, duration int) (*EMI, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrEmptyTitle
	}
	if amountPerMonth.Cents < 1 {
		return nil, fmt.Errorf("%w: amount per month must be at least 1", ErrInvalidInput)
	}
	if duration < 1 {
		return nil, fmt.Errorf("%w: duration must be at least 1", ErrInvalidInput)
	}
	total := amountPerMonth.Mul(duration)
	e := &EMI{
		UserID:          userID,
		Title:           strings.TrimSpace(title),
		StartMonth:      startMonth,
		AmountPerMonth:  amountPerMonth,
		Duration:        duration,
		Schedule:        GenerateSchedule(startMonth, amountPerMonth, duration),
		TotalAmount:     total,
		RemainingAmount: total,
	}
	return e, nil
}

// GenerateSchedule builds the installment sequence for a fixed monthly
// amount over duration months starting at startMonth. Month arithmetic
// rolls over year boundaries (2025-11 + 2 -> 2026-01).
func GenerateSchedule(startMonth Month, amount Money, duration int) []ScheduleEntry {
	schedule := make([]ScheduleEntry, 0, duration)
	for i := 0; i < duration; i++ {
		schedule = append(schedule, ScheduleEntry{
			Month:  startMonth.AddMonths(i),
			Amount: amount,
			Paid:   false,
		})
	}
	return schedule
}

// RecalcRemaining re-derives the remaining amount from the entry statuses.
// Runs after every status toggle; never patched incrementally.
func (e *EMI) RecalcRemaining() {
	var paid Money
	for _, entry := range e.Schedule {
		if entry.Paid {
			paid = paid.Add(entry.Amount)
		}
	}
	e.RemainingAmount = e.TotalAmount.Sub(paid)
}

// CheckInvariants verifies the EMI invariants. Used by tests.
func (e *EMI) CheckInvariants() error {
	if e.TotalAmount.Cents != e.AmountPerMonth.Cents*int64(e.Duration) {
		return fmt.Errorf("total %d != %d x %d", e.TotalAmount.Cents, e.AmountPerMonth.Cents, e.Duration)
	}
	if len(e.Schedule) != e.Duration {
		return fmt.Errorf("schedule length %d != duration %d", len(e.Schedule), e.Duration)
	}
	var paid int64
	for i, entry := range e.Schedule {
		if want := e.StartMonth.AddMonths(i); entry.Month.String() != want.String() {
			return fmt.Errorf("entry %d month %s != %s", i, entry.Month, want)
		}
		if entry.Amount.Cents != e.AmountPerMonth.Cents {
			return fmt.Errorf("entry %d amount %d != %d", i, entry.Amount.Cents, e.AmountPerMonth.Cents)
		}
		if entry.Paid {
			paid += entry.Amount.Cents
		}
	}
	if e.RemainingAmount.Cents != e.TotalAmount.Cents-paid {
		return fmt.Errorf("remaining %d != total %d - paid %d", e.RemainingAmount.Cents, e.TotalAmount.Cents, paid)
	}
	return nil
}
