// Package ledger implements the month ledger engine: one expense document
// per user and calendar month, with per-day line items and derived totals.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/keylock"
	"fintrack/internal/ports"
)

// Service runs every mutation as read -> re-derive -> atomic replace over
// one document, serialized per (userID, month) so concurrent mutations of
// the same ledger cannot lose each other's updates. Operations on different
// users or months run concurrently.
type Service struct {
	store  ports.LedgerStore
	events *amqp.Client
	locks  *keylock.KeyLock
}

func NewService(store ports.LedgerStore, events *amqp.Client) *Service {
	return &Service{
		store:  store,
		events: events,
		locks:  keylock.New(),
	}
}

func lockKey(userID string, month core.Month) string {
	return userID + "|" + month.String()
}

// CreateMonth creates an empty ledger for the month. Fails with
// core.ErrConflict if one already exists for (userID, month).
func (s *Service) CreateMonth(ctx context.Context, userID string, month core.Month, initialSalary core.Money) (*core.MonthLedger, error) {
	if err := initialSalary.Validate(); err != nil {
		return nil, fmt.Errorf("%w: negative salary", core.ErrInvalidInput)
	}

	key := lockKey(userID, month)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	if _, err := s.store.FindMonth(ctx, userID, month); err == nil {
		return nil, fmt.Errorf("%w: ledger for %s/%s", core.ErrConflict, userID, month)
	} else if !core.IsNotFound(err) {
		return nil, fmt.Errorf("find month: %w", err)
	}

	ledger := core.NewMonthLedger(userID, month, initialSalary)
	if err := s.store.CreateMonth(ctx, ledger); err != nil {
		return nil, fmt.Errorf("create month: %w", err)
	}

	s.publishSync(ctx, ledger)
	return ledger, nil
}

// SetSalary sets the salary credited for the month, re-deriving the balance.
// A missing ledger is created on the spot with this salary; that is the
// normal first write of a month, not an error.
func (s *Service) SetSalary(ctx context.Context, userID string, month core.Month, salary core.Money) (*core.MonthLedger, error) {
	if err := salary.Validate(); err != nil {
		return nil, fmt.Errorf("%w: negative salary", core.ErrInvalidInput)
	}

	key := lockKey(userID, month)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	ledger, existed, err := s.findOrCreate(ctx, userID, month, salary)
	if err != nil {
		return nil, err
	}
	if existed {
		ledger.SalaryCredited = salary
		ledger.Recalculate()
		if err := s.store.ReplaceMonth(ctx, ledger); err != nil {
			return nil, fmt.Errorf("replace month: %w", err)
		}
	}

	s.publishSync(ctx, ledger)
	return ledger, nil
}

// AddDay records line items for a date. If the date already has a day, the
// items are appended to it; an existing ledger is never required, a missing
// one is created with zero salary. Fails with core.ErrInvalidInput when the
// date does not fall inside the ledger month.
func (s *Service) AddDay(ctx context.Context, userID string, month core.Month, date core.Date, items []core.LineItem) (*core.MonthLedger, error) {
	if !date.In(month) {
		return nil, fmt.Errorf("%w: date %s outside month %s", core.ErrInvalidInput, date, month)
	}
	if err := validateItems(items); err != nil {
		return nil, err
	}

	key := lockKey(userID, month)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	ledger, _, err := s.findOrCreate(ctx, userID, month, core.Money{})
	if err != nil {
		return nil, err
	}

	assigned := ledger.AssignItemIDs(items)
	if day := ledger.FindDay(date); day != nil {
		day.Items = append(day.Items, assigned...)
	} else {
		ledger.Days = append(ledger.Days, core.Day{Date: date, Items: assigned})
		sort.Slice(ledger.Days, func(i, j int) bool {
			return ledger.Days[i].Date.Before(ledger.Days[j].Date.Time)
		})
	}

	ledger.Recalculate()
	if err := s.store.ReplaceMonth(ctx, ledger); err != nil {
		return nil, fmt.Errorf("replace month: %w", err)
	}

	s.publishSync(ctx, ledger)
	return ledger, nil
}

// UpdateDay replaces the full item list of an existing day. Unlike AddDay it
// never creates anything: both the ledger and the day must exist.
func (s *Service) UpdateDay(ctx context.Context, userID string, month core.Month, date core.Date, items []core.LineItem) (*core.MonthLedger, error) {
	if !date.In(month) {
		return nil, fmt.Errorf("%w: date %s outside month %s", core.ErrInvalidInput, date, month)
	}
	if err := validateItems(items); err != nil {
		return nil, err
	}

	key := lockKey(userID, month)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	ledger, err := s.store.FindMonth(ctx, userID, month)
	if err != nil {
		return nil, fmt.Errorf("find month: %w", err)
	}
	day := ledger.FindDay(date)
	if day == nil {
		return nil, fmt.Errorf("%w: day %s", core.ErrNotFound, date)
	}

	day.Items = ledger.AssignItemIDs(items)

	ledger.Recalculate()
	if err := s.store.ReplaceMonth(ctx, ledger); err != nil {
		return nil, fmt.Errorf("replace month: %w", err)
	}

	s.publishSync(ctx, ledger)
	return ledger, nil
}

// DeleteDay removes a day and its items entirely.
func (s *Service) DeleteDay(ctx context.Context, userID string, month core.Month, date core.Date) (*core.MonthLedger, error) {
	key := lockKey(userID, month)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	ledger, err := s.store.FindMonth(ctx, userID, month)
	if err != nil {
		return nil, fmt.Errorf("find month: %w", err)
	}

	idx := -1
	for i := range ledger.Days {
		if ledger.Days[i].Date.Equal(date.Time) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: day %s", core.ErrNotFound, date)
	}
	ledger.Days = append(ledger.Days[:idx], ledger.Days[idx+1:]...)

	ledger.Recalculate()
	if err := s.store.ReplaceMonth(ctx, ledger); err != nil {
		return nil, fmt.Errorf("replace month: %w", err)
	}

	s.publishSync(ctx, ledger)
	return ledger, nil
}

// DeleteItem removes a single line item from a day by its id. Removing the
// last item leaves the day in place with an empty item list and a zero
// total; only DeleteDay removes a day.
func (s *Service) DeleteItem(ctx context.Context, userID string, month core.Month, date core.Date, itemID int64) (*core.MonthLedger, error) {
	key := lockKey(userID, month)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	ledger, err := s.store.FindMonth(ctx, userID, month)
	if err != nil {
		return nil, fmt.Errorf("find month: %w", err)
	}
	day := ledger.FindDay(date)
	if day == nil {
		return nil, fmt.Errorf("%w: day %s", core.ErrNotFound, date)
	}

	idx := -1
	for i := range day.Items {
		if day.Items[i].ID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: item %d on %s", core.ErrNotFound, itemID, date)
	}
	day.Items = append(day.Items[:idx], day.Items[idx+1:]...)

	ledger.Recalculate()
	if err := s.store.ReplaceMonth(ctx, ledger); err != nil {
		return nil, fmt.Errorf("replace month: %w", err)
	}

	s.publishSync(ctx, ledger)
	return ledger, nil
}

// GetMonth returns one ledger. Pure read.
func (s *Service) GetMonth(ctx context.Context, userID string, month core.Month) (*core.MonthLedger, error) {
	ledger, err := s.store.FindMonth(ctx, userID, month)
	if err != nil {
		return nil, fmt.Errorf("find month: %w", err)
	}
	return ledger, nil
}

// ListMonths returns the user's ledgers, most recent month first. Pure read.
func (s *Service) ListMonths(ctx context.Context, userID string) ([]core.MonthLedger, error) {
	ledgers, err := s.store.ListMonths(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list months: %w", err)
	}
	return ledgers, nil
}

// findOrCreate is the implicit-creation step of SetSalary and AddDay made
// explicit: the second return value reports whether the ledger pre-existed.
func (s *Service) findOrCreate(ctx context.Context, userID string, month core.Month, salary core.Money) (*core.MonthLedger, bool, error) {
	ledger, err := s.store.FindMonth(ctx, userID, month)
	if err == nil {
		return ledger, true, nil
	}
	if !core.IsNotFound(err) {
		return nil, false, fmt.Errorf("find month: %w", err)
	}

	ledger = core.NewMonthLedger(userID, month, salary)
	if err := s.store.CreateMonth(ctx, ledger); err != nil {
		return nil, false, fmt.Errorf("create month: %w", err)
	}
	return ledger, false, nil
}

func validateItems(items []core.LineItem) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: no items", core.ErrInvalidInput)
	}
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// publishSync emits a best-effort change event. The ledger is already
// persisted; a failed publish is logged and never fails the request, the
// worker's periodic resync covers the gap.
func (s *Service) publishSync(ctx context.Context, ledger *core.MonthLedger) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishLedgerSync(ctx, ledger.UserID, ledger.Month.String()); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger sync message",
			"user_id", ledger.UserID,
			"month", ledger.Month.String(),
			"error", err)
	}
}
