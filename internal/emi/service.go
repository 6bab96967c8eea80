// Package emi implements the amortization engine: fixed monthly installment
// schedules generated eagerly at creation, with per-entry paid state and a
// remaining amount always recomputed from the entry statuses.
package emi

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/keylock"
	"fintrack/internal/ports"
)

// Service mutates one EMI document per operation, serialized per id.
type Service struct {
	store  ports.EmiStore
	events *amqp.Client
	locks  *keylock.KeyLock
}

func NewService(store ports.EmiStore, events *amqp.Client) *Service {
	return &Service{
		store:  store,
		events: events,
		locks:  keylock.New(),
	}
}

// CreateEmi creates a loan with its full schedule. Entry i is dated
// startMonth + i calendar months, rolling over year boundaries.
func (s *Service) CreateEmi(ctx context.Context, userID, title string, startMonth core.Month, amountPerMonth core.Money, duration int) (*core.EMI, error) {
	e, err := core.NewEMI(userID, title, startMonth, amountPerMonth, duration)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateEmi(ctx, e); err != nil {
		return nil, fmt.Errorf("create emi: %w", err)
	}

	s.publishSync(ctx, e.ID)
	return e, nil
}

// SetEntryStatus marks one installment paid or unpaid and re-derives the
// remaining amount. Marking an entry with its current status again is a
// no-op on the remaining amount; both directions of the toggle are allowed.
func (s *Service) SetEntryStatus(ctx context.Context, id int64, index int, paid bool) (*core.EMI, error) {
	key := strconv.FormatInt(id, 10)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	e, err := s.store.FindEmi(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find emi: %w", err)
	}
	if index < 0 || index >= e.Duration {
		return nil, fmt.Errorf("%w: index %d outside [0, %d)", core.ErrInvalidInput, index, e.Duration)
	}

	e.Schedule[index].Paid = paid
	e.RecalcRemaining()

	if err := s.store.UpdateEmiProgress(ctx, id, e.Schedule, e.RemainingAmount); err != nil {
		return nil, fmt.Errorf("update emi progress: %w", err)
	}

	s.publishSync(ctx, id)
	return e, nil
}

// DeleteEmi removes the whole record. Deleting an absent record reports
// false without error; delete is idempotent.
func (s *Service) DeleteEmi(ctx context.Context, id int64) (bool, error) {
	key := strconv.FormatInt(id, 10)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	deleted, err := s.store.DeleteEmi(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete emi: %w", err)
	}
	return deleted, nil
}

// GetEmi returns one loan. Pure read.
func (s *Service) GetEmi(ctx context.Context, id int64) (*core.EMI, error) {
	e, err := s.store.FindEmi(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find emi: %w", err)
	}
	return e, nil
}

// ListEmis returns the user's loans. Pure read.
func (s *Service) ListEmis(ctx context.Context, userID string) ([]core.EMI, error) {
	emis, err := s.store.ListEmis(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list emis: %w", err)
	}
	return emis, nil
}

func (s *Service) publishSync(ctx context.Context, id int64) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishEmiSync(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish emi sync message",
			"emi_id", id,
			"error", err)
	}
}
