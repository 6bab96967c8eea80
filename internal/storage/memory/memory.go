// Package memory provides an in-memory Store for tests and local runs
// without a database file.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"fintrack/internal/core"
)

type ledgerKey struct {
	UserID string
	Month  string
}

// Store keeps documents in maps guarded by one mutex. Documents are deep
// copied on the way in and out so callers can never mutate stored state
// without going through ReplaceMonth/UpdateEmiProgress.
type Store struct {
	mu         sync.Mutex
	ledgers    map[ledgerKey]*core.MonthLedger
	emis       map[int64]*core.EMI
	nextLedger int64
	nextEmi    int64
}

func New() *Store {
	return &Store{
		ledgers:    make(map[ledgerKey]*core.MonthLedger),
		emis:       make(map[int64]*core.EMI),
		nextLedger: 1,
		nextEmi:    1,
	}
}

func (s *Store) FindMonth(_ context.Context, userID string, month core.Month) (*core.MonthLedger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger, ok := s.ledgers[ledgerKey{UserID: userID, Month: month.String()}]
	if !ok {
		return nil, fmt.Errorf("%w: ledger %s/%s", core.ErrNotFound, userID, month)
	}
	return copyLedger(ledger), nil
}

func (s *Store) CreateMonth(_ context.Context, ledger *core.MonthLedger) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := ledgerKey{UserID: ledger.UserID, Month: ledger.Month.String()}
	if _, ok := s.ledgers[k]; ok {
		return fmt.Errorf("%w: ledger %s/%s", core.ErrConflict, ledger.UserID, ledger.Month)
	}
	ledger.ID = s.nextLedger
	s.nextLedger++
	s.ledgers[k] = copyLedger(ledger)
	return nil
}

func (s *Store) ReplaceMonth(_ context.Context, ledger *core.MonthLedger) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := ledgerKey{UserID: ledger.UserID, Month: ledger.Month.String()}
	if _, ok := s.ledgers[k]; !ok {
		return fmt.Errorf("%w: ledger %s/%s", core.ErrNotFound, ledger.UserID, ledger.Month)
	}
	s.ledgers[k] = copyLedger(ledger)
	return nil
}

func (s *Store) ListMonths(_ context.Context, userID string) ([]core.MonthLedger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.MonthLedger
	for k, ledger := range s.ledgers {
		if k.UserID == userID {
			out = append(out, *copyLedger(ledger))
		}
	}
	// Most recent month first.
	sort.Slice(out, func(i, j int) bool {
		return out[j].Month.Before(out[i].Month)
	})
	return out, nil
}

func (s *Store) FindEmi(_ context.Context, id int64) (*core.EMI, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.emis[id]
	if !ok {
		return nil, fmt.Errorf("%w: emi %d", core.ErrNotFound, id)
	}
	return copyEmi(e), nil
}

func (s *Store) CreateEmi(_ context.Context, emi *core.EMI) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	emi.ID = s.nextEmi
	s.nextEmi++
	s.emis[emi.ID] = copyEmi(emi)
	return nil
}

func (s *Store) UpdateEmiProgress(_ context.Context, id int64, schedule []core.ScheduleEntry, remaining core.Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.emis[id]
	if !ok {
		return fmt.Errorf("%w: emi %d", core.ErrNotFound, id)
	}
	e.Schedule = append([]core.ScheduleEntry(nil), schedule...)
	e.RemainingAmount = remaining
	return nil
}

func (s *Store) DeleteEmi(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.emis[id]; !ok {
		return false, nil
	}
	delete(s.emis, id)
	return true, nil
}

func (s *Store) ListEmis(_ context.Context, userID string) ([]core.EMI, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.EMI
	for _, e := range s.emis {
		if e.UserID == userID {
			out = append(out, *copyEmi(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Deep copies go through JSON, the same codec the sqlite columns use.

func copyLedger(in *core.MonthLedger) *core.MonthLedger {
	data, err := json.Marshal(in)
	if err != nil {
		panic(fmt.Sprintf("memory: marshal ledger: %v", err))
	}
	var out core.MonthLedger
	if err := json.Unmarshal(data, &out); err != nil {
		panic(fmt.Sprintf("memory: unmarshal ledger: %v", err))
	}
	if out.Days == nil {
		out.Days = []core.Day{}
	}
	return &out
}

func copyEmi(in *core.EMI) *core.EMI {
	data, err := json.Marshal(in)
	if err != nil {
		panic(fmt.Sprintf("memory: marshal emi: %v", err))
	}
	var out core.EMI
	if err := json.Unmarshal(data, &out); err != nil {
		panic(fmt.Sprintf("memory: unmarshal emi: %v", err))
	}
	return &out
}
