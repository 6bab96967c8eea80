// Package ports declares the persistence interfaces the engines consume.
// Implementations live in internal/storage (SQLite) and
// internal/storage/memory (in-memory, tests and the memory backend).
package ports

import (
	"context"

	"fintrack/internal/core"
)

type (
	// LedgerStore persists month ledger documents keyed by (userID, month).
	// FindMonth returns core.ErrNotFound for an absent document;
	// CreateMonth returns core.ErrConflict when the key already exists.
	// ReplaceMonth swaps the whole document in one atomic write.
	LedgerStore interface {
		FindMonth(ctx context.Context, userID string, month core.Month) (*core.MonthLedger, error)
		CreateMonth(ctx context.Context, ledger *core.MonthLedger) error
		ReplaceMonth(ctx context.Context, ledger *core.MonthLedger) error
		// ListMonths returns the user's ledgers, most recent month first.
		ListMonths(ctx context.Context, userID string) ([]core.MonthLedger, error)
	}

	// EmiStore persists EMI documents keyed by id. DeleteEmi reports
	// whether a record was actually removed; deleting an absent record is
	// not an error. UpdateEmiProgress writes only the derived columns
	// (schedule and remaining amount) of an existing record.
	EmiStore interface {
		FindEmi(ctx context.Context, id int64) (*core.EMI, error)
		CreateEmi(ctx context.Context, emi *core.EMI) error
		UpdateEmiProgress(ctx context.Context, id int64, schedule []core.ScheduleEntry, remaining core.Money) error
		DeleteEmi(ctx context.Context, id int64) (bool, error)
		ListEmis(ctx context.Context, userID string) ([]core.EMI, error)
	}

	// Store is the full persistence surface a backend must provide.
	Store interface {
		LedgerStore
		EmiStore
	}
)
