package sheets

import (
	"context"

	"fintrack/internal/core"
)

// Ports for outbound export adapters.
type (
	// LedgerSnapshotWriter mirrors one month ledger to an external sheet.
	// Upsert semantics: repeated writes of the same (user, month) overwrite
	// the previous snapshot, so duplicate sync messages are harmless.
	LedgerSnapshotWriter interface {
		WriteMonthSnapshot(ctx context.Context, ledger *core.MonthLedger) error
	}

	// EmiProgressWriter mirrors one loan's progress line.
	EmiProgressWriter interface {
		WriteEmiProgress(ctx context.Context, emi *core.EMI) error
	}
)
