// Package worker mirrors ledger and EMI documents to the export sheet.
// It consumes change events from AMQP and re-reads each document from the
// database before writing, so message ordering and duplicates do not matter.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/sheets"
	"fintrack/internal/storage"
)

// SyncWorker handles synchronization of documents from SQLite to the sheet.
type SyncWorker struct {
	storage *storage.SQLiteRepository
	ledgers sheets.LedgerSnapshotWriter
	emis    sheets.EmiProgressWriter

	mu       sync.Mutex
	lastSync time.Time
}

func NewSyncWorker(storage *storage.SQLiteRepository, ledgers sheets.LedgerSnapshotWriter, emis sheets.EmiProgressWriter) *SyncWorker {
	return &SyncWorker{
		storage:  storage,
		ledgers:  ledgers,
		emis:     emis,
		lastSync: time.Now(),
	}
}

// HandleMessage processes a single sync message from AMQP.
func (w *SyncWorker) HandleMessage(ctx context.Context, msg *amqp.SyncMessage) error {
	switch msg.Kind {
	case amqp.KindLedgerSync:
		return w.syncLedger(ctx, msg.UserID, msg.Month)
	case amqp.KindEmiSync:
		return w.syncEmi(ctx, msg.EmiID)
	default:
		slog.WarnContext(ctx, "Unknown sync message kind, dropping", "kind", msg.Kind)
		return nil
	}
}

func (w *SyncWorker) syncLedger(ctx context.Context, userID, monthStr string) error {
	month, err := core.ParseMonth(monthStr)
	if err != nil {
		// Undecodable key; requeueing will never succeed.
		slog.ErrorContext(ctx, "Dropping ledger sync with bad month", "month", monthStr, "error", err)
		return nil
	}

	ledger, err := w.storage.FindMonth(ctx, userID, month)
	if core.IsNotFound(err) {
		// Deleted or never persisted; nothing to mirror.
		slog.InfoContext(ctx, "Ledger gone, skipping sync", "user_id", userID, "month", monthStr)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get ledger from storage: %w", err)
	}

	if err := w.ledgers.WriteMonthSnapshot(ctx, ledger); err != nil {
		return fmt.Errorf("write month snapshot: %w", err)
	}
	return nil
}

func (w *SyncWorker) syncEmi(ctx context.Context, id int64) error {
	emi, err := w.storage.FindEmi(ctx, id)
	if core.IsNotFound(err) {
		slog.InfoContext(ctx, "EMI gone, skipping sync", "emi_id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get emi from storage: %w", err)
	}

	if err := w.emis.WriteEmiProgress(ctx, emi); err != nil {
		return fmt.Errorf("write emi progress: %w", err)
	}
	return nil
}

// ProcessPending re-exports every document updated since the previous pass.
// Covers messages lost to failed publishes or broker downtime.
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	w.mu.Lock()
	since := w.lastSync
	w.lastSync = time.Now()
	w.mu.Unlock()

	ledgers, err := w.storage.ListLedgersUpdatedSince(ctx, since)
	if err != nil {
		return fmt.Errorf("list updated ledgers: %w", err)
	}
	for i := range ledgers {
		if err := w.ledgers.WriteMonthSnapshot(ctx, &ledgers[i]); err != nil {
			return fmt.Errorf("write month snapshot %s/%s: %w", ledgers[i].UserID, ledgers[i].Month, err)
		}
	}

	emis, err := w.storage.ListEmisUpdatedSince(ctx, since)
	if err != nil {
		return fmt.Errorf("list updated emis: %w", err)
	}
	for i := range emis {
		if err := w.emis.WriteEmiProgress(ctx, &emis[i]); err != nil {
			return fmt.Errorf("write emi progress %d: %w", emis[i].ID, err)
		}
	}

	if len(ledgers) > 0 || len(emis) > 0 {
		slog.InfoContext(ctx, "Periodic sync pass complete",
			"ledgers", len(ledgers),
			"emis", len(emis),
			"since", since)
	}
	return nil
}

// StartupSyncCheck re-exports documents updated in the recent past, in case
// the worker was down while changes happened.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context, window time.Duration) error {
	w.mu.Lock()
	w.lastSync = time.Now().Add(-window)
	w.mu.Unlock()

	slog.InfoContext(ctx, "Startup sync check", "window", window)
	return w.ProcessPending(ctx)
}
