// Package storage persists ledger and EMI documents in SQLite. Each
// document is one row; the days and schedule collections are JSON columns,
// so a replace-by-key is a single UPDATE and the document is never
// partially written.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fintrack/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// FindMonth implements ports.LedgerStore.
func (r *SQLiteRepository) FindMonth(ctx context.Context, userID string, month core.Month) (*core.MonthLedger, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, month, salary_cents, days, monthly_total_cents, balance_cents, next_item_id
		 FROM ledgers WHERE user_id = ? AND month = ?`,
		userID, month.String())

	ledger, err := scanLedger(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: ledger %s/%s", core.ErrNotFound, userID, month)
	}
	if err != nil {
		return nil, fmt.Errorf("find ledger: %w", err)
	}
	return ledger, nil
}

// CreateMonth implements ports.LedgerStore. The UNIQUE(user_id, month)
// constraint is the storage backstop for one-ledger-per-user-month.
func (r *SQLiteRepository) CreateMonth(ctx context.Context, ledger *core.MonthLedger) error {
	days, err := json.Marshal(ledger.Days)
	if err != nil {
		return fmt.Errorf("marshal days: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO ledgers (user_id, month, salary_cents, days, monthly_total_cents, balance_cents, next_item_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ledger.UserID, ledger.Month.String(), ledger.SalaryCredited.Cents,
		string(days), ledger.MonthlyTotal.Cents, ledger.Balance.Cents, ledger.NextItemID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: ledger %s/%s", core.ErrConflict, ledger.UserID, ledger.Month)
		}
		return fmt.Errorf("insert ledger: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("ledger insert id: %w", err)
	}
	ledger.ID = id

	slog.InfoContext(ctx, "Ledger created",
		"id", ledger.ID,
		"user_id", ledger.UserID,
		"month", ledger.Month.String())

	return nil
}

// ReplaceMonth implements ports.LedgerStore. One UPDATE swaps the whole
// document, days and derived totals together.
func (r *SQLiteRepository) ReplaceMonth(ctx context.Context, ledger *core.MonthLedger) error {
	days, err := json.Marshal(ledger.Days)
	if err != nil {
		return fmt.Errorf("marshal days: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE ledgers
		 SET salary_cents = ?, days = ?, monthly_total_cents = ?, balance_cents = ?, next_item_id = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE user_id = ? AND month = ?`,
		ledger.SalaryCredited.Cents, string(days), ledger.MonthlyTotal.Cents,
		ledger.Balance.Cents, ledger.NextItemID, ledger.UserID, ledger.Month.String())
	if err != nil {
		return fmt.Errorf("update ledger: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ledger rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: ledger %s/%s", core.ErrNotFound, ledger.UserID, ledger.Month)
	}
	return nil
}

// ListMonths implements ports.LedgerStore. Month strings are zero padded,
// so lexicographic DESC is chronological, most recent first.
func (r *SQLiteRepository) ListMonths(ctx context.Context, userID string) ([]core.MonthLedger, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, month, salary_cents, days, monthly_total_cents, balance_cents, next_item_id
		 FROM ledgers WHERE user_id = ? ORDER BY month DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list ledgers: %w", err)
	}
	defer rows.Close()

	var out []core.MonthLedger
	for rows.Next() {
		ledger, err := scanLedger(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger: %w", err)
		}
		out = append(out, *ledger)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledgers: %w", err)
	}
	return out, nil
}

// FindEmi implements ports.EmiStore.
func (r *SQLiteRepository) FindEmi(ctx context.Context, id int64) (*core.EMI, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, start_month, amount_per_month_cents, duration, schedule, total_cents, remaining_cents
		 FROM emis WHERE id = ?`, id)

	emi, err := scanEmi(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: emi %d", core.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("find emi: %w", err)
	}
	return emi, nil
}

// CreateEmi implements ports.EmiStore.
func (r *SQLiteRepository) CreateEmi(ctx context.Context, emi *core.EMI) error {
	schedule, err := json.Marshal(emi.Schedule)
	if err != nil {
		return fmt.Errorf("marshal schedule: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO emis (user_id, title, start_month, amount_per_month_cents, duration, schedule, total_cents, remaining_cents)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		emi.UserID, emi.Title, emi.StartMonth.String(), emi.AmountPerMonth.Cents,
		emi.Duration, string(schedule), emi.TotalAmount.Cents, emi.RemainingAmount.Cents)
	if err != nil {
		return fmt.Errorf("insert emi: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("emi insert id: %w", err)
	}
	emi.ID = id

	slog.InfoContext(ctx, "EMI created",
		"id", emi.ID,
		"user_id", emi.UserID,
		"title", emi.Title,
		"duration", emi.Duration)

	return nil
}

// UpdateEmiProgress implements ports.EmiStore: a single UPDATE touching
// only the schedule and its derived remaining amount.
func (r *SQLiteRepository) UpdateEmiProgress(ctx context.Context, id int64, schedule []core.ScheduleEntry, remaining core.Money) error {
	data, err := json.Marshal(schedule)
	if err != nil {
		return fmt.Errorf("marshal schedule: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE emis SET schedule = ?, remaining_cents = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		string(data), remaining.Cents, id)
	if err != nil {
		return fmt.Errorf("update emi: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("emi rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: emi %d", core.ErrNotFound, id)
	}
	return nil
}

// DeleteEmi implements ports.EmiStore. Reports whether a row was removed.
func (r *SQLiteRepository) DeleteEmi(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM emis WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete emi: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("emi rows affected: %w", err)
	}
	return n > 0, nil
}

// ListEmis implements ports.EmiStore.
func (r *SQLiteRepository) ListEmis(ctx context.Context, userID string) ([]core.EMI, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, start_month, amount_per_month_cents, duration, schedule, total_cents, remaining_cents
		 FROM emis WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list emis: %w", err)
	}
	defer rows.Close()

	var out []core.EMI
	for rows.Next() {
		emi, err := scanEmi(rows)
		if err != nil {
			return nil, fmt.Errorf("scan emi: %w", err)
		}
		out = append(out, *emi)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate emis: %w", err)
	}
	return out, nil
}

// ListLedgersUpdatedSince returns ledgers touched at or after the given
// instant. Used by the sync worker's periodic catch-up pass.
func (r *SQLiteRepository) ListLedgersUpdatedSince(ctx context.Context, since time.Time) ([]core.MonthLedger, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, month, salary_cents, days, monthly_total_cents, balance_cents, next_item_id
		 FROM ledgers WHERE updated_at >= ? ORDER BY updated_at`,
		since.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return nil, fmt.Errorf("list updated ledgers: %w", err)
	}
	defer rows.Close()

	var out []core.MonthLedger
	for rows.Next() {
		ledger, err := scanLedger(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger: %w", err)
		}
		out = append(out, *ledger)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledgers: %w", err)
	}
	return out, nil
}

// ListEmisUpdatedSince returns EMIs touched at or after the given instant.
func (r *SQLiteRepository) ListEmisUpdatedSince(ctx context.Context, since time.Time) ([]core.EMI, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, start_month, amount_per_month_cents, duration, schedule, total_cents, remaining_cents
		 FROM emis WHERE updated_at >= ? ORDER BY updated_at`,
		since.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return nil, fmt.Errorf("list updated emis: %w", err)
	}
	defer rows.Close()

	var out []core.EMI
	for rows.Next() {
		emi, err := scanEmi(rows)
		if err != nil {
			return nil, fmt.Errorf("scan emi: %w", err)
		}
		out = append(out, *emi)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate emis: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLedger(row scanner) (*core.MonthLedger, error) {
	var (
		ledger   core.MonthLedger
		monthStr string
		daysJSON string
	)
	err := row.Scan(&ledger.ID, &ledger.UserID, &monthStr, &ledger.SalaryCredited.Cents,
		&daysJSON, &ledger.MonthlyTotal.Cents, &ledger.Balance.Cents, &ledger.NextItemID)
	if err != nil {
		return nil, err
	}

	month, err := core.ParseMonth(monthStr)
	if err != nil {
		return nil, fmt.Errorf("stored month %q: %w", monthStr, err)
	}
	ledger.Month = month

	if err := json.Unmarshal([]byte(daysJSON), &ledger.Days); err != nil {
		return nil, fmt.Errorf("unmarshal days: %w", err)
	}
	if ledger.Days == nil {
		ledger.Days = []core.Day{}
	}
	return &ledger, nil
}

func scanEmi(row scanner) (*core.EMI, error) {
	var (
		emi          core.EMI
		monthStr     string
		scheduleJSON string
	)
	err := row.Scan(&emi.ID, &emi.UserID, &emi.Title, &monthStr, &emi.AmountPerMonth.Cents,
		&emi.Duration, &scheduleJSON, &emi.TotalAmount.Cents, &emi.RemainingAmount.Cents)
	if err != nil {
		return nil, err
	}

	month, err := core.ParseMonth(monthStr)
	if err != nil {
		return nil, fmt.Errorf("stored start month %q: %w", monthStr, err)
	}
	emi.StartMonth = month

	if err := json.Unmarshal([]byte(scheduleJSON), &emi.Schedule); err != nil {
		return nil, fmt.Errorf("unmarshal schedule: %w", err)
	}
	return &emi, nil
}

// isUniqueViolation detects the driver's UNIQUE constraint error. The
// modernc driver exposes no typed error for this, only the message.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
