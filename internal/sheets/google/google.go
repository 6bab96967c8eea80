// Package google exports ledger and EMI snapshots to a Google Spreadsheet
// using Service Account credentials.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"fintrack/internal/core"
	ports "fintrack/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	ledgerSheet   string
	emiSheet      string
}

// Ensure interface conformance
var (
	_ ports.LedgerSnapshotWriter = (*Client)(nil)
	_ ports.EmiProgressWriter    = (*Client)(nil)
)

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID
// Auth: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
// Optional sheet names: GOOGLE_LEDGER_SHEET_NAME (default "Ledgers"),
// GOOGLE_EMI_SHEET_NAME (default "EMIs").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	ledgerSheet := strings.TrimSpace(os.Getenv("GOOGLE_LEDGER_SHEET_NAME"))
	if ledgerSheet == "" {
		ledgerSheet = "Ledgers"
	}
	emiSheet := strings.TrimSpace(os.Getenv("GOOGLE_EMI_SHEET_NAME"))
	if emiSheet == "" {
		emiSheet = "EMIs"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		ledgerSheet:   ledgerSheet,
		emiSheet:      emiSheet,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))

	// Also check the standard Google Cloud environment variable
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return service, nil
}

// WriteMonthSnapshot upserts one ledger month into the ledger sheet: a
// header row with the derived totals, then one row per day per item. The
// snapshot's row block is keyed by "userID month" in column A, so a rewrite
// replaces the previous state of that month.
func (c *Client) WriteMonthSnapshot(ctx context.Context, ledger *core.MonthLedger) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	key := fmt.Sprintf("%s %s", ledger.UserID, ledger.Month)
	rows := [][]any{{
		key,
		"salary", ledger.SalaryCredited.Units(),
		"total", ledger.MonthlyTotal.Units(),
		"balance", ledger.Balance.Units(),
	}}
	for _, day := range ledger.Days {
		for _, item := range day.Items {
			rows = append(rows, []any{key, day.Date.String(), item.Purpose, item.Amount.Units()})
		}
	}

	startRow, err := c.findOrAllocateBlock(ctx, c.ledgerSheet, key, len(rows))
	if err != nil {
		return err
	}

	rng := fmt.Sprintf("%s!A%d:G%d", c.ledgerSheet, startRow, startRow+len(rows)-1)
	vr := &gsheet.ValueRange{Values: rows}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update ledger snapshot %s: %w", rng, err)
	}

	slog.InfoContext(ctx, "Ledger snapshot written",
		"user_id", ledger.UserID,
		"month", ledger.Month.String(),
		"rows", len(rows),
		"range", rng)

	return nil
}

// WriteEmiProgress upserts one progress row per EMI, keyed by "emi <id>".
func (c *Client) WriteEmiProgress(ctx context.Context, emi *core.EMI) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	key := fmt.Sprintf("emi %d", emi.ID)
	paid := 0
	for _, entry := range emi.Schedule {
		if entry.Paid {
			paid++
		}
	}
	row := []any{
		key, emi.UserID, emi.Title, emi.StartMonth.String(),
		emi.Duration, paid, emi.TotalAmount.Units(), emi.RemainingAmount.Units(),
	}

	startRow, err := c.findOrAllocateBlock(ctx, c.emiSheet, key, 1)
	if err != nil {
		return err
	}

	rng := fmt.Sprintf("%s!A%d:H%d", c.emiSheet, startRow, startRow)
	vr := &gsheet.ValueRange{Values: [][]any{row}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update emi progress %s: %w", rng, err)
	}

	slog.InfoContext(ctx, "EMI progress written",
		"emi_id", emi.ID,
		"range", rng)

	return nil
}

// findOrAllocateBlock locates the first row of the existing block for key
// in column A, or the first row past the current data when the key is new.
// When an existing block is shorter than needed the rows below are plain
// appends; when longer, stale rows keep the key and are overwritten on the
// next snapshot of the same size or cleared manually.
func (c *Client) findOrAllocateBlock(ctx context.Context, sheetName, key string, size int) (int, error) {
	rng := fmt.Sprintf("%s!A:A", sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("get sheet dimensions for %s: %w", sheetName, err)
	}

	for i, row := range resp.Values {
		if len(row) > 0 && fmt.Sprint(row[0]) == key {
			return i + 1, nil // sheet rows are 1-based
		}
	}
	return len(resp.Values) + 1, nil
}
