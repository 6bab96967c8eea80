package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"fintrack/internal/core"
)

// userHeader carries the caller identity. Authentication happens upstream;
// the API trusts this header as-is.
const userHeader = "X-User-ID"

// userID extracts the caller identity from the request. An empty header is
// a client error because every document is scoped to a user.
func userID(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.Header.Get(userHeader))
	if id == "" {
		return "", fmt.Errorf("%w: missing %s header", core.ErrInvalidInput, userHeader)
	}
	return id, nil
}

// monthPath parses the {month} path segment as a calendar month.
func monthPath(r *http.Request) (core.Month, error) {
	m, err := core.ParseMonth(r.PathValue("month"))
	if err != nil {
		return core.Month{}, fmt.Errorf("%w: %v", core.ErrInvalidInput, err)
	}
	return m, nil
}

// datePath parses the {date} path segment as a calendar date.
func datePath(r *http.Request) (core.Date, error) {
	d, err := core.ParseDate(r.PathValue("date"))
	if err != nil {
		return core.Date{}, fmt.Errorf("%w: %v", core.ErrInvalidInput, err)
	}
	return d, nil
}

// int64Path parses a numeric path segment such as {id}.
func int64Path(r *http.Request, name string) (int64, error) {
	v, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be numeric", core.ErrInvalidInput, name)
	}
	return v, nil
}

// intPath parses a small numeric path segment such as {index}.
func intPath(r *http.Request, name string) (int, error) {
	v, err := strconv.Atoi(r.PathValue(name))
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be numeric", core.ErrInvalidInput, name)
	}
	return v, nil
}

// decodeBody unmarshals a JSON request body into dst, rejecting unknown
// fields so typos surface as 422 instead of silently dropped data.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", core.ErrInvalidInput, err)
	}
	return nil
}

// parseAmount converts a decimal string like "123.45" into Money.
func parseAmount(field, s string) (core.Money, error) {
	cents, err := core.ParseDecimalToCents(s)
	if err != nil {
		return core.Money{}, fmt.Errorf("%w: %s: %v", core.ErrInvalidInput, field, err)
	}
	return core.Money{Cents: cents}, nil
}

// lineItemInput is the wire form of one expense entry. Amounts travel as
// decimal strings so clients never deal in cents.
type lineItemInput struct {
	Purpose string `json:"purpose"`
	Amount  string `json:"amount"`
}

// toLineItems validates and converts wire items into domain line items.
// IDs are left zero; the owning ledger assigns them on persist.
func toLineItems(inputs []lineItemInput) ([]core.LineItem, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", core.ErrInvalidInput)
	}
	items := make([]core.LineItem, 0, len(inputs))
	for i, in := range inputs {
		amount, err := parseAmount(fmt.Sprintf("items[%d].amount", i), in.Amount)
		if err != nil {
			return nil, err
		}
		items = append(items, core.LineItem{
			Purpose: strings.TrimSpace(in.Purpose),
			Amount:  amount,
		})
	}
	return items, nil
}
