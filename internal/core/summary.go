package core

// MonthSummary is a compact read-only view of one ledger month.
type MonthSummary struct {
	Month        Month `json:"month"`
	MonthlyTotal Money `json:"monthlyTotal"`
	Balance      Money `json:"balance"`
	DayCount     int   `json:"dayCount"`
}

// EmiSummary is a compact read-only view of one loan's progress.
type EmiSummary struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	TotalAmount     Money  `json:"totalAmount"`
	RemainingAmount Money  `json:"remainingAmount"`
	PaidEntries     int    `json:"paidEntries"`
	Duration        int    `json:"duration"`
}

// Dashboard is the read-only rollup of a user's ledgers and loans. It is
// assembled from the two engines' outputs; no data flows between them.
type Dashboard struct {
	UserID        string         `json:"userId"`
	Months        []MonthSummary `json:"months"`
	Emis          []EmiSummary   `json:"emis"`
	TotalExpenses Money          `json:"totalExpenses"`
	TotalEmiDebt  Money          `json:"totalEmiDebt"`
}

// Summarize builds the compact view of a ledger.
func (l *MonthLedger) Summarize() MonthSummary {
	return MonthSummary{
		Month:        l.Month,
		MonthlyTotal: l.MonthlyTotal,
		Balance:      l.Balance,
		DayCount:     len(l.Days),
	}
}

// Summarize builds the compact view of a loan.
func (e *EMI) Summarize() EmiSummary {
	paid := 0
	for _, entry := range e.Schedule {
		if entry.Paid {
			paid++
		}
	}
	return EmiSummary{
		ID:              e.ID,
		Title:           e.Title,
		TotalAmount:     e.TotalAmount,
		RemainingAmount: e.RemainingAmount,
		PaidEntries:     paid,
		Duration:        e.Duration,
	}
}
