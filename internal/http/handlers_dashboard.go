package http

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
)

// handleDashboard assembles the read-only rollup. The two engines are
// queried concurrently; their outputs are only combined here, never fed
// back into each other.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var (
		months []core.MonthLedger
		emis   []core.EMI
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		months, err = s.ledgers.ListMonths(ctx, user)
		return err
	})
	g.Go(func() error {
		var err error
		emis, err = s.emis.ListEmis(ctx, user)
		return err
	})
	if err := g.Wait(); err != nil {
		s.writeError(w, r, err)
		return
	}

	dash := core.Dashboard{
		UserID: user,
		Months: make([]core.MonthSummary, 0, len(months)),
		Emis:   make([]core.EmiSummary, 0, len(emis)),
	}
	for i := range months {
		dash.Months = append(dash.Months, months[i].Summarize())
		dash.TotalExpenses = dash.TotalExpenses.Add(months[i].MonthlyTotal)
	}
	for i := range emis {
		dash.Emis = append(dash.Emis, emis[i].Summarize())
		dash.TotalEmiDebt = dash.TotalEmiDebt.Add(emis[i].RemainingAmount)
	}

	s.writeJSON(w, http.StatusOK, dash)
}
