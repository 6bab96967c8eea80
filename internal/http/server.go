// Package http exposes the ledger and EMI services as a JSON REST API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/emi"
	"fintrack/internal/ledger"
	applog "fintrack/internal/log"
)

type Server struct {
	http.Server

	ledgers *ledger.Service
	emis    *emi.Service
	logger  *applog.Logger

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, ledgers *ledger.Service, emis *emi.Service, logger *applog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:         addr,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		ledgers: ledgers,
		emis:    emis,
		logger:  logger.WithComponent(applog.ComponentHTTP),
	}

	mux.HandleFunc("GET /healthz", handleHealth)

	mux.HandleFunc("POST /api/months", s.handleCreateMonth)
	mux.HandleFunc("GET /api/months", s.handleListMonths)
	mux.HandleFunc("GET /api/months/{month}", s.handleGetMonth)
	mux.HandleFunc("PUT /api/months/{month}/salary", s.handleSetSalary)
	mux.HandleFunc("POST /api/months/{month}/days", s.handleAddDay)
	mux.HandleFunc("PUT /api/months/{month}/days/{date}", s.handleUpdateDay)
	mux.HandleFunc("DELETE /api/months/{month}/days/{date}", s.handleDeleteDay)
	mux.HandleFunc("DELETE /api/months/{month}/days/{date}/items/{id}", s.handleDeleteItem)

	mux.HandleFunc("POST /api/emis", s.handleCreateEmi)
	mux.HandleFunc("GET /api/emis", s.handleListEmis)
	mux.HandleFunc("GET /api/emis/{id}", s.handleGetEmi)
	mux.HandleFunc("PUT /api/emis/{id}/entries/{index}", s.handleSetEntryStatus)
	mux.HandleFunc("DELETE /api/emis/{id}", s.handleDeleteEmi)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)

	s.Handler = applog.RequestMiddleware(logger)(mux)
	return s
}

// Shutdown gracefully stops the server. Safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
