package http

import (
	"fmt"
	"net/http"

	"fintrack/internal/core"
)

type createEmiRequest struct {
	Title          string `json:"title"`
	StartMonth     string `json:"startMonth"`
	AmountPerMonth string `json:"amountPerMonth"`
	Duration       int    `json:"duration"`
}

type entryStatusRequest struct {
	Paid bool `json:"paid"`
}

func (s *Server) handleCreateEmi(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req createEmiRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	startMonth, err := core.ParseMonth(req.StartMonth)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", core.ErrInvalidInput, err))
		return
	}
	amount, err := parseAmount("amountPerMonth", req.AmountPerMonth)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	doc, err := s.emis.CreateEmi(r.Context(), user, req.Title, startMonth, amount, req.Duration)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleListEmis(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	docs, err := s.emis.ListEmis(r.Context(), user)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, docs)
}

func (s *Server) handleGetEmi(w http.ResponseWriter, r *http.Request) {
	id, err := int64Path(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	doc, err := s.emis.GetEmi(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleSetEntryStatus(w http.ResponseWriter, r *http.Request) {
	id, err := int64Path(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	index, err := intPath(r, "index")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req entryStatusRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	doc, err := s.emis.SetEntryStatus(r.Context(), id, index, req.Paid)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteEmi(w http.ResponseWriter, r *http.Request) {
	id, err := int64Path(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	deleted, err := s.emis.DeleteEmi(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}
