package http

import (
	"fmt"
	"net/http"

	"fintrack/internal/core"
)

type createMonthRequest struct {
	Month  string `json:"month"`
	Salary string `json:"salary"`
}

type setSalaryRequest struct {
	Salary string `json:"salary"`
}

type dayRequest struct {
	Date  string          `json:"date"`
	Items []lineItemInput `json:"items"`
}

type updateDayRequest struct {
	Items []lineItemInput `json:"items"`
}

func (s *Server) handleCreateMonth(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req createMonthRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	month, err := core.ParseMonth(req.Month)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", core.ErrInvalidInput, err))
		return
	}
	salary := core.Money{}
	if req.Salary != "" {
		if salary, err = parseAmount("salary", req.Salary); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	doc, err := s.ledgers.CreateMonth(r.Context(), user, month, salary)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleListMonths(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	docs, err := s.ledgers.ListMonths(r.Context(), user)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, docs)
}

func (s *Server) handleGetMonth(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	month, err := monthPath(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	doc, err := s.ledgers.GetMonth(r.Context(), user, month)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleSetSalary(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	month, err := monthPath(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req setSalaryRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	salary, err := parseAmount("salary", req.Salary)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	doc, err := s.ledgers.SetSalary(r.Context(), user, month, salary)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleAddDay(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	month, err := monthPath(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req dayRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", core.ErrInvalidInput, err))
		return
	}
	items, err := toLineItems(req.Items)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	doc, err := s.ledgers.AddDay(r.Context(), user, month, date, items)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleUpdateDay(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	month, err := monthPath(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	date, err := datePath(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req updateDayRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	items, err := toLineItems(req.Items)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	doc, err := s.ledgers.UpdateDay(r.Context(), user, month, date, items)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteDay(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	month, err := monthPath(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	date, err := datePath(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	doc, err := s.ledgers.DeleteDay(r.Context(), user, month, date)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	month, err := monthPath(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	date, err := datePath(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	itemID, err := int64Path(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	doc, err := s.ledgers.DeleteItem(r.Context(), user, month, date, itemID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}
