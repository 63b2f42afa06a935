package handler

import (
	"net/http"

	"github.com/pkordes/trip-planner/internal/ledger"
)

// ListExpenses handles GET /trips/{tripId}/expenses.
func (s *Server) ListExpenses(w http.ResponseWriter, r *http.Request) {
	owner, tripID, ok := tripScope(w, r)
	if !ok {
		return
	}
	expenses, err := s.Expenses.List(r.Context(), owner, tripID)
	if err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, expensesToResponse(expenses))
}

// AddExpense handles POST /trips/{tripId}/expenses.
func (s *Server) AddExpense(w http.ResponseWriter, r *http.Request) {
	owner, tripID, ok := tripScope(w, r)
	if !ok {
		return
	}
	var body ExpenseRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	created, err := s.Expenses.Add(r.Context(), owner, tripID, requestToExpenseInput(body))
	if err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusCreated, expenseToResponse(created))
}

// UpdateExpense handles PUT /trips/{tripId}/expenses/{expenseId}.
func (s *Server) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	owner, tripID, ok := tripScope(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "expenseId")
	if !ok {
		return
	}
	var body ExpenseRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	updated, err := s.Expenses.Update(r.Context(), owner, tripID, id, requestToExpenseInput(body))
	if err != nil {
		s.writeServiceError(w, r, err, "expense not found")
		return
	}
	writeJSON(w, http.StatusOK, expenseToResponse(updated))
}

// DeleteExpense handles DELETE /trips/{tripId}/expenses/{expenseId}.
func (s *Server) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	owner, tripID, ok := tripScope(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "expenseId")
	if !ok {
		return
	}
	if err := s.Expenses.Delete(r.Context(), owner, tripID, id); err != nil {
		s.writeServiceError(w, r, err, "expense not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSettlement handles GET /trips/{tripId}/settlement.
func (s *Server) GetSettlement(w http.ResponseWriter, r *http.Request) {
	owner, tripID, ok := tripScope(w, r)
	if !ok {
		return
	}
	st, err := s.Expenses.Settlement(r.Context(), owner, tripID)
	if err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}
	balances := []ledger.Balance(st.Balances)
	if balances == nil {
		balances = []ledger.Balance{}
	}
	transfers := st.Transfers
	if transfers == nil {
		transfers = []ledger.Transfer{}
	}
	writeJSON(w, http.StatusOK, Settlement{Total: st.Total, Balances: balances, Transfers: transfers})
}
