package server

import (
	"net/http"

	"github.com/bobmcallan/fundboard/internal/models"
)

// handleUserMovements handles GET /api/movements/user/{id}.
func (s *Server) handleUserMovements(w http.ResponseWriter, r *http.Request, userID string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	if _, ok := s.requireSelfOrAdmin(w, r, userID); !ok {
		return
	}
	feed, err := s.app.MovementService.UserMovements(r.Context(), userID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, feed)
}

// handleAccountMovements handles GET /api/movements/account/{id}. Only the
// account owner and admins may read it.
func (s *Server) handleAccountMovements(w http.ResponseWriter, r *http.Request, accountID int64) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	account, err := s.app.UserService.GetAccount(ctx, accountID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if !user.IsAdmin && account.UserID != user.UserID {
		WriteErrorWithCode(w, http.StatusForbidden, "Access denied", "forbidden")
		return
	}

	feed, err := s.app.MovementService.AccountMovements(ctx, accountID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, feed)
}

// handleCashMovements handles GET and POST /api/movements/cash (admin).
func (s *Server) handleCashMovements(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}

	if r.Method == http.MethodGet {
		movements, err := s.app.MovementService.ListCashMovements(r.Context())
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, movements)
		return
	}

	var in models.CashMovementCreate
	if !DecodeJSON(w, r, &in) {
		return
	}
	cm, err := s.app.MovementService.CreateCashMovement(r.Context(), &in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, cm)
}

// handleCashMovement handles GET, PUT and DELETE /api/movements/cash/{id} (admin).
func (s *Server) handleCashMovement(w http.ResponseWriter, r *http.Request, id int64) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPut, http.MethodDelete) {
		return
	}
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		cm, err := s.app.MovementService.GetCashMovement(ctx, id)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, cm)
	case http.MethodPut:
		var upd models.CashMovementUpdate
		if !DecodeJSON(w, r, &upd) {
			return
		}
		cm, err := s.app.MovementService.UpdateCashMovement(ctx, id, &upd)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, cm)
	case http.MethodDelete:
		if err := s.app.MovementService.DeleteCashMovement(ctx, id); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleShareMovements handles POST /api/movements/fund-share (admin).
func (s *Server) handleShareMovements(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	var in models.FundShareMovementCreate
	if !DecodeJSON(w, r, &in) {
		return
	}
	sm, err := s.app.MovementService.CreateShareMovement(r.Context(), &in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, sm)
}

// handleShareMovement handles GET, PUT and DELETE /api/movements/fund-share/{id} (admin).
func (s *Server) handleShareMovement(w http.ResponseWriter, r *http.Request, id int64) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPut, http.MethodDelete) {
		return
	}
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		sm, err := s.app.MovementService.GetShareMovement(ctx, id)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, sm)
	case http.MethodPut:
		var upd models.FundShareMovementUpdate
		if !DecodeJSON(w, r, &upd) {
			return
		}
		sm, err := s.app.MovementService.UpdateShareMovement(ctx, id, &upd)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, sm)
	case http.MethodDelete:
		if err := s.app.MovementService.DeleteShareMovement(ctx, id); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleCashShareReport handles GET /api/movements/report/cash-share (admin).
func (s *Server) handleCashShareReport(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	rows, err := s.app.MovementService.CashShareReport(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, rows)
}
