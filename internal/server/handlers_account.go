package server

import (
	"net/http"

	"github.com/bobmcallan/fundboard/internal/models"
)

// handleAccountsMe handles GET /api/accounts/me: the caller's valued accounts.
func (s *Server) handleAccountsMe(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	summaries, err := s.app.SummaryService.GetAccountSummaries(r.Context(), models.ForUser(user.UserID))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, summaries)
}

// handleAccountsSummary handles GET /api/accounts/summary (admin), optionally
// narrowed by ?user_id=.
func (s *Server) handleAccountsSummary(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	filter := models.AllAccounts
	if userID := r.URL.Query().Get("user_id"); userID != "" {
		filter = models.ForUser(userID)
	}
	summaries, err := s.app.SummaryService.GetAccountSummaries(r.Context(), filter)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, summaries)
}

type commissionRateRequest struct {
	CommissionRate models.NullDecimal `json:"commission_rate"`
}

// handleCommissionRate handles PUT /api/accounts/{id}/commission-rate (admin).
// A null rate clears it.
func (s *Server) handleCommissionRate(w http.ResponseWriter, r *http.Request, accountID int64) {
	if !RequireMethod(w, r, http.MethodPut) {
		return
	}
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	var req commissionRateRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	account, err := s.app.UserService.SetCommissionRate(r.Context(), accountID, req.CommissionRate)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, account)
}
