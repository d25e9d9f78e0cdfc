package server

import (
	"cmp"
	"net/http"
	"slices"
	"strconv"

	"github.com/bobmcallan/fundboard/internal/models"
)

// handleFunds handles GET /api/funds and POST /api/funds (admin).
func (s *Server) handleFunds(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}

	if r.Method == http.MethodGet {
		if _, ok := s.requireUser(w, r); !ok {
			return
		}
		funds, err := s.app.MovementService.ListFunds(r.Context())
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, funds)
		return
	}

	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	var in models.FundCreate
	if !DecodeJSON(w, r, &in) {
		return
	}
	fund, err := s.app.MovementService.CreateFund(r.Context(), &in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, fund)
}

// handleFundsPerformance handles GET /api/funds/performance?limit=.
func (s *Server) handleFundsPerformance(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	if _, ok := s.requireUser(w, r); !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}
	perf, err := s.app.PerformanceService.ListFundPerformance(r.Context(), limit)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, perf)
}

// handleFundPerformance handles GET /api/funds/{id}/performance?limit=.
func (s *Server) handleFundPerformance(w http.ResponseWriter, r *http.Request, fundID int64) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	if _, ok := s.requireUser(w, r); !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}
	perf, err := s.app.PerformanceService.GetFundPerformance(r.Context(), fundID, limit)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, perf)
}

// handleFundChart handles GET /api/funds/{id}/chart.png?limit=.
func (s *Server) handleFundChart(w http.ResponseWriter, r *http.Request, fundID int64) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	if _, ok := s.requireUser(w, r); !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}
	png, err := s.app.PerformanceService.RenderChart(r.Context(), fundID, limit)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// handleLatestNavs handles GET /api/funds/navs/latest, ordered by fund id.
func (s *Server) handleLatestNavs(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	if _, ok := s.requireUser(w, r); !ok {
		return
	}
	latest, err := s.app.PerformanceService.GetLatestNavs(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	navs := make([]*models.FundNav, 0, len(latest))
	for _, nav := range latest {
		navs = append(navs, nav)
	}
	slices.SortFunc(navs, func(a, b *models.FundNav) int {
		return cmp.Compare(a.FundID, b.FundID)
	})
	WriteJSON(w, http.StatusOK, navs)
}

// handleNavs handles GET /api/navs?fund_id= and POST /api/navs (admin).
func (s *Server) handleNavs(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}

	if r.Method == http.MethodGet {
		var fundID int64
		if raw := r.URL.Query().Get("fund_id"); raw != "" {
			id, ok := parseID(w, raw, "fund")
			if !ok {
				return
			}
			fundID = id
		}
		navs, err := s.app.MovementService.ListNavs(r.Context(), fundID)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, navs)
		return
	}

	var in models.FundNavCreate
	if !DecodeJSON(w, r, &in) {
		return
	}
	nav, err := s.app.MovementService.CreateNav(r.Context(), &in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, nav)
}

// handleNav handles GET, PUT and DELETE /api/navs/{id} (admin).
func (s *Server) handleNav(w http.ResponseWriter, r *http.Request, id int64) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPut, http.MethodDelete) {
		return
	}
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		nav, err := s.app.MovementService.GetNav(ctx, id)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, nav)
	case http.MethodPut:
		var upd models.FundNavUpdate
		if !DecodeJSON(w, r, &upd) {
			return
		}
		nav, err := s.app.MovementService.UpdateNav(ctx, id, &upd)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, nav)
	case http.MethodDelete:
		if err := s.app.MovementService.DeleteNav(ctx, id); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
