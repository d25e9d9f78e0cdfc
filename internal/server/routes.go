package server

import (
	"net/http"
	"strings"

	"github.com/bobmcallan/fundboard/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Users
	mux.HandleFunc("/api/users/me", s.handleUserMe)
	mux.HandleFunc("/api/users/signup", s.handleUserSignup)
	mux.HandleFunc("/api/users/", s.routeUsers)
	mux.HandleFunc("/api/users", s.handleUsers)

	// Accounts
	mux.HandleFunc("/api/accounts/me", s.handleAccountsMe)
	mux.HandleFunc("/api/accounts/summary", s.handleAccountsSummary)
	mux.HandleFunc("/api/accounts/", s.routeAccounts)

	// Funds
	mux.HandleFunc("/api/funds/performance", s.handleFundsPerformance)
	mux.HandleFunc("/api/funds/navs/latest", s.handleLatestNavs)
	mux.HandleFunc("/api/funds/", s.routeFunds)
	mux.HandleFunc("/api/funds", s.handleFunds)

	// NAVs
	mux.HandleFunc("/api/navs/", s.routeNavs)
	mux.HandleFunc("/api/navs", s.handleNavs)

	// Movements
	mux.HandleFunc("/api/movements/report/cash-share", s.handleCashShareReport)
	mux.HandleFunc("/api/movements/cash", s.handleCashMovements)
	mux.HandleFunc("/api/movements/fund-share", s.handleShareMovements)
	mux.HandleFunc("/api/movements/", s.routeMovements)
}

// routeUsers dispatches /api/users/{id} and /api/users/{id}/accounts.
func (s *Server) routeUsers(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r.URL.Path, "/api/users/")
	switch {
	case len(parts) == 1:
		s.handleUser(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "accounts":
		s.handleUserAccounts(w, r, parts[0])
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

// routeAccounts dispatches /api/accounts/{id}/commission-rate.
func (s *Server) routeAccounts(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r.URL.Path, "/api/accounts/")
	if len(parts) != 2 || parts[1] != "commission-rate" {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}
	id, ok := parseID(w, parts[0], "account")
	if !ok {
		return
	}
	s.handleCommissionRate(w, r, id)
}

// routeFunds dispatches /api/funds/{id}/performance and /api/funds/{id}/chart.png.
func (s *Server) routeFunds(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r.URL.Path, "/api/funds/")
	if len(parts) == 0 {
		s.handleFunds(w, r)
		return
	}
	if len(parts) != 2 {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}
	id, ok := parseID(w, parts[0], "fund")
	if !ok {
		return
	}
	switch parts[1] {
	case "performance":
		s.handleFundPerformance(w, r, id)
	case "chart.png":
		s.handleFundChart(w, r, id)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

func (s *Server) routeNavs(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r.URL.Path, "/api/navs/")
	if len(parts) == 0 {
		s.handleNavs(w, r)
		return
	}
	if len(parts) != 1 {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}
	id, ok := parseID(w, parts[0], "nav")
	if !ok {
		return
	}
	s.handleNav(w, r, id)
}

// routeMovements dispatches the per-id movement routes.
func (s *Server) routeMovements(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r.URL.Path, "/api/movements/")
	if len(parts) != 2 {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}
	switch parts[0] {
	case "user":
		s.handleUserMovements(w, r, parts[1])
		return
	case "account", "cash", "fund-share":
	default:
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}

	id, ok := parseID(w, parts[1], strings.ReplaceAll(parts[0], "-", " "))
	if !ok {
		return
	}
	switch parts[0] {
	case "account":
		s.handleAccountMovements(w, r, id)
	case "cash":
		s.handleCashMovement(w, r, id)
	case "fund-share":
		s.handleShareMovement(w, r, id)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, common.CurrentBuild())
}
