package server

import (
	"net/http"

	"github.com/bobmcallan/fundboard/internal/models"
)

// handleUsers handles GET /api/users and POST /api/users (admin).
func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}

	if r.Method == http.MethodGet {
		users, err := s.app.UserService.ListUsers(r.Context())
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, users)
		return
	}

	var in models.UserCreate
	if !DecodeJSON(w, r, &in) {
		return
	}
	user, err := s.app.UserService.CreateUser(r.Context(), &in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, user)
}

// handleUserMe handles GET /api/users/me.
func (s *Server) handleUserMe(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, user)
}

type signupRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// handleUserSignup handles POST /api/users/signup. The caller must hold a
// verified token; email and name default to the token's claims.
func (s *Server) handleUserSignup(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	id := identityFromContext(r.Context())
	if id == nil {
		w.Header().Set("WWW-Authenticate", "Bearer")
		WriteError(w, http.StatusUnauthorized, "Bearer token required")
		return
	}

	var req signupRequest
	if r.ContentLength != 0 && !DecodeJSON(w, r, &req) {
		return
	}
	email, name := id.Email, id.Name
	if req.Email != "" {
		email = req.Email
	}
	if req.FullName != "" {
		name = req.FullName
	}

	user, err := s.app.UserService.Signup(r.Context(), id.Subject, email, name)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, user)
}

// handleUser handles GET, PUT and DELETE /api/users/{id}. Users may read
// and edit their own profile; only admins change roles, status or delete.
func (s *Server) handleUser(w http.ResponseWriter, r *http.Request, userID string) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPut, http.MethodDelete) {
		return
	}
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		if _, ok := s.requireSelfOrAdmin(w, r, userID); !ok {
			return
		}
		user, err := s.app.UserService.GetUser(ctx, userID)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, user)

	case http.MethodPut:
		caller, ok := s.requireSelfOrAdmin(w, r, userID)
		if !ok {
			return
		}
		var upd models.UserUpdate
		if !DecodeJSON(w, r, &upd) {
			return
		}
		if !caller.IsAdmin && (upd.IsAdmin != nil || upd.Status != nil) {
			WriteErrorWithCode(w, http.StatusForbidden, "Admin access required to change role or status", "forbidden")
			return
		}
		user, err := s.app.UserService.UpdateUser(ctx, userID, &upd)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, user)

	case http.MethodDelete:
		if _, ok := s.requireAdmin(w, r); !ok {
			return
		}
		if err := s.app.UserService.DeleteUser(ctx, userID); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleUserAccounts handles GET and POST /api/users/{id}/accounts.
func (s *Server) handleUserAccounts(w http.ResponseWriter, r *http.Request, userID string) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	ctx := r.Context()

	if r.Method == http.MethodGet {
		if _, ok := s.requireSelfOrAdmin(w, r, userID); !ok {
			return
		}
		accounts, err := s.app.UserService.ListAccounts(ctx, userID)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, accounts)
		return
	}

	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	var in models.AccountCreate
	if !DecodeJSON(w, r, &in) {
		return
	}
	in.UserID = userID
	account, err := s.app.UserService.CreateAccount(ctx, &in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, account)
}
