package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bobmcallan/fundboard/internal/common"
	"github.com/bobmcallan/fundboard/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type ctxKey int

const (
	userKey ctxKey = iota
	identityKey
)

// tokenIdentity is what a verified bearer token says about its holder. It
// is kept even when no user record matches, so signup can register it.
type tokenIdentity struct {
	Subject string
	Email   string
	Name    string
}

func withUser(ctx context.Context, user *models.User) context.Context {
	ctx = context.WithValue(ctx, userKey, user)
	return common.WithUserContext(ctx, &common.UserContext{
		UserID:      user.UserID,
		AuthSubject: user.AuthSubject,
		Email:       user.Email,
		IsAdmin:     user.IsAdmin,
	})
}

func userFromContext(ctx context.Context) *models.User {
	u, _ := ctx.Value(userKey).(*models.User)
	return u
}

func contextWithIdentity(ctx context.Context, id *tokenIdentity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func identityFromContext(ctx context.Context) *tokenIdentity {
	id, _ := ctx.Value(identityKey).(*tokenIdentity)
	return id
}

// validateJWT parses and validates a HS256 JWT token string.
func validateJWT(tokenString string, secret []byte, issuer string) (*jwt.Token, jwt.MapClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, opts...)
	if err != nil {
		return nil, nil, err
	}
	return token, claims, nil
}

// SignToken mints an access token for an auth subject.
func SignToken(cfg common.AuthConfig, subject, email, name string) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("%w: subject is required", common.ErrValidation)
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"jti":   uuid.New().String(),
		"sub":   subject,
		"email": email,
		"name":  name,
		"iat":   now.Unix(),
		"exp":   now.Add(cfg.GetTokenExpiry()).Unix(),
	}
	if cfg.Issuer != "" {
		claims["iss"] = cfg.Issuer
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// requireUser returns the caller, writing 401 when the request carries no
// known user and 403 when the user is not active.
func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user := userFromContext(r.Context())
	if user == nil {
		w.Header().Set("WWW-Authenticate", "Bearer")
		WriteError(w, http.StatusUnauthorized, "Authentication required")
		return nil, false
	}
	if !user.IsActive() {
		WriteErrorWithCode(w, http.StatusForbidden, "User is not active", "inactive")
		return nil, false
	}
	return user, true
}

func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return nil, false
	}
	if !user.IsAdmin {
		WriteErrorWithCode(w, http.StatusForbidden, "Admin access required", "forbidden")
		return nil, false
	}
	return user, true
}

// requireSelfOrAdmin admits the user identified by userID and admins.
func (s *Server) requireSelfOrAdmin(w http.ResponseWriter, r *http.Request, userID string) (*models.User, bool) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return nil, false
	}
	if !user.IsAdmin && user.UserID != userID {
		WriteErrorWithCode(w, http.StatusForbidden, "Access denied", "forbidden")
		return nil, false
	}
	return user, true
}
