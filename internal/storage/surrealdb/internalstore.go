package surrealdb

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bobmcallan/fundboard/internal/common"
	"github.com/bobmcallan/fundboard/internal/interfaces"
	"github.com/bobmcallan/fundboard/internal/models"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

const saveAttempts = 3

// InternalStore keeps user identities and system KV in SurrealDB.
type InternalStore struct {
	db     *surrealdb.DB
	logger *common.Logger
	owned  bool
}

// NewInternalStore wraps an existing session. Close leaves the session open.
func NewInternalStore(db *surrealdb.DB, logger *common.Logger) *InternalStore {
	return &InternalStore{
		db:     db,
		logger: logger,
	}
}

// OpenInternalStore connects using config and owns the session.
func OpenInternalStore(ctx context.Context, logger *common.Logger, config common.SurrealConfig) (*InternalStore, error) {
	db, err := Connect(ctx, logger, config)
	if err != nil {
		return nil, err
	}
	return &InternalStore{db: db, logger: logger, owned: true}, nil
}

func (s *InternalStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := surrealdb.Select[models.User](ctx, s.db, surrealmodels.NewRecordID("user", userID))
	if err != nil {
		return nil, fmt.Errorf("failed to select user: %w", err)
	}
	if user == nil || user.UserID == "" {
		return nil, common.NotFoundf("user %s", userID)
	}
	return user, nil
}

func (s *InternalStore) GetUserByAuthSubject(ctx context.Context, subject string) (*models.User, error) {
	sql := "SELECT * FROM user WHERE auth_subject = $subject LIMIT 1"
	vars := map[string]any{"subject": subject}

	results, err := surrealdb.Query[[]models.User](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to query user by subject: %w", err)
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, common.NotFoundf("user with subject %s", subject)
	}
	user := (*results)[0].Result[0]
	return &user, nil
}

func (s *InternalStore) SaveUser(ctx context.Context, user *models.User) error {
	sql := "UPSERT type::record('user', $id) CONTENT $user"
	vars := map[string]any{"id": user.UserID, "user": user}

	for attempt := 1; attempt <= saveAttempts; attempt++ {
		_, err := surrealdb.Query[[]models.User](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		if isUniqueViolation(err) {
			return common.Conflictf("user with subject %s already exists", user.AuthSubject)
		}
		if attempt == saveAttempts {
			return fmt.Errorf("failed to save user after retries: %w", err)
		}
		s.logger.Warn().Err(err).Int("attempt", attempt).Str("user_id", user.UserID).Msg("Retrying user save")
	}
	return nil
}

// isUniqueViolation matches SurrealDB's index violation message.
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "already contains") || strings.Contains(msg, "user_auth_subject")
}

func (s *InternalStore) DeleteUser(ctx context.Context, userID string) error {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return err
	}
	_, err := surrealdb.Delete[models.User](ctx, s.db, surrealmodels.NewRecordID("user", userID))
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// ListUsers returns every user ordered by full name, then user id.
func (s *InternalStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	list, err := surrealdb.Select[[]models.User](ctx, s.db, surrealmodels.Table("user"))
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := []*models.User{}
	if list != nil {
		for i := range *list {
			if (*list)[i].UserID != "" {
				users = append(users, &(*list)[i])
			}
		}
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].FullName != users[j].FullName {
			return users[i].FullName < users[j].FullName
		}
		return users[i].UserID < users[j].UserID
	})
	return users, nil
}

type systemKV struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (s *InternalStore) GetSystemKV(ctx context.Context, key string) (string, error) {
	kv, err := surrealdb.Select[systemKV](ctx, s.db, surrealmodels.NewRecordID("system_kv", key))
	if err != nil {
		return "", fmt.Errorf("failed to select system KV: %w", err)
	}
	if kv == nil {
		return "", common.NotFoundf("system KV %s", key)
	}
	return kv.Value, nil
}

func (s *InternalStore) SetSystemKV(ctx context.Context, key, value string) error {
	sql := "UPSERT type::record('system_kv', $id) CONTENT $kv"
	vars := map[string]any{"id": key, "kv": systemKV{Key: key, Value: value}}

	for attempt := 1; attempt <= saveAttempts; attempt++ {
		_, err := surrealdb.Query[[]systemKV](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		if attempt == saveAttempts {
			return fmt.Errorf("failed to set system KV after retries: %w", err)
		}
	}
	return nil
}

func (s *InternalStore) Close() error {
	if s.owned {
		s.db.Close(context.Background())
	}
	return nil
}

// Compile-time check
var _ interfaces.InternalStore = (*InternalStore)(nil)
