package common

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/bobmcallan/fundboard/internal/common"
	"github.com/bobmcallan/fundboard/internal/interfaces"
	"github.com/bobmcallan/fundboard/internal/models"
	"github.com/bobmcallan/fundboard/internal/storage/sqlite"
)

// MockInternalStore is an in-memory InternalStore for tests.
type MockInternalStore struct {
	mu       sync.Mutex
	users    map[string]*models.User
	kv       map[string]string
	SaveErr  error
	GetCalls int
}

// NewMockInternalStore creates an empty mock store
func NewMockInternalStore() *MockInternalStore {
	return &MockInternalStore{
		users: make(map[string]*models.User),
		kv:    make(map[string]string),
	}
}

func (m *MockInternalStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalls++
	u, ok := m.users[userID]
	if !ok {
		return nil, common.NotFoundf("user %s", userID)
	}
	cp := *u
	return &cp, nil
}

func (m *MockInternalStore) GetUserByAuthSubject(ctx context.Context, subject string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.AuthSubject == subject {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.NotFoundf("user with subject %s", subject)
}

func (m *MockInternalStore) SaveUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	for id, u := range m.users {
		if id != user.UserID && u.AuthSubject == user.AuthSubject {
			return common.Conflictf("user with subject %s already exists", user.AuthSubject)
		}
	}
	cp := *user
	m.users[user.UserID] = &cp
	return nil
}

func (m *MockInternalStore) DeleteUser(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[userID]; !ok {
		return common.NotFoundf("user %s", userID)
	}
	delete(m.users, userID)
	return nil
}

func (m *MockInternalStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.User, 0, len(m.users))
	for _, u := range m.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FullName != out[j].FullName {
			return out[i].FullName < out[j].FullName
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

func (m *MockInternalStore) GetSystemKV(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.kv[key]
	if !ok {
		return "", common.NotFoundf("system KV %s", key)
	}
	return v, nil
}

func (m *MockInternalStore) SetSystemKV(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kv[key] = value
	return nil
}

func (m *MockInternalStore) Close() error { return nil }

// AddUser seeds an active user and returns it.
func (m *MockInternalStore) AddUser(id, subject, fullName string, admin bool) *models.User {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	u := &models.User{
		UserID:      id,
		AuthSubject: subject,
		Email:       subject + "@example.com",
		FullName:    fullName,
		IsAdmin:     admin,
		Status:      models.UserStatusActive,
		CreatedAt:   now,
		ModifiedAt:  now,
	}
	m.mu.Lock()
	m.users[id] = u
	m.mu.Unlock()
	return u
}

var _ interfaces.InternalStore = (*MockInternalStore)(nil)

// NewTestLedger opens a migrated SQLite ledger in a temp directory.
func NewTestLedger(t *testing.T, commissionRate bool) *sqlite.Store {
	t.Helper()

	store, err := sqlite.NewStore(common.NewSilentLogger(), common.LedgerConfig{
		Path:                 filepath.Join(t.TempDir(), "ledger.db"),
		CommissionRateColumn: commissionRate,
		BusyTimeout:          "2s",
	})
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate ledger: %v", err)
	}
	return store
}

// TestStorage is a StorageManager over a mock internal store and a real
// temp-dir ledger.
type TestStorage struct {
	Internal *MockInternalStore
	Ledger   *sqlite.Store
}

// NewTestStorage builds a TestStorage.
func NewTestStorage(t *testing.T, commissionRate bool) *TestStorage {
	t.Helper()
	return &TestStorage{
		Internal: NewMockInternalStore(),
		Ledger:   NewTestLedger(t, commissionRate),
	}
}

func (s *TestStorage) InternalStore() interfaces.InternalStore { return s.Internal }
func (s *TestStorage) LedgerStore() interfaces.LedgerStore     { return s.Ledger }
func (s *TestStorage) Close() error                            { return nil }

var _ interfaces.StorageManager = (*TestStorage)(nil)
