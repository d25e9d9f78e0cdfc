package surrealdb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bobmcallan/fundboard/internal/common"
	"github.com/bobmcallan/fundboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser(id, subject, name string) *models.User {
	now := time.Now().UTC().Truncate(time.Second)
	return &models.User{
		UserID:      id,
		AuthSubject: subject,
		Email:       subject + "@example.com",
		FullName:    name,
		Status:      models.UserStatusActive,
		CreatedAt:   now,
		ModifiedAt:  now,
	}
}

func TestGetUser(t *testing.T) {
	db := testDB(t)
	store := NewInternalStore(db, testLogger())
	ctx := context.Background()

	require.NoError(t, store.SaveUser(ctx, newUser("u1", "sub-1", "Ana Lima")))

	got, err := store.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "sub-1", got.AuthSubject)
	assert.Equal(t, "Ana Lima", got.FullName)
	assert.Equal(t, models.UserStatusActive, got.Status)
}

func TestGetUserNotFound(t *testing.T) {
	db := testDB(t)
	store := NewInternalStore(db, testLogger())

	_, err := store.GetUser(context.Background(), "nonexistent")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestGetUserByAuthSubject(t *testing.T) {
	db := testDB(t)
	store := NewInternalStore(db, testLogger())
	ctx := context.Background()

	require.NoError(t, store.SaveUser(ctx, newUser("u1", "sub-1", "Ana")))
	require.NoError(t, store.SaveUser(ctx, newUser("u2", "sub-2", "Bruno")))

	got, err := store.GetUserByAuthSubject(ctx, "sub-2")
	require.NoError(t, err)
	assert.Equal(t, "u2", got.UserID)

	_, err = store.GetUserByAuthSubject(ctx, "sub-404")
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestSaveUser_Update(t *testing.T) {
	db := testDB(t)
	store := NewInternalStore(db, testLogger())
	ctx := context.Background()

	u := newUser("u1", "sub-1", "Ana")
	require.NoError(t, store.SaveUser(ctx, u))

	u.Status = models.UserStatusSuspended
	u.IsAdmin = true
	require.NoError(t, store.SaveUser(ctx, u))

	got, err := store.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusSuspended, got.Status)
	assert.True(t, got.IsAdmin)
}

func TestSaveUser_DuplicateSubject(t *testing.T) {
	db := testDB(t)
	store := NewInternalStore(db, testLogger())
	ctx := context.Background()

	require.NoError(t, store.SaveUser(ctx, newUser("u1", "sub-1", "Ana")))
	err := store.SaveUser(ctx, newUser("u2", "sub-1", "Impostor"))
	assert.True(t, errors.Is(err, common.ErrConflict), "got %v", err)
}

func TestListUsers_SortedByName(t *testing.T) {
	db := testDB(t)
	store := NewInternalStore(db, testLogger())
	ctx := context.Background()

	empty, err := store.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, store.SaveUser(ctx, newUser("u1", "s1", "Zoe")))
	require.NoError(t, store.SaveUser(ctx, newUser("u2", "s2", "Ana")))

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Ana", users[0].FullName)
	assert.Equal(t, "Zoe", users[1].FullName)
}

func TestDeleteUser(t *testing.T) {
	db := testDB(t)
	store := NewInternalStore(db, testLogger())
	ctx := context.Background()

	require.NoError(t, store.SaveUser(ctx, newUser("u1", "s1", "Ana")))
	require.NoError(t, store.DeleteUser(ctx, "u1"))

	_, err := store.GetUser(ctx, "u1")
	assert.True(t, errors.Is(err, common.ErrNotFound))
	assert.True(t, errors.Is(store.DeleteUser(ctx, "u1"), common.ErrNotFound))
}

func TestSystemKV(t *testing.T) {
	db := testDB(t)
	store := NewInternalStore(db, testLogger())
	ctx := context.Background()

	_, err := store.GetSystemKV(ctx, "last_import")
	assert.Error(t, err)

	require.NoError(t, store.SetSystemKV(ctx, "last_import", "2024-06-01T00:00:00Z"))
	val, err := store.GetSystemKV(ctx, "last_import")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01T00:00:00Z", val)
}

func TestOpenInternalStore_OwnsSession(t *testing.T) {
	cfg := testConfig(t)

	store, err := OpenInternalStore(context.Background(), testLogger(), cfg)
	require.NoError(t, err)
	require.NoError(t, store.Close())
}
