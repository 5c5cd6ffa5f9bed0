package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Payphone-Digital/storefront/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupTestDB connects to the database named by TEST_DATABASE_DSN and skips
// when it is unset.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Session{}))

	t.Cleanup(func() {
		db.Exec("DELETE FROM sessions")
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newSession(expires time.Time) *model.Session {
	return &model.Session{
		ID:                   uuid.NewString(),
		UserID:               "60f3",
		AccessToken:          "Bearer abc",
		AccessTokenExpiresAt: expires,
		RefreshSecretHash:    "hash",
		RefreshExpiresAt:     expires,
		Profile:              datatypes.NewJSONType(model.Profile{ID: "60f3", Email: "a@b.co"}),
	}
}

func TestSessionRepository_Lifecycle(t *testing.T) {
	repo := NewSessionRepository(setupTestDB(t))
	ctx := context.Background()

	s := newSession(time.Now().Add(time.Hour))
	require.NoError(t, repo.Create(ctx, s))

	got, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@b.co", got.Profile.Data().Email)

	require.NoError(t, repo.UpdateProfile(ctx, s.ID, model.Profile{ID: "60f3", Email: "a@b.co", Name: "An"}))
	got, err = repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "An", got.Profile.Data().Name)

	require.NoError(t, repo.Rotate(ctx, s.ID, "hash", "hash2", time.Now().Add(2*time.Hour)))
	assert.ErrorIs(t, repo.Rotate(ctx, s.ID, "hash", "hash3", time.Now().Add(2*time.Hour)), ErrSessionNotFound,
		"a spent hash cannot rotate again")
	got, err = repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash2", got.RefreshSecretHash)

	require.NoError(t, repo.Delete(ctx, s.ID))
	_, err = repo.GetByID(ctx, s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, s.ID), ErrSessionNotFound)
}

func TestSessionRepository_DeleteExpired(t *testing.T) {
	repo := NewSessionRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newSession(time.Now().Add(-time.Minute))))
	live := newSession(time.Now().Add(time.Hour))
	require.NoError(t, repo.Create(ctx, live))

	n, err := repo.DeleteExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = repo.GetByID(ctx, live.ID)
	assert.NoError(t, err)
}
