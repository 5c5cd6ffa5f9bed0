package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Payphone-Digital/storefront/internal/model"
	ctxutil "github.com/Payphone-Digital/storefront/pkg/context"
	"github.com/Payphone-Digital/storefront/pkg/logger"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrSessionNotFound is returned when no row matches the session id.
var ErrSessionNotFound = errors.New("session not found")

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, session *model.Session) error {
	ctx = ctxutil.NewContextWithRequest(ctx, "repository", "CreateSession")

	start := time.Now()
	err := r.db.WithContext(ctx).Create(session).Error
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to create session").
			String("user_id", session.UserID).
			Duration(time.Since(start)).
			Err(err).
			Log()
		return err
	}

	logger.DebugWithContext(ctx, "Session created").
		String("session_id", session.ID).
		Duration(time.Since(start)).
		Log()
	return nil
}

func (r *SessionRepository) GetByID(ctx context.Context, id string) (*model.Session, error) {
	ctx = ctxutil.NewContextWithRequest(ctx, "repository", "GetSessionByID")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var session model.Session
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to get session").
			String("session_id", id).
			Err(err).
			Log()
		return nil, err
	}
	return &session, nil
}

// UpdateProfile replaces the cached profile snapshot.
func (r *SessionRepository) UpdateProfile(ctx context.Context, id string, profile model.Profile) error {
	ctx = ctxutil.NewContextWithRequest(ctx, "repository", "UpdateSessionProfile")

	result := r.db.WithContext(ctx).Model(&model.Session{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"profile":    datatypes.NewJSONType(profile),
			"updated_at": time.Now().UTC(),
		})
	return rowsOrNotFound(result)
}

// Rotate swaps the refresh secret hash from oldHash to newHash, sets the new
// expiry and marks the session as seen. It returns ErrSessionNotFound when no
// session with id still holds oldHash, so a refresh secret rotates once.
func (r *SessionRepository) Rotate(ctx context.Context, id, oldHash, newHash string, refreshExpiresAt time.Time) error {
	ctx = ctxutil.NewContextWithRequest(ctx, "repository", "RotateSession")

	now := time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&model.Session{}).
		Where("id = ? AND refresh_secret_hash = ?", id, oldHash).
		Updates(map[string]any{
			"refresh_secret_hash": newHash,
			"refresh_expires_at":  refreshExpiresAt,
			"last_seen_at":        now,
			"updated_at":          now,
		})
	return rowsOrNotFound(result)
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	ctx = ctxutil.NewContextWithRequest(ctx, "repository", "DeleteSession")

	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Session{})
	return rowsOrNotFound(result)
}

// DeleteExpired removes sessions whose refresh window closed before now.
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	ctx = ctxutil.NewContextWithRequest(ctx, "repository", "DeleteExpiredSessions")

	result := r.db.WithContext(ctx).Where("refresh_expires_at <= ?", now).Delete(&model.Session{})
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to delete expired sessions").Err(result.Error).Log()
		return 0, result.Error
	}

	if result.RowsAffected > 0 {
		logger.InfoWithContext(ctx, "Expired sessions removed").
			Int("count", int(result.RowsAffected)).
			Log()
	}
	return result.RowsAffected, nil
}

func rowsOrNotFound(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}
