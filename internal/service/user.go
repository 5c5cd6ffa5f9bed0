package service

import (
	"context"

	"github.com/Payphone-Digital/storefront/internal/dto"
	"github.com/Payphone-Digital/storefront/internal/model"
	ctxutil "github.com/Payphone-Digital/storefront/pkg/context"
	"github.com/Payphone-Digital/storefront/pkg/logger"
	"github.com/Payphone-Digital/storefront/pkg/upstream"
)

// UserService reads and updates the signed-in shopper's upstream profile and
// keeps the session's profile snapshot in step with it.
type UserService struct {
	api      API
	sessions SessionStore
}

func NewUserService(api API, sessions SessionStore) *UserService {
	return &UserService{api: api, sessions: sessions}
}

func (s *UserService) GetMe(ctx context.Context) (*model.Profile, error) {
	ctx = ctxutil.NewContextWithRequest(ctx, "service", "GetMe")

	var profile model.Profile
	if _, err := s.api.Get(ctx, pathMe, nil, &profile); err != nil {
		dropSessionOnUnauthorized(ctx, s.sessions, err)
		return nil, mapUpstreamError(err, nil)
	}

	s.storeProfile(ctx, profile)
	return &profile, nil
}

func (s *UserService) UpdateMe(ctx context.Context, req dto.UpdateProfileRequest) (*model.Profile, string, error) {
	ctx = ctxutil.NewContextWithRequest(ctx, "service", "UpdateMe")
	return s.putUser(ctx, req)
}

// ChangePassword sends the current and new password upstream. The
// confirmation has already been checked by request validation.
func (s *UserService) ChangePassword(ctx context.Context, req dto.ChangePasswordRequest) (*model.Profile, string, error) {
	ctx = ctxutil.NewContextWithRequest(ctx, "service", "ChangePassword")
	// A replay after a lost success would send the old password again.
	ctx = upstream.WithoutRetry(ctx)
	return s.putUser(ctx, dto.UpstreamPasswordChange{
		Password:    req.Password,
		NewPassword: req.NewPassword,
	})
}

func (s *UserService) putUser(ctx context.Context, body any) (*model.Profile, string, error) {
	var profile model.Profile
	message, err := s.api.Put(ctx, pathUser, body, &profile)
	if err != nil {
		logger.InfoWithContext(ctx, "Upstream rejected profile update").
			Err(err).
			Log()
		dropSessionOnUnauthorized(ctx, s.sessions, err)
		return nil, "", mapUpstreamError(err, nil)
	}

	s.storeProfile(ctx, profile)
	return &profile, message, nil
}

// storeProfile refreshes the session snapshot. A failure only leaves the
// snapshot stale, so it is logged and not returned.
func (s *UserService) storeProfile(ctx context.Context, profile model.Profile) {
	sessionID := ctxutil.GetSessionID(ctx)
	if sessionID == "" {
		return
	}

	if err := s.sessions.UpdateProfile(ctx, sessionID, profile); err != nil {
		logger.WarnWithContext(ctx, "Failed to refresh session profile").
			String("session_id", sessionID).
			Err(err).
			Log()
	}
}
