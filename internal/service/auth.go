package service

import (
	"context"
	"errors"
	"time"

	"github.com/Payphone-Digital/storefront/internal/dto"
	apperrors "github.com/Payphone-Digital/storefront/internal/errors"
	"github.com/Payphone-Digital/storefront/internal/model"
	"github.com/Payphone-Digital/storefront/internal/repository"
	ctxutil "github.com/Payphone-Digital/storefront/pkg/context"
	"github.com/Payphone-Digital/storefront/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// AuthService signs shoppers in against the upstream API and keeps the
// upstream access token in a server-side session.
type AuthService struct {
	api      API
	sessions SessionStore
	tokens   *TokenService
	now      func() time.Time
}

func NewAuthService(api API, sessions SessionStore, tokens *TokenService) *AuthService {
	return &AuthService{
		api:      api,
		sessions: sessions,
		tokens:   tokens,
		now:      time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	ctx = ctxutil.NewContextWithRequest(ctx, "service", "Register")
	return s.signIn(ctx, "register", pathRegister, dto.Credentials{Email: req.Email, Password: req.Password})
}

func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	ctx = ctxutil.NewContextWithRequest(ctx, "service", "Login")
	return s.signIn(ctx, "login", pathLogin, dto.Credentials{Email: req.Email, Password: req.Password})
}

func (s *AuthService) signIn(ctx context.Context, action, path string, creds dto.Credentials) (*dto.AuthResponse, error) {
	var auth dto.UpstreamAuth
	if _, err := s.api.Post(ctx, path, creds, &auth); err != nil {
		logger.InfoWithContext(ctx, "Upstream rejected sign-in").
			String("action", action).
			Err(err).
			Log()
		return nil, mapUpstreamError(err, nil)
	}

	if auth.AccessToken == "" {
		logger.ErrorWithContext(ctx, "Upstream sign-in response carries no access token").
			String("action", action).
			Log()
		return nil, apperrors.ErrUpstream
	}

	session, resp, err := s.createSession(ctx, auth)
	if err != nil {
		return nil, err
	}

	logger.LogAuth(session.ID, action, true,
		zap.String("user_id", auth.User.ID),
		zap.String("client_ip", ctxutil.GetClientIP(ctx)),
	)
	return resp, nil
}

func (s *AuthService) createSession(ctx context.Context, auth dto.UpstreamAuth) (*model.Session, *dto.AuthResponse, error) {
	secret, err := s.tokens.GenerateRefreshSecret()
	if err != nil {
		return nil, nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	hash, err := s.tokens.HashRefreshSecret(secret)
	if err != nil {
		return nil, nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	now := s.now()
	session := &model.Session{
		ID:                   uuid.NewString(),
		UserID:               auth.User.ID,
		AccessToken:          auth.AccessToken,
		AccessTokenExpiresAt: now.Add(time.Duration(auth.Expires) * time.Second),
		RefreshSecretHash:    hash,
		RefreshExpiresAt:     now.Add(s.tokens.RefreshTTL()),
		Profile:              datatypes.NewJSONType(auth.User),
		ClientIP:             ctxutil.GetClientIP(ctx),
		UserAgent:            ctxutil.GetUserAgent(ctx),
		LastSeenAt:           now,
	}
	if auth.Expires <= 0 {
		session.AccessTokenExpiresAt = session.RefreshExpiresAt
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	token, err := s.tokens.GenerateToken(session.ID, session.UserID)
	if err != nil {
		return nil, nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return session, &dto.AuthResponse{
		Token:        token,
		RefreshToken: JoinRefreshToken(session.ID, secret),
		ExpiresIn:    int(s.tokens.AccessTTL().Seconds()),
		User:         auth.User,
	}, nil
}

// Refresh exchanges a refresh token for a new session token. The refresh
// secret is rotated on every use.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	ctx = ctxutil.NewContextWithRequest(ctx, "service", "Refresh")

	sessionID, secret, err := SplitRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInvalidRefreshToken, err)
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if errors.Is(err, repository.ErrSessionNotFound) {
		logger.LogAuth(sessionID, "refresh", false, zap.String("reason", "session not found"))
		return nil, apperrors.ErrInvalidRefreshToken
	}
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if !s.tokens.VerifyRefreshSecret(secret, session.RefreshSecretHash) {
		logger.LogAuth(sessionID, "refresh", false, zap.String("reason", "secret mismatch"))
		return nil, apperrors.ErrInvalidRefreshToken
	}

	now := s.now()
	if session.Expired(now) || !now.Before(session.AccessTokenExpiresAt) {
		s.deleteSession(ctx, sessionID)
		logger.LogAuth(sessionID, "refresh", false, zap.String("reason", "expired"))
		return nil, apperrors.ErrInvalidRefreshToken
	}

	newSecret, err := s.tokens.GenerateRefreshSecret()
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	hash, err := s.tokens.HashRefreshSecret(newSecret)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if err := s.sessions.Rotate(ctx, sessionID, session.RefreshSecretHash, hash, now.Add(s.tokens.RefreshTTL())); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			logger.LogAuth(sessionID, "refresh", false, zap.String("reason", "secret already rotated"))
			return nil, apperrors.ErrInvalidRefreshToken
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	token, err := s.tokens.GenerateToken(sessionID, session.UserID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.LogAuth(sessionID, "refresh", true)
	return &dto.AuthResponse{
		Token:        token,
		RefreshToken: JoinRefreshToken(sessionID, newSecret),
		ExpiresIn:    int(s.tokens.AccessTTL().Seconds()),
		User:         session.Profile.Data(),
	}, nil
}

// Logout signs out upstream and deletes the session. The local session is
// removed even when the upstream call fails.
func (s *AuthService) Logout(ctx context.Context) error {
	ctx = ctxutil.NewContextWithRequest(ctx, "service", "Logout")

	sessionID := ctxutil.GetSessionID(ctx)
	if sessionID == "" {
		return apperrors.ErrUnauthorized
	}

	if _, err := s.api.Post(ctx, pathLogout, nil, nil); err != nil {
		logger.WarnWithContext(ctx, "Upstream logout failed, clearing local session anyway").
			Err(err).
			Log()
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil && !errors.Is(err, repository.ErrSessionNotFound) {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.LogAuth(sessionID, "logout", true)
	return nil
}

// Authenticate resolves a session token to its live session.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.Session, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInvalidToken, err)
	}

	session, err := s.sessions.GetByID(ctx, claims.SessionID)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil, apperrors.ErrSessionNotFound
	}
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if !s.now().Before(session.AccessTokenExpiresAt) {
		s.deleteSession(ctx, session.ID)
		return nil, apperrors.ErrSessionNotFound
	}
	return session, nil
}

func (s *AuthService) deleteSession(ctx context.Context, sessionID string) {
	if err := s.sessions.Delete(ctx, sessionID); err != nil && !errors.Is(err, repository.ErrSessionNotFound) {
		logger.WarnWithContext(ctx, "Failed to delete session").
			String("session_id", sessionID).
			Err(err).
			Log()
	}
}
