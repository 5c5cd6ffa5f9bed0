package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Payphone-Digital/storefront/internal/dto"
	apperrors "github.com/Payphone-Digital/storefront/internal/errors"
	"github.com/Payphone-Digital/storefront/internal/model"
	ctxutil "github.com/Payphone-Digital/storefront/pkg/context"
	"github.com/Payphone-Digital/storefront/pkg/upstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func upstreamAuth() map[string]any {
	return map[string]any{
		"access_token": "Bearer upstream-token",
		"expires":      "604800",
		"user":         map[string]any{"_id": "u1", "email": "shopper@example.com", "roles": []string{"User"}},
	}
}

func newAuth(api *fakeAPI) (*AuthService, *fakeSessions) {
	sessions := newFakeSessions()
	tokens := NewTokenService("test-secret", 15*time.Minute, 7*24*time.Hour)
	return NewAuthService(api, sessions, tokens), sessions
}

func TestLogin_CreatesSession(t *testing.T) {
	api := newFakeAPI().on("POST", "/login", fakeResponse{message: "Đăng nhập thành công", data: upstreamAuth()})
	svc, sessions := newAuth(api)

	ctx := ctxutil.WithValue(context.Background(), ctxutil.ClientIPKey, "10.0.0.1")
	resp, err := svc.Login(ctx, dto.LoginRequest{Email: "shopper@example.com", Password: "secret1"})
	require.NoError(t, err)

	assert.Equal(t, dto.Credentials{Email: "shopper@example.com", Password: "secret1"}, api.last().Body)
	assert.Equal(t, "u1", resp.User.ID)
	assert.Equal(t, 900, resp.ExpiresIn)

	sessionID, _, err := SplitRefreshToken(resp.RefreshToken)
	require.NoError(t, err)

	stored, err := sessions.GetByID(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, "Bearer upstream-token", stored.AccessToken)
	assert.Equal(t, "u1", stored.UserID)
	assert.Equal(t, "10.0.0.1", stored.ClientIP)
	assert.Equal(t, "shopper@example.com", stored.Profile.Data().Email)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), stored.AccessTokenExpiresAt, time.Minute)

	session, err := svc.Authenticate(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, sessionID, session.ID)
}

func TestRegister_UpstreamValidation(t *testing.T) {
	api := newFakeAPI().on("POST", "/register", fakeResponse{err: &upstream.APIError{
		StatusCode: 422,
		Message:    "Lỗi",
		Data:       json.RawMessage(`{"email":"Email đã tồn tại"}`),
	}})
	svc, sessions := newAuth(api)

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Email: "shopper@example.com", Password: "secret1", ConfirmPassword: "secret1",
	})
	assert.ErrorIs(t, err, apperrors.ErrUpstreamValidation)
	assert.Equal(t, "Lỗi", apperrors.GetErrorMessage(err))
	assert.Equal(t, map[string]string{"email": "Email đã tồn tại"}, apperrors.GetErrorDetails(err))
	assert.Empty(t, sessions.sessions)
}

func TestLogin_MissingAccessToken(t *testing.T) {
	api := newFakeAPI().on("POST", "/login", fakeResponse{data: map[string]any{"user": map[string]any{"_id": "u1"}}})
	svc, _ := newAuth(api)

	_, err := svc.Login(context.Background(), dto.LoginRequest{Email: "a@b.co", Password: "secret1"})
	assert.ErrorIs(t, err, apperrors.ErrUpstream)
}

func TestRefresh_RotatesSecret(t *testing.T) {
	api := newFakeAPI().on("POST", "/login", fakeResponse{data: upstreamAuth()})
	svc, _ := newAuth(api)
	ctx := context.Background()

	login, err := svc.Login(ctx, dto.LoginRequest{Email: "a@b.co", Password: "secret1"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)
	assert.Equal(t, "u1", refreshed.User.ID)

	_, err = svc.Authenticate(ctx, refreshed.Token)
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken, "old secret is spent")
}

// barrierSessions holds every GetByID until n callers have read the session.
type barrierSessions struct {
	*fakeSessions
	reads sync.WaitGroup
}

func (b *barrierSessions) GetByID(ctx context.Context, id string) (*model.Session, error) {
	session, err := b.fakeSessions.GetByID(ctx, id)
	b.reads.Done()
	b.reads.Wait()
	return session, err
}

func TestRefresh_ConcurrentReuseRotatesOnce(t *testing.T) {
	api := newFakeAPI().on("POST", "/login", fakeResponse{data: upstreamAuth()})
	svc, sessions := newAuth(api)
	ctx := context.Background()

	login, err := svc.Login(ctx, dto.LoginRequest{Email: "a@b.co", Password: "secret1"})
	require.NoError(t, err)

	const callers = 2
	store := &barrierSessions{fakeSessions: sessions}
	store.reads.Add(callers)
	svc.sessions = store

	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
		rejected  atomic.Int32
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Refresh(ctx, login.RefreshToken)
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, apperrors.ErrInvalidRefreshToken):
				rejected.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, succeeded.Load())
	assert.EqualValues(t, 1, rejected.Load())
}

func TestRefresh_Rejects(t *testing.T) {
	api := newFakeAPI().on("POST", "/login", fakeResponse{data: upstreamAuth()})
	svc, sessions := newAuth(api)
	ctx := context.Background()

	login, err := svc.Login(ctx, dto.LoginRequest{Email: "a@b.co", Password: "secret1"})
	require.NoError(t, err)
	sessionID, _, _ := SplitRefreshToken(login.RefreshToken)

	for _, token := range []string{"", "no-dot", sessionID + ".wrong", "unknown.secret"} {
		_, err := svc.Refresh(ctx, token)
		assert.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken, token)
	}

	svc.now = func() time.Time { return time.Now().Add(8 * 24 * time.Hour) }
	_, err = svc.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
	assert.False(t, sessions.has(sessionID), "expired session is removed")
}

func TestLogout_ClearsSessionEvenWhenUpstreamFails(t *testing.T) {
	api := newFakeAPI().
		on("POST", "/login", fakeResponse{data: upstreamAuth()}).
		on("POST", "/logout", fakeResponse{err: &upstream.APIError{StatusCode: 500, Message: "boom"}})
	svc, sessions := newAuth(api)
	ctx := context.Background()

	login, err := svc.Login(ctx, dto.LoginRequest{Email: "a@b.co", Password: "secret1"})
	require.NoError(t, err)
	session, err := svc.Authenticate(ctx, login.Token)
	require.NoError(t, err)

	err = svc.Logout(ctxutil.WithSessionID(ctx, session.ID))
	require.NoError(t, err)
	assert.False(t, sessions.has(session.ID))
	assert.Equal(t, 1, api.count("POST", "/logout"))

	_, err = svc.Authenticate(ctx, login.Token)
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestLogout_WithoutSession(t *testing.T) {
	svc, _ := newAuth(newFakeAPI())
	assert.ErrorIs(t, svc.Logout(context.Background()), apperrors.ErrUnauthorized)
}

func TestAuthenticate_Rejects(t *testing.T) {
	api := newFakeAPI().on("POST", "/login", fakeResponse{data: upstreamAuth()})
	svc, sessions := newAuth(api)
	ctx := context.Background()

	_, err := svc.Authenticate(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

	other := NewTokenService("other-secret", time.Minute, time.Hour)
	forged, err := other.GenerateToken("s1", "u1")
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, forged)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

	login, err := svc.Login(ctx, dto.LoginRequest{Email: "a@b.co", Password: "secret1"})
	require.NoError(t, err)
	sessionID, _, _ := SplitRefreshToken(login.RefreshToken)

	svc.now = func() time.Time { return time.Now().Add(8 * 24 * time.Hour) }
	_, err = svc.Authenticate(ctx, login.Token)
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound, "upstream token has expired")
	assert.False(t, sessions.has(sessionID))
}

func TestTokenService_Expiry(t *testing.T) {
	tokens := NewTokenService("test-secret", time.Minute, time.Hour)
	token, err := tokens.GenerateToken("s1", "u1")
	require.NoError(t, err)

	claims, err := tokens.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "s1", claims.SessionID)
	assert.Equal(t, "u1", claims.Subject)

	tokens.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = tokens.ValidateToken(token)
	assert.Error(t, err)
}

func TestTokenService_RefreshSecret(t *testing.T) {
	tokens := NewTokenService("test-secret", time.Minute, time.Hour)

	secret, err := tokens.GenerateRefreshSecret()
	require.NoError(t, err)
	assert.NotContains(t, secret, ".")

	hash, err := tokens.HashRefreshSecret(secret)
	require.NoError(t, err)
	assert.True(t, tokens.VerifyRefreshSecret(secret, hash))
	assert.False(t, tokens.VerifyRefreshSecret(secret+"x", hash))
}

func TestSplitRefreshToken(t *testing.T) {
	tests := []struct {
		token   string
		id      string
		secret  string
		wantErr bool
	}{
		{JoinRefreshToken("abc", "def"), "abc", "def", false},
		{"abc.def.ghi", "abc", "def.ghi", false},
		{"abc", "", "", true},
		{".def", "", "", true},
		{"abc.", "", "", true},
	}

	for _, tt := range tests {
		id, secret, err := SplitRefreshToken(tt.token)
		if tt.wantErr {
			assert.Error(t, err, tt.token)
			continue
		}
		require.NoError(t, err, tt.token)
		assert.Equal(t, tt.id, id)
		assert.Equal(t, tt.secret, secret)
	}
}
