package service

import (
	"context"
	"errors"
	"net/url"
	"time"

	apperrors "github.com/Payphone-Digital/storefront/internal/errors"
	"github.com/Payphone-Digital/storefront/internal/model"
	ctxutil "github.com/Payphone-Digital/storefront/pkg/context"
	"github.com/Payphone-Digital/storefront/pkg/logger"
	"github.com/Payphone-Digital/storefront/pkg/upstream"
)

// API is the part of the upstream client the services call. Every method
// returns the upstream envelope message.
type API interface {
	Get(ctx context.Context, path string, query url.Values, out any) (string, error)
	Post(ctx context.Context, path string, body, out any) (string, error)
	Put(ctx context.Context, path string, body, out any) (string, error)
	Delete(ctx context.Context, path string, body, out any) (string, error)
}

// SessionStore persists server-side sessions.
type SessionStore interface {
	Create(ctx context.Context, session *model.Session) error
	GetByID(ctx context.Context, id string) (*model.Session, error)
	UpdateProfile(ctx context.Context, id string, profile model.Profile) error
	Rotate(ctx context.Context, id, oldHash, newHash string, refreshExpiresAt time.Time) error
	Delete(ctx context.Context, id string) error
}

// Upstream API paths
const (
	pathRegister  = "/register"
	pathLogin     = "/login"
	pathLogout    = "/logout"
	pathMe        = "/me"
	pathUser      = "/user"
	pathProducts  = "/products"
	pathCategory  = "/categories"
	pathPurchases = "/purchases"
)

// mapUpstreamError turns an upstream client failure into a domain error.
// notFound is used for 404 responses; nil maps them to ErrUpstream.
func mapUpstreamError(err error, notFound *apperrors.DomainError) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, upstream.ErrCircuitOpen) {
		return apperrors.WrapError(apperrors.ErrServiceUnavailable, err)
	}

	apiErr, ok := upstream.AsAPIError(err)
	if !ok {
		return apperrors.WrapError(apperrors.ErrUpstream, err)
	}

	switch {
	case apiErr.IsValidation():
		domainErr := apperrors.WithMessage(apperrors.ErrUpstreamValidation, apiErr.Message)
		domainErr = apperrors.WithDetails(domainErr, apiErr.FieldErrors())
		return apperrors.WrapError(domainErr, err)
	case apiErr.IsUnauthorized():
		return apperrors.WrapError(apperrors.WithMessage(apperrors.ErrUnauthorized, apiErr.Message), err)
	case apiErr.IsNotFound() && notFound != nil:
		return apperrors.WrapError(notFound, err)
	default:
		return apperrors.WrapError(apperrors.WithMessage(apperrors.ErrUpstream, apiErr.Message), err)
	}
}

// dropSessionOnUnauthorized deletes the caller's session once the upstream
// refuses its access token, so the next request signs in again.
func dropSessionOnUnauthorized(ctx context.Context, sessions SessionStore, err error) {
	apiErr, ok := upstream.AsAPIError(err)
	if !ok || !apiErr.IsUnauthorized() {
		return
	}

	sessionID := ctxutil.GetSessionID(ctx)
	if sessionID == "" {
		return
	}

	if delErr := sessions.Delete(ctx, sessionID); delErr != nil {
		logger.WarnWithContext(ctx, "Failed to drop session after upstream 401").
			String("session_id", sessionID).
			Err(delErr).
			Log()
		return
	}

	logger.InfoWithContext(ctx, "Session dropped after upstream 401").
		String("session_id", sessionID).
		Log()
}
