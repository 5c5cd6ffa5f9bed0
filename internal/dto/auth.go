package dto

import "github.com/Payphone-Digital/storefront/internal/model"

type RegisterRequest struct {
	Email           string `json:"email" binding:"required,min=5,max=160,emailpattern"`
	Password        string `json:"password" binding:"required,min=6,max=160"`
	ConfirmPassword string `json:"confirm_password" binding:"required,min=6,max=160,eqfield=Password"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,min=5,max=160,emailpattern"`
	Password string `json:"password" binding:"required,min=6,max=160"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Credentials is the body sent to the upstream /register and /login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpstreamAuth is the data member of an upstream auth response. Expires is
// the access token lifetime in seconds, sent as a string or a number.
type UpstreamAuth struct {
	AccessToken string        `json:"access_token"`
	Expires     FlexibleInt   `json:"expires"`
	User        model.Profile `json:"user"`
}

type AuthResponse struct {
	Token        string        `json:"token"`
	RefreshToken string        `json:"refresh_token"`
	ExpiresIn    int           `json:"expires_in"` // session token expiry in seconds
	User         model.Profile `json:"user"`
}
