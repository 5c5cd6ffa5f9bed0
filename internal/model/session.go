package model

import (
	"time"

	"gorm.io/datatypes"
)

// Profile is the shopper profile as returned by the upstream API.
type Profile struct {
	ID          string   `json:"_id"`
	Roles       []string `json:"roles,omitempty"`
	Email       string   `json:"email"`
	Name        string   `json:"name,omitempty"`
	DateOfBirth string   `json:"date_of_birth,omitempty"`
	Address     string   `json:"address,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	Avatar      string   `json:"avatar,omitempty"`
	CreatedAt   string   `json:"createdAt,omitempty"`
	UpdatedAt   string   `json:"updatedAt,omitempty"`
}

// Session is the server-side state behind one signed-in browser: the
// upstream access token and the last known profile.
type Session struct {
	ID                   string                      `gorm:"column:id;type:uuid;primaryKey"`
	UserID               string                      `gorm:"column:user_id;not null;index:idx_sessions_user_id"`
	AccessToken          string                      `gorm:"column:access_token;not null"`
	AccessTokenExpiresAt time.Time                   `gorm:"column:access_token_expires_at;not null"`
	RefreshSecretHash    string                      `gorm:"column:refresh_secret_hash;not null"`
	RefreshExpiresAt     time.Time                   `gorm:"column:refresh_expires_at;not null;index:idx_sessions_refresh_expires_at"`
	Profile              datatypes.JSONType[Profile] `gorm:"column:profile;type:jsonb"`
	ClientIP             string                      `gorm:"column:client_ip"`
	UserAgent            string                      `gorm:"column:user_agent"`
	LastSeenAt           time.Time                   `gorm:"column:last_seen_at"`
	CreatedAt            time.Time                   `gorm:"column:created_at"`
	UpdatedAt            time.Time                   `gorm:"column:updated_at"`
}

func (Session) TableName() string {
	return "sessions"
}

// Expired reports whether the session can no longer be refreshed at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.RefreshExpiresAt)
}
