package service

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var errMalformedRefreshToken = errors.New("malformed refresh token")

// SessionClaims are the claims of a storefront session token.
type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// TokenService signs session tokens and manages refresh secrets. The refresh
// token handed to clients is "<session id>.<secret>"; only a bcrypt hash of
// the secret is stored.
type TokenService struct {
	secretKey  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenService(secretKey string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		secretKey:  []byte(secretKey),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// AccessTTL is the lifetime of a session token.
func (s *TokenService) AccessTTL() time.Duration {
	return s.accessTTL
}

// RefreshTTL is how long a session can be refreshed after sign-in.
func (s *TokenService) RefreshTTL() time.Duration {
	return s.refreshTTL
}

// GenerateToken signs a short-lived session token for sessionID.
func (s *TokenService) GenerateToken(sessionID, userID string) (string, error) {
	now := s.now()
	claims := SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies the signature and expiry of a session token.
func (s *TokenService) ValidateToken(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secretKey, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	if !token.Valid || claims.SessionID == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// GenerateRefreshSecret creates a random refresh secret.
func (s *TokenService) GenerateRefreshSecret() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate refresh secret: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// HashRefreshSecret hashes a refresh secret for storage.
func (s *TokenService) HashRefreshSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash refresh secret: %w", err)
	}
	return string(hash), nil
}

// VerifyRefreshSecret checks a refresh secret against its stored hash.
func (s *TokenService) VerifyRefreshSecret(secret, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}

// JoinRefreshToken builds the client-facing refresh token.
func JoinRefreshToken(sessionID, secret string) string {
	return sessionID + "." + secret
}

// SplitRefreshToken is the inverse of JoinRefreshToken.
func SplitRefreshToken(token string) (sessionID, secret string, err error) {
	sessionID, secret, ok := strings.Cut(token, ".")
	if !ok || sessionID == "" || secret == "" {
		return "", "", errMalformedRefreshToken
	}
	return sessionID, secret, nil
}
