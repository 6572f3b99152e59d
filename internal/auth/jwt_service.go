package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	apperrors "todohub/internal/errors"
)

// Scope discriminates token kinds so an access token can never be replayed
// as a refresh token and vice versa.
type Scope string

const (
	ScopeAccess            Scope = "access_token"
	ScopeRefresh           Scope = "refresh_token"
	ScopeEmailVerification Scope = "email_verification"
	ScopePasswordReset     Scope = "password_reset"
)

// TTL bundles the lifetimes for each token scope.
type TTL struct {
	Access  time.Duration
	Refresh time.Duration
	Email   time.Duration
	Reset   time.Duration
}

// DefaultTTL matches the service defaults: short-lived access tokens,
// week-long refresh tokens, day-long verification links, hour-long resets.
var DefaultTTL = TTL{
	Access:  15 * time.Minute,
	Refresh: 7 * 24 * time.Hour,
	Email:   24 * time.Hour,
	Reset:   time.Hour,
}

// Claims represents JWT claims carried by every token kind.
type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Scope  Scope  `json:"scope"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// JWTService handles JWT token generation and validation.
type JWTService struct {
	secret []byte
	ttl    TTL
}

// NewJWTService creates a new JWT service with the given secret.
func NewJWTService(secret string, ttl TTL) *JWTService {
	return &JWTService{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// RefreshTTL exposes the refresh token lifetime so the allowlist entry can
// share its expiry.
func (s *JWTService) RefreshTTL() time.Duration {
	return s.ttl.Refresh
}

// GenerateAccessToken generates a new access token for the user. The token
// carries a JTI so it can be denylisted at logout, and the user's role for
// the permission gate on admin routes.
func (s *JWTService) GenerateAccessToken(userID uint, email, role string) (tokenID string, token string, err error) {
	tokenID = uuid.New().String()
	token, err = s.sign(userID, email, role, ScopeAccess, tokenID, s.ttl.Access)
	return tokenID, token, err
}

// GenerateRefreshToken generates a new refresh token for the user.
// The token ID is returned separately for storage in the allowlist.
func (s *JWTService) GenerateRefreshToken(userID uint, email string) (tokenID string, token string, err error) {
	tokenID = uuid.New().String()
	token, err = s.sign(userID, email, "", ScopeRefresh, tokenID, s.ttl.Refresh)
	return tokenID, token, err
}

// GenerateEmailToken generates a single-purpose token handed to the mail
// collaborator for email verification or password reset links.
func (s *JWTService) GenerateEmailToken(userID uint, email string, scope Scope) (string, error) {
	ttl := s.ttl.Email
	if scope == ScopePasswordReset {
		ttl = s.ttl.Reset
	}
	return s.sign(userID, email, "", scope, uuid.New().String(), ttl)
}

func (s *JWTService) sign(userID uint, email, role string, scope Scope, tokenID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		Scope:  scope,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken validates a JWT and checks its scope. Expired tokens fail
// with ErrTokenExpired; signature, structure, and scope mismatches fail with
// ErrTokenInvalid.
func (s *JWTService) ValidateToken(tokenString string, expected Scope) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperrors.ErrTokenInvalid
	}
	if claims.Scope != expected {
		return nil, apperrors.ErrTokenInvalid
	}
	if claims.ID == "" {
		return nil, apperrors.ErrTokenInvalid
	}

	return claims, nil
}
