package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"todohub/internal/cache"
)

const (
	refreshTokenKeyPrefix = "refresh_token:"
	accessTokenKeyPrefix  = "denylist:access_token:"
)

// TokenStoreInterface defines the interface for token registry operations.
//
// Refresh tokens are tracked with an allowlist: an entry exists for every
// live refresh token, keyed by JTI, and logout removes it. A refresh token
// whose signature verifies but whose JTI is absent has been revoked. Access
// tokens revoked at logout sit on a denylist until their natural expiry.
type TokenStoreInterface interface {
	StoreRefreshToken(ctx context.Context, tokenID string, userID uint, email string, ttl time.Duration) error
	RefreshTokenExists(ctx context.Context, tokenID string) (bool, error)
	DeleteRefreshToken(ctx context.Context, tokenID string) error
	DenylistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsAccessTokenDenylisted(ctx context.Context, tokenID string) (bool, error)
}

// TokenStore handles storage and retrieval of token state in Redis.
type TokenStore struct {
	cache *cache.Client
}

// Ensure TokenStore implements TokenStoreInterface
var _ TokenStoreInterface = (*TokenStore)(nil)

// NewTokenStore creates a new token store.
func NewTokenStore(cache *cache.Client) *TokenStore {
	return &TokenStore{cache: cache}
}

// StoreRefreshToken allowlists a refresh token JTI with TTL matching the
// token's own expiry.
func (s *TokenStore) StoreRefreshToken(ctx context.Context, tokenID string, userID uint, email string, ttl time.Duration) error {
	data := map[string]interface{}{
		"user_id": userID,
		"email":   email,
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal token data: %w", err)
	}

	key := refreshTokenKeyPrefix + tokenID
	return s.cache.Set(ctx, key, payload, ttl)
}

// RefreshTokenExists reports whether a refresh token JTI is still
// allowlisted. Registry errors propagate so the caller fails closed.
func (s *TokenStore) RefreshTokenExists(ctx context.Context, tokenID string) (bool, error) {
	key := refreshTokenKeyPrefix + tokenID
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		return false, err
	}
	return data != nil, nil
}

// DeleteRefreshToken removes a refresh token JTI from the allowlist.
func (s *TokenStore) DeleteRefreshToken(ctx context.Context, tokenID string) error {
	key := refreshTokenKeyPrefix + tokenID
	return s.cache.Delete(ctx, key)
}

// DenylistAccessToken marks an access token revoked until it expires.
func (s *TokenStore) DenylistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	key := accessTokenKeyPrefix + tokenID
	return s.cache.Set(ctx, key, []byte("1"), ttl)
}

// IsAccessTokenDenylisted checks if an access token has been revoked.
// A registry error counts as denylisted: the caller must fail closed.
func (s *TokenStore) IsAccessTokenDenylisted(ctx context.Context, tokenID string) (bool, error) {
	key := accessTokenKeyPrefix + tokenID
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		return true, err
	}
	return data != nil, nil
}
