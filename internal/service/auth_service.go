package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"todohub/internal/auth"
	apperrors "todohub/internal/errors"
	"todohub/internal/mail"
	"todohub/internal/model"
	"todohub/internal/repository"
)

const bcryptCost = 10

// dummyHash is compared against when the email is unknown so both login
// failure paths do comparable work.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("todohub-dummy-password"), bcryptCost)

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, email, username, password string) (*model.User, error)
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, user *model.User, err error)
	Refresh(ctx context.Context, refreshToken string) (accessToken, newRefreshToken string, err error)
	Logout(ctx context.Context, refreshToken, accessToken string) error
	ConfirmEmail(ctx context.Context, token string) (alreadyConfirmed bool, err error)
	RequestVerification(ctx context.Context, email string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	mailer     mail.Mailer
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface, mailer mail.Mailer) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		tokenStore: tokenStore,
		mailer:     mailer,
	}
}

// Register creates a new user with a hashed password and dispatches the
// verification email off the request path.
func (s *authService) Register(ctx context.Context, email, username, password string) (*model.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Avatar:       gravatarURL(email),
		Role:         model.RoleUser,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateEmail) {
			return nil, apperrors.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.sendVerificationAsync(user)

	return user, nil
}

// Login authenticates a user and returns an access/refresh token pair.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *authService) Login(ctx context.Context, email, password string) (accessToken, refreshToken string, user *model.User, err error) {
	user, err = s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		// Burn a comparison anyway so the miss costs the same as a mismatch.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return "", "", nil, apperrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", "", nil, apperrors.ErrInvalidCredentials
	}

	if !user.Confirmed {
		return "", "", nil, apperrors.ErrEmailNotConfirmed
	}

	accessToken, refreshToken, err = s.issueTokenPair(ctx, user)
	if err != nil {
		return "", "", nil, err
	}
	return accessToken, refreshToken, user, nil
}

// Refresh rotates a refresh token: the presented token's JTI is consumed and
// a new access/refresh pair is issued. A replayed or logged-out token fails
// with ErrTokenRevoked.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (accessToken, newRefreshToken string, err error) {
	claims, err := s.jwtService.ValidateToken(refreshToken, auth.ScopeRefresh)
	if err != nil {
		return "", "", err
	}

	// Fail closed: a registry error is treated the same as a revoked token.
	exists, err := s.tokenStore.RefreshTokenExists(ctx, claims.ID)
	if err != nil || !exists {
		return "", "", apperrors.ErrTokenRevoked
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return "", "", apperrors.ErrTokenInvalid
	}

	if err := s.tokenStore.DeleteRefreshToken(ctx, claims.ID); err != nil {
		return "", "", fmt.Errorf("rotate refresh token: %w", err)
	}

	return s.issueTokenPair(ctx, user)
}

// Logout revokes the presented refresh token and denylists the access token
// until its natural expiry. It is idempotent: revoking an already invalid
// token is not an error.
func (s *authService) Logout(ctx context.Context, refreshToken, accessToken string) error {
	if claims, err := s.jwtService.ValidateToken(refreshToken, auth.ScopeRefresh); err == nil {
		if err := s.tokenStore.DeleteRefreshToken(ctx, claims.ID); err != nil {
			return fmt.Errorf("revoke refresh token: %w", err)
		}
	}

	if accessToken == "" {
		return nil
	}
	claims, err := s.jwtService.ValidateToken(accessToken, auth.ScopeAccess)
	if err != nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := s.tokenStore.DenylistAccessToken(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("denylist access token: %w", err)
	}
	return nil
}

// ConfirmEmail validates a verification token and marks the user confirmed.
// Confirming twice is a no-op success.
func (s *authService) ConfirmEmail(ctx context.Context, token string) (bool, error) {
	claims, err := s.jwtService.ValidateToken(token, auth.ScopeEmailVerification)
	if err != nil {
		return false, err
	}

	user, err := s.userRepo.FindByEmail(ctx, claims.Email)
	if err != nil {
		return false, apperrors.ErrTokenInvalid
	}
	if user.Confirmed {
		return true, nil
	}

	if err := s.userRepo.ConfirmEmail(ctx, user.ID); err != nil {
		return false, fmt.Errorf("confirm email: %w", err)
	}
	return false, nil
}

// RequestVerification re-sends the verification email. The response shape
// never reveals whether the address is registered.
func (s *authService) RequestVerification(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("find user: %w", err)
	}
	if user.Confirmed {
		return nil
	}

	s.sendVerificationAsync(user)
	return nil
}

// ForgotPassword emails a single-use reset token. Like RequestVerification,
// it does not reveal whether the address is registered.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("find user: %w", err)
	}

	token, err := s.jwtService.GenerateEmailToken(user.ID, user.Email, auth.ScopePasswordReset)
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}

	u := *user
	go func() {
		_ = s.mailer.SendPasswordReset(u.Email, u.Username, token)
	}()
	return nil
}

// ResetPassword validates a reset token and replaces the stored hash.
func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	claims, err := s.jwtService.ValidateToken(token, auth.ScopePasswordReset)
	if err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.userRepo.UpdatePasswordHash(ctx, claims.UserID, string(hashedPassword)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrTokenInvalid
		}
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (s *authService) issueTokenPair(ctx context.Context, user *model.User) (accessToken, refreshToken string, err error) {
	_, accessToken, err = s.jwtService.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return "", "", fmt.Errorf("generate access token: %w", err)
	}

	tokenID, refreshToken, err := s.jwtService.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return "", "", fmt.Errorf("generate refresh token: %w", err)
	}

	if err := s.tokenStore.StoreRefreshToken(ctx, tokenID, user.ID, user.Email, s.jwtService.RefreshTTL()); err != nil {
		return "", "", fmt.Errorf("store refresh token: %w", err)
	}

	return accessToken, refreshToken, nil
}

// sendVerificationAsync hands the verification mail to the SMTP collaborator
// outside the request's critical path. Failures are logged by the mailer and
// recoverable through the resend endpoint.
func (s *authService) sendVerificationAsync(user *model.User) {
	token, err := s.jwtService.GenerateEmailToken(user.ID, user.Email, auth.ScopeEmailVerification)
	if err != nil {
		return
	}
	email, username := user.Email, user.Username
	go func() {
		_ = s.mailer.SendVerification(email, username, token)
	}()
}
