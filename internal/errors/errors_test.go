package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{ErrDuplicateEmail, http.StatusConflict, "DUPLICATE_EMAIL"},
		{ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{ErrEmailNotConfirmed, http.StatusUnauthorized, "EMAIL_NOT_CONFIRMED"},
		{ErrTokenExpired, http.StatusUnauthorized, "TOKEN_EXPIRED"},
		{ErrTokenInvalid, http.StatusUnauthorized, "TOKEN_INVALID"},
		{ErrTokenRevoked, http.StatusUnauthorized, "TOKEN_REVOKED"},
		{ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
		{ErrTodoNotFound, http.StatusNotFound, "TODO_NOT_FOUND"},
		{ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.status, httpErr.StatusCode)
			assert.Equal(t, tt.code, httpErr.Code)
		})
	}

	t.Run("wrapped errors still map", func(t *testing.T) {
		httpErr := MapErrorToHTTP(fmt.Errorf("find user: %w", ErrUserNotFound))
		assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	})

	t.Run("unknown errors hide detail", func(t *testing.T) {
		httpErr := MapErrorToHTTP(fmt.Errorf("dial tcp: connection refused"))
		assert.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
		assert.Equal(t, "INTERNAL_ERROR", httpErr.Code)
		assert.Equal(t, "internal server error", httpErr.Message)
	})
}
