package core

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccountErrorStatus(t *testing.T) {
	tests := []struct {
		key    AccountErrorType
		status int
	}{
		{ErrKeyValidationFailed, http.StatusBadRequest},
		{ErrKeyUserNotFound, http.StatusNotFound},
		{ErrKeyInvalidPassword, http.StatusUnauthorized},
		{ErrKeyEmailAlreadyExists, http.StatusConflict},
		{ErrKeyEmailDeliveryFailed, http.StatusInternalServerError},
		{ErrKeyDatabaseOperationFailed, http.StatusInternalServerError},
		{ErrKeyAccountCreationFailed, http.StatusInternalServerError},
		{AccountErrorType("ErrSomethingElse"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			assert.Equal(t, tt.status, NewAccountError(tt.key, nil).HttpStatus())
		})
	}
}

func TestAccountErrorMessages(t *testing.T) {
	cause := errors.New("connection reset")

	err := NewAccountError(ErrKeyDatabaseOperationFailed, cause)
	assert.Equal(t, GenericErrorMessage, err.PublicMessage())
	assert.Contains(t, err.Error(), "connection reset")
	assert.ErrorIs(t, err, cause)

	custom := NewAccountError(ErrKeyValidationFailed, nil, "Please provide the email")
	assert.Equal(t, "Please provide the email", custom.PublicMessage())
	assert.Equal(t, "Please provide the email", custom.Error())

	unknown := NewAccountError(AccountErrorType("ErrNope"), nil)
	assert.Equal(t, "An unknown error occurred", unknown.Message)
}

func TestAsAccountError(t *testing.T) {
	base := NewAccountError(ErrKeyUserNotFound, nil)
	wrapped := fmt.Errorf("lookup: %w", base)

	assert.Same(t, base, AsAccountError(wrapped))
	assert.True(t, IsAccountError(wrapped))
	assert.True(t, IsAccountErrorType(wrapped, ErrKeyUserNotFound))
	assert.False(t, IsAccountErrorType(wrapped, ErrKeyInvalidPassword))

	assert.Nil(t, AsAccountError(nil))
	assert.Nil(t, AsAccountError(errors.New("plain")))
	assert.False(t, IsAccountError(errors.New("plain")))
}

func TestMetricOutcome(t *testing.T) {
	assert.Equal(t, MetricOutcomeSuccess, MetricOutcome(nil))
	assert.Equal(t, string(ErrKeyInvalidPassword), MetricOutcome(NewAccountError(ErrKeyInvalidPassword, nil)))
	assert.Equal(t, "error", MetricOutcome(errors.New("plain")))
}
