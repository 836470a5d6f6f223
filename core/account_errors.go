package core

import (
	"errors"
	"fmt"
	"net/http"
)

type AccountErrorType string

// GenericErrorMessage is what clients see for any server-side failure.
const GenericErrorMessage = "Something went wrong, please try again later."

const (
	// Input validation errors
	ErrKeyValidationFailed AccountErrorType = "ErrValidationFailed"

	// Account creation errors
	ErrKeyAccountCreationFailed AccountErrorType = "ErrAccountCreationFailed"
	ErrKeyEmailAlreadyExists    AccountErrorType = "ErrEmailAlreadyExists"
	ErrKeyHashingFailed         AccountErrorType = "ErrHashingFailed"

	// Account lookup errors
	ErrKeyUserNotFound AccountErrorType = "ErrUserNotFound"

	// Authentication errors
	ErrKeyInvalidPassword AccountErrorType = "ErrInvalidPassword"

	// JWT generation errors
	ErrKeyJWTGenerationFailed AccountErrorType = "ErrJWTGenerationFailed"

	// Password recovery errors
	ErrKeyOTPGenerationFailed AccountErrorType = "ErrOTPGenerationFailed"
	ErrKeyEmailDeliveryFailed AccountErrorType = "ErrEmailDeliveryFailed"

	// General errors
	ErrKeyDatabaseOperationFailed AccountErrorType = "ErrDatabaseOperationFailed"
)

var defaultErrorMessages = map[AccountErrorType]string{
	ErrKeyValidationFailed: "The request is missing required fields.",

	ErrKeyAccountCreationFailed: "Account creation failed due to an internal error.",
	ErrKeyEmailAlreadyExists:    "The email address provided is already in use.",
	ErrKeyHashingFailed:         "Failed to hash the password.",

	ErrKeyUserNotFound: "No user with that email",

	ErrKeyInvalidPassword: "Invalid Password",

	ErrKeyJWTGenerationFailed: "Failed to generate a new JWT token.",

	ErrKeyOTPGenerationFailed: "Failed to generate a recovery code.",
	ErrKeyEmailDeliveryFailed: "Failed to deliver the email.",

	ErrKeyDatabaseOperationFailed: "A database operation failed.",
}

var (
	ErrorCodeToHttpStatus = map[AccountErrorType]int{
		ErrKeyValidationFailed: http.StatusBadRequest,

		ErrKeyAccountCreationFailed: http.StatusInternalServerError,
		ErrKeyEmailAlreadyExists:    http.StatusConflict,
		ErrKeyHashingFailed:         http.StatusInternalServerError,

		ErrKeyUserNotFound: http.StatusNotFound,

		ErrKeyInvalidPassword: http.StatusUnauthorized,

		ErrKeyJWTGenerationFailed: http.StatusInternalServerError,

		ErrKeyOTPGenerationFailed: http.StatusInternalServerError,
		ErrKeyEmailDeliveryFailed: http.StatusInternalServerError,

		ErrKeyDatabaseOperationFailed: http.StatusInternalServerError,
	}
)

type AccountError struct {
	Key     AccountErrorType // A unique identifier for the error type
	Message string           // Human-readable error message
	Err     error            // Underlying error, if any
}

func (e *AccountError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AccountError) Unwrap() error {
	return e.Err
}

func (e *AccountError) IsErrorType(key AccountErrorType) bool {
	return e.Key == key
}

func (e *AccountError) HttpStatus() int {
	if status, exists := ErrorCodeToHttpStatus[e.Key]; exists {
		return status
	}
	return http.StatusInternalServerError
}

// PublicMessage is the message safe to show a client. Server-side failures
// collapse to GenericErrorMessage.
func (e *AccountError) PublicMessage() string {
	if e.HttpStatus() >= http.StatusInternalServerError {
		return GenericErrorMessage
	}
	return e.Message
}

func NewAccountError(key AccountErrorType, err error, customMessage ...string) *AccountError {
	message, exists := defaultErrorMessages[key]
	if !exists {
		message = "An unknown error occurred"
	}
	if len(customMessage) > 0 {
		message = customMessage[0]
	}
	return &AccountError{
		Key:     key,
		Message: message,
		Err:     err,
	}
}

func IsAccountError(err error) bool {
	return AsAccountError(err) != nil
}

func AsAccountError(err error) *AccountError {
	var accErr *AccountError
	if errors.As(err, &accErr) {
		return accErr
	}
	return nil
}

// IsAccountErrorType reports whether err wraps an AccountError of the given key.
func IsAccountErrorType(err error, key AccountErrorType) bool {
	accErr := AsAccountError(err)
	return accErr != nil && accErr.IsErrorType(key)
}
