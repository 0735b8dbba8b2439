package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrOperationFailed = errors.New("operation failed")

	// Phone / OTP errors
	ErrInvalidPhone     = errors.New("phone number is not valid for the selected country")
	ErrRegionNotAllowed = errors.New("country is not in the allowed region list")
	ErrCooldownActive   = errors.New("resend cooldown is still active")
	ErrCodeExpired      = errors.New("verification code has expired")
	ErrCodeMismatch     = errors.New("verification code does not match")
	ErrTooManyAttempts  = errors.New("too many verification attempts")
	ErrRateLimited      = errors.New("too many requests")

	// Token payment errors
	ErrSignatureMismatch = errors.New("payment signature verification failed")
	ErrPaymentNotPending = errors.New("payment is not awaiting verification")
	ErrRequestInFlight   = errors.New("another request is already in flight")
)
