package service

import "errors"

var (
	ErrValidation            = errors.New("validation failed")
	ErrConflict              = errors.New("user already exists")
	ErrUnauthenticated       = errors.New("unauthenticated")
	ErrMissingToken          = errors.New("token missing")
	ErrInvalidToken          = errors.New("invalid token")
	ErrNotFound              = errors.New("not found")
	ErrInvalidCredential     = errors.New("invalid google credential")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrDelivery              = errors.New("email delivery failed")
	ErrUpstream              = errors.New("storage provider error")
)
