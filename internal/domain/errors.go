package domain

import "errors"

var (
	ErrNotFound           = errors.New("resource not found")
	ErrConflict           = errors.New("resource conflict")
	ErrProfileRequired    = errors.New("profile must be completed first")
	ErrRateLimited        = errors.New("rate limit exceeded")
	ErrCredentialRequired = errors.New("provider API key required")
	ErrInvalidInput       = errors.New("invalid input")
)
