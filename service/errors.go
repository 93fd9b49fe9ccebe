package service

import "errors"

var (
	ErrDuplicateUsername   = errors.New("user already exists")
	ErrPasswordTooLong     = errors.New("password exceeds 72 bytes")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUnauthenticated     = errors.New("not logged in")
	ErrInvalidDestination  = errors.New("invalid destination account")
	ErrInvalidAmount       = errors.New("amount must be a positive number")
	ErrInsufficientBalance = errors.New("insufficient balance")
)
