package entity

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrForbidden      = errors.New("forbidden")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrEmptyCart      = errors.New("cart is empty")
	ErrBadCredentials = errors.New("invalid credentials")
)
