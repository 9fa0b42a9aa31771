package token

import "errors"

var (
	ErrMissingSecret = errors.New("token: missing signing secret")
	ErrInvalid       = errors.New("token: invalid credential")
	ErrExpired       = errors.New("token: credential is expired")
	ErrForbidden     = errors.New("token: insufficient level")
)
