package gateway

import "errors"

var (
	ErrUnauthenticated = errors.New("gateway: missing or invalid credentials")
	ErrBadRequest      = errors.New("gateway: bad request")
	ErrNotFound        = errors.New("gateway: not found")
)
