package blob

import "errors"

var (
	ErrInvalidConfig      = errors.New("blob: invalid storage config")
	ErrInvalidPath        = errors.New("blob: invalid object path")
	ErrFailedToLoadConfig = errors.New("blob: failed to load aws config")
	ErrNotFound           = errors.New("blob: object not found")
	ErrAccessDenied       = errors.New("blob: access denied")
	ErrUnavailable        = errors.New("blob: storage unavailable")
)
