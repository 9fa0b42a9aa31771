package imaging

import "errors"

var (
	ErrUndecodable = errors.New("imaging: cannot decode image")
	ErrTooLarge    = errors.New("imaging: image exceeds maximum dimensions")
)
