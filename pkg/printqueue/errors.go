package printqueue

import "errors"

var (
	ErrEmptyTenant   = errors.New("printqueue: empty tenant")
	ErrEmptyFileName = errors.New("printqueue: empty file name")
)
