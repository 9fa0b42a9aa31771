package dbpool

import "errors"

var (
	ErrFailedToParseConfig = errors.New("dbpool: failed to parse pool config")
	ErrFailedToCreatePool  = errors.New("dbpool: failed to create connection pool")
	ErrUnavailable         = errors.New("dbpool: connection unavailable")
	ErrClosed              = errors.New("dbpool: registry is closed")
)
