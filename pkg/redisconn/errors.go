package redisconn

import "errors"

var (
	ErrFailedToParseConnString = errors.New("redisconn: failed to parse connection URL")
	ErrNotReady                = errors.New("redisconn: server not ready")
)
