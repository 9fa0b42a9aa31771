package mailer

import "errors"

var (
	ErrInvalidConfig = errors.New("mailer: invalid smtp config")
	ErrSendFailed    = errors.New("mailer: failed to send email")
)
