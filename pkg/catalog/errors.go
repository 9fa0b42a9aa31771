package catalog

import "errors"

var (
	ErrInvalidCodename = errors.New("catalog: invalid gallery codename")
	ErrGalleryNotFound = errors.New("catalog: gallery not found")
	ErrMigrationsFail  = errors.New("catalog: failed to apply migrations")
)
