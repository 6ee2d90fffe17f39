package components

import "errors"

// Component registry errors.
var (
	ErrComponentNotFound = errors.New("component not found")
	ErrInvalidStatus     = errors.New("invalid component status")
	ErrSlugTaken         = errors.New("component slug already in use")
)
