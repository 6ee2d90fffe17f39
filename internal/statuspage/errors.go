package statuspage

import "errors"

// Status page errors.
var (
	ErrPageNotFound = errors.New("status page not found")
	ErrSlugTaken    = errors.New("page slug already in use")
)
