package testutil

import (
	"strings"

	"github.com/google/uuid"
)

// RandomSlug returns a unique slug with the given prefix, suitable for
// tests that run against a shared database.
func RandomSlug(prefix string) string {
	suffix := strings.Split(uuid.NewString(), "-")[0]
	if prefix == "" {
		return suffix
	}
	return prefix + "-" + suffix
}
