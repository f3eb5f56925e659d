package utils

import (
	"strings"

	"github.com/google/uuid"
)

// ShortID returns a prefixed short identifier, e.g. "b_3f9a2c". Six hex
// chars of a v4 uuid is plenty for per-room uniqueness.
func ShortID(prefix string) string {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	return prefix + "_" + id[:6]
}
