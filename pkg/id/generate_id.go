package id

import (
	"strings"

	"github.com/google/uuid"
)

// NewShortID returns an 8-character opaque loan id: the leading hex of
// a random UUID. Collision odds are acceptable at tracker scale; ids
// are assigned once and never reused.
func NewShortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
