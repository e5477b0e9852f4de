package id

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var re32 = regexp.MustCompile(`^[a-f0-9]{32}$`)

// NewID32 returns a random (v4) identifier as 32 lowercase hex characters.
func NewID32() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Valid reports whether s has the NewID32 shape. Member and loan ids coming
// from outside are only checked for shape, not version bits.
func Valid(s string) bool { return re32.MatchString(s) }
