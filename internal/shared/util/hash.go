package util

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const emailHashLen = 16

// HashEmail returns a short, stable pseudonym for an email address so logs can
// correlate users without carrying the address itself. Case and surrounding
// whitespace are ignored.
func HashEmail(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:])[:emailHashLen]
}
