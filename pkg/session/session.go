// Package session generates the opaque client-correlation tokens carried
// in the sid cookie. The metrics core only ever compares these strings
// for equality; nothing is encoded in them beyond uniqueness.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// CookieName is the session cookie issued to every visitor
const CookieName = "sid"

// CookieMaxAge is the session cookie lifetime (six months)
const CookieMaxAge = 6 * 30 * 24 * time.Hour

// NewID returns a fresh session identifier. The format mirrors what
// clients already hold: a "session_" prefix, the mint time in unix
// milliseconds, and 16 random characters.
func NewID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails when the OS entropy source is broken;
		// fall back to the clock rather than refusing the request.
		return fmt.Sprintf("session_%d_%016x", time.Now().UnixMilli(), time.Now().UnixNano())
	}
	return fmt.Sprintf("session_%d_%s", time.Now().UnixMilli(), hex.EncodeToString(buf))
}
