package treasury

import (
	"crypto/rand"
	"encoding/hex"
)

// NewFormToken generates a single-use form token. Tokens are opaque
// hex strings; unpredictability is all that matters.
func NewFormToken() string {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}
