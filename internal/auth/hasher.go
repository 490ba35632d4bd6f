package auth

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
)

// HashPassword returns the sha512 hex digest of a password. The digest is
// the protocol's credential format: clients hash before transmitting and
// the server compares digests byte-for-byte, so this must stay in sync
// with the client-side hash.
func HashPassword(password string) string {
	sum := sha512.Sum512([]byte(password))
	return hex.EncodeToString(sum[:])
}

// HashEqual compares two digests in constant time.
func HashEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
