package pin

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"

	"golang.org/x/crypto/pbkdf2"
)

// Derivation parameters. The iteration count is deliberately high so that
// brute-forcing short numeric PINs stays expensive.
const (
	iterations = 200_000
	saltBytes  = 16
	keyLen     = 32
)

// Set generates a fresh salt and derives the stored hash for a raw PIN.
// Both values are opaque base64url strings without padding.
func Set(rawPin string) (salt, hash string, err error) {
	buf := make([]byte, saltBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	salt = base64.RawURLEncoding.EncodeToString(buf)
	return salt, derive(rawPin, salt), nil
}

// Verify reports whether rawPin matches the stored salt/hash pair. The
// comparison is constant time; malformed stored values simply verify false.
func Verify(rawPin, salt, hash string) bool {
	if salt == "" || hash == "" {
		return false
	}
	check := derive(rawPin, salt)
	return subtle.ConstantTimeCompare([]byte(check), []byte(hash)) == 1
}

func derive(rawPin, salt string) string {
	dk := pbkdf2.Key([]byte(rawPin), []byte(salt), iterations, keyLen, sha256.New)
	return base64.RawURLEncoding.EncodeToString(dk)
}
