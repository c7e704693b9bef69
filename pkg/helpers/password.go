package helpers

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"hash"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

// HashPassword hashes the plain text password using bcrypt
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CompareHashAndPassword reports whether plain matches the stored digest.
// Besides bcrypt it accepts werkzeug style "pbkdf2:<alg>:<iter>$<salt>$<hex>"
// digests carried over from imported accounts.
func CompareHashAndPassword(hash string, plain string) bool {
	if strings.HasPrefix(hash, "pbkdf2:") {
		return comparePBKDF2(hash, plain)
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// werkzeug default when the iteration count is omitted from the method
const legacyPBKDF2Iterations = 260000

func comparePBKDF2(digest, plain string) bool {
	parts := strings.SplitN(digest, "$", 3)
	if len(parts) != 3 {
		return false
	}
	method, salt, want := parts[0], parts[1], parts[2]

	algo := strings.Split(method, ":")
	if len(algo) < 2 || len(algo) > 3 {
		return false
	}
	var newHash func() hash.Hash
	switch algo[1] {
	case "sha256":
		newHash = sha256.New
	case "sha512":
		newHash = sha512.New
	case "sha1":
		newHash = sha1.New
	default:
		return false
	}
	iter := legacyPBKDF2Iterations
	if len(algo) == 3 {
		n, err := strconv.Atoi(algo[2])
		if err != nil || n <= 0 {
			return false
		}
		iter = n
	}

	expected, err := hex.DecodeString(want)
	if err != nil || len(expected) == 0 {
		return false
	}
	got := pbkdf2.Key([]byte(plain), []byte(salt), iter, len(expected), newHash)
	return subtle.ConstantTimeCompare(got, expected) == 1
}
