package auth

import (
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/scrypt"
)

func HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword checks plain against a stored hash. Hashes imported from
// the previous system use scrypt in the "hex(key).salt" form; they verify
// too, and rehash is true so the caller can upgrade them to bcrypt.
func VerifyPassword(stored, plain string) (ok bool, rehash bool) {
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)) == nil, false
	}

	key, salt, found := strings.Cut(stored, ".")
	if !found || salt == "" {
		return false, false
	}

	want, err := hex.DecodeString(key)
	if err != nil || len(want) == 0 {
		return false, false
	}

	got, err := scrypt.Key([]byte(plain), []byte(salt), 16384, 8, 1, len(want))
	if err != nil {
		return false, false
	}

	if subtle.ConstantTimeCompare(got, want) != 1 {
		return false, false
	}
	return true, true
}
