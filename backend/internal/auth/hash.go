package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/user/carbontracker/backend/internal/apperr"
)

// PasswordCost is the bcrypt work factor used for new hashes.
const PasswordCost = 10

// dummyHash is compared against when the email is unknown so both login
// failures take roughly the same time.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("carbon-tracker-dummy"), PasswordCost)

// HashPassword returns the bcrypt hash of password. bcrypt only reads 72
// bytes, longer passwords are a validation error.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fmt.Errorf("%w: password is longer than 72 bytes", apperr.ErrValidation)
	}
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPasswordHash reports whether password matches hash.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
