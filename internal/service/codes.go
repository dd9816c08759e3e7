package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

const (
	codeMin = 100000
	codeMax = 999999

	minUsernameLength = 3
	maxUsernameLength = 20
	minPasswordLength = 6
	maxPasswordLength = 72
)

var (
	// emailPattern se usa al emitir OTPs, antes de tocar el store.
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// strictEmailPattern valida el email del registro de identidad.
	strictEmailPattern = regexp.MustCompile(`^(([^<>()\[\]\\.,;:\s@"]+(\.[^<>()\[\]\\.,;:\s@"]+)*)|(".+"))@((\[[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\])|(([a-zA-Z\-0-9]+\.)+[a-zA-Z]{2,}))$`)
	usernamePattern    = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)
)

// generateNumericCode devuelve un codigo uniforme en [100000, 999999].
func generateNumericCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+codeMin, 10), nil
}

// lookupHash es un digest determinista para busqueda por igualdad, no un hash de password.
func lookupHash(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func isValidOTPCode(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func validateUsername(username string) error {
	if len(username) < minUsernameLength || len(username) > maxUsernameLength {
		return newValidationError("username", "Username must be between 3 and 20 characters")
	}
	if !usernamePattern.MatchString(username) {
		return newValidationError("username", "Username can only contain letters, numbers, and hyphens")
	}
	return nil
}

func validatePassword(field, password string) error {
	if len(password) < minPasswordLength {
		return newValidationError(field, "Password must be at least 6 characters long")
	}
	// bcrypt trunca por encima de 72 bytes.
	if len(password) > maxPasswordLength {
		return newValidationError(field, "Password must be at most 72 bytes long")
	}
	return nil
}
