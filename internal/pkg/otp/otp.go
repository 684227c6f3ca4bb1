// Package otp generates and checks the six-digit one-time codes emailed during
// registration and login.
package otp

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

const (
	Min = 100000
	Max = 999999
)

var span = big.NewInt(Max - Min + 1)

// Generate returns a code drawn uniformly from [Min, Max].
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return strconv.FormatInt(n.Int64()+Min, 10), nil
}

// Matches reports whether submitted equals the stored code once the stored
// value is read back as an integer. A stored value that is not a number never matches.
func Matches(stored, submitted string) bool {
	n, err := strconv.Atoi(strings.TrimSpace(stored))
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(strconv.Itoa(n)), []byte(submitted)) == 1
}
