// Package joincode generates and compares workspace join codes.
package joincode

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"strings"
)

const (
	Length   = 6
	alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// Generate returns a fresh code of Length lowercase base36 characters.
func Generate() (string, error) {
	var b strings.Builder
	b.Grow(Length)
	base := big.NewInt(int64(len(alphabet)))
	for i := 0; i < Length; i++ {
		n, err := rand.Int(rand.Reader, base)
		if err != nil {
			return "", fmt.Errorf("generate join code: %w", err)
		}
		b.WriteByte(alphabet[n.Int64()])
	}
	return b.String(), nil
}

// Normalize lower-cases and trims a user-submitted code.
func Normalize(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// Match reports whether submitted equals stored after normalisation.
func Match(stored, submitted string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(Normalize(submitted))) == 1
}

// Valid reports whether code has the shape Generate produces.
func Valid(code string) bool {
	if len(code) != Length {
		return false
	}
	for i := 0; i < len(code); i++ {
		if !strings.ContainsRune(alphabet, rune(code[i])) {
			return false
		}
	}
	return true
}
