// Package shortcode generates the short keys used in redirect paths.
package shortcode

import (
	"crypto/rand"
	"math/big"
)

// Alphabet is the character set short keys are drawn from.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// KeyLength is the length of every generated short key.
const KeyLength = 6

var alphabetLen = big.NewInt(int64(len(Alphabet)))

// Generate returns a KeyLength-character key drawn uniformly from Alphabet.
// Keys are independent across calls; global uniqueness is the caller's
// responsibility. The only failure mode is an unavailable entropy source,
// which is a fatal process-level condition.
func Generate() (string, error) {
	key := make([]byte, KeyLength)
	for i := range key {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", err
		}
		key[i] = Alphabet[n.Int64()]
	}

	return string(key), nil
}

// IsValid reports whether the given string could have been produced by Generate.
func IsValid(key string) bool {
	if len(key) != KeyLength {
		return false
	}
	for _, c := range key {
		if !isAlphanumeric(c) {
			return false
		}
	}

	return true
}

func isAlphanumeric(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
