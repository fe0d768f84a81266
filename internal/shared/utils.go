// Package shared provides small random-token helpers used when minting
// issue and screenshot identifiers.
package shared

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const base36Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// RandBase36 returns n random characters drawn from [0-9A-Z].
//
// Example:
//
//	s, err := RandBase36(3)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(s) // e.g., "K7Q"
func RandBase36(n int) (string, error) {
	var b strings.Builder
	b.Grow(n)

	max := big.NewInt(int64(len(base36Alphabet)))
	for i := 0; i < n; i++ {
		v, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(base36Alphabet[v.Int64()])
	}

	return b.String(), nil
}

// FormatBase36 renders a non-negative integer in upper-case base 36.
func FormatBase36(v int64) string {
	if v <= 0 {
		return "0"
	}
	return strings.ToUpper(big.NewInt(v).Text(36))
}
