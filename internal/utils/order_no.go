package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const orderNoSuffixDigits = 6

// GenerateOrderNo builds a human-readable order number: a date-time prefix
// plus a cryptographically random numeric suffix. Collisions are ruled out by
// the unique index on order_no; the random suffix keeps numbers unguessable.
func GenerateOrderNo(now time.Time) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < orderNoSuffixDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return fmt.Sprintf("RO%s%0*d", now.Format("20060102150405"), orderNoSuffixDigits, n), nil
}
