package services

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"
)

// CodeGenerator produces a numeric one-time code of the given length
type CodeGenerator func(length int) (string, error)

// GenerateCode generates a cryptographically secure numeric code
func GenerateCode(length int) (string, error) {
	digits := make([]byte, length)
	for i := 0; i < length; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate random digit: %w", err)
		}
		digits[i] = byte('0' + num.Int64())
	}
	return string(digits), nil
}

// HashCode returns the hex SHA-256 of a code. Only this form is persisted.
func HashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// codeMatches compares a submitted code against a stored hash in constant time
func codeMatches(storedHash, code string) bool {
	submitted := HashCode(code)
	return subtle.ConstantTimeCompare([]byte(storedHash), []byte(submitted)) == 1
}
