package random

import (
	"crypto/rand"
	"math/big"
)

// Alphabets used for generated tokens
const (
	Alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	URLSafe      = Alphanumeric + "-_"
)

// Random provides random token generation that can be mocked for testing
type Random interface {
	// String generates a random string of the given length from the given alphabet
	String(length int, alphabet string) string

	// Token generates a URL-safe random string of the given length
	Token(length int) string
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// String generates a random string of the given length from the given alphabet.
// It panics if the system randomness source fails, as no token it could
// return would be safe to use.
func (r *CryptoRandom) String(length int, alphabet string) string {
	if length <= 0 || len(alphabet) == 0 {
		return ""
	}
	max := big.NewInt(int64(len(alphabet)))
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic("random: crypto/rand failed: " + err.Error())
		}
		result[i] = alphabet[n.Int64()]
	}
	return string(result)
}

// Token generates a URL-safe random string of the given length
func (r *CryptoRandom) Token(length int) string {
	return r.String(length, URLSafe)
}
