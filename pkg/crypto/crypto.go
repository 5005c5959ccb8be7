package crypto

import (
	"crypto/rand"
	"math/big"
)

const digits = "0123456789"

// GenerateRandomDigits returns a fixed-width numeric string, suitable for
// pickup PINs. Leading zeros are allowed.
func GenerateRandomDigits(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = digits[RandIntn(len(digits))]
	}
	return string(b)
}

// RandIntn returns a uniform random value in [0, n). It panics if got a
// non-positive parameter.
func RandIntn(n int) int {
	r, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(err)
	}

	return int(r.Int64())
}
