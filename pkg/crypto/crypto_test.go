package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateRandomDigits(t *testing.T) {
	for i := 0; i < 100; i++ {
		pin := GenerateRandomDigits(6)
		require.Len(t, pin, 6)
		for _, c := range pin {
			require.True(t, c >= '0' && c <= '9')
		}
	}
}

func TestRandIntn(t *testing.T) {
	for i := 0; i < 100; i++ {
		v := RandIntn(7)
		require.GreaterOrEqual(t, v, 0)
		require.Less(t, v, 7)
	}
}
