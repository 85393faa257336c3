package util

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const accountCodeDigits = "0123456789"

// GenerateAccountCode returns a random numeric code of the given length,
// used to build default account names for new users.
func GenerateAccountCode(length int) string {
	if length <= 0 {
		return ""
	}

	var sb strings.Builder
	sb.Grow(length)
	max := big.NewInt(int64(len(accountCodeDigits)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand does not fail on supported platforms
			panic(err)
		}
		sb.WriteByte(accountCodeDigits[n.Int64()])
	}
	return sb.String()
}
