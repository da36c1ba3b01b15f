// Package shared provides small helpers for random codes and wiping
// sensitive buffers.
package shared

import (
	"crypto/rand"
	"errors"
	"math/big"
)

// TemporaryPasswordAlphabet is the character set used for temporary passwords.
const TemporaryPasswordAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomString returns n characters drawn uniformly from alphabet using
// crypto/rand.
func RandomString(alphabet string, n int) (string, error) {
	if alphabet == "" {
		return "", errors.New("empty alphabet")
	}
	max := big.NewInt(int64(len(alphabet)))
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = alphabet[idx.Int64()]
	}
	return string(out), nil
}

// WipeByteArray overwrites the contents of the provided byte slice with zeros.
// It is used for passwords read from the terminal.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
