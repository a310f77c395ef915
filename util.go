package pathio

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/dustin/go-humanize"
)

// GenerateToken returns a random hex token built from n random bytes.
func GenerateToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// HumanSize renders a byte count in a human-readable form ("43 B",
// "1.2 MB").
func HumanSize(n int64) string {
	return humanize.Bytes(uint64(n))
}
