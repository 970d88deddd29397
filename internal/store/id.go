package store

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
)

const idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// makeID builds an identifier of the form PREFIX-<unix-millis>-<RAND>.
// The CASE- variant must keep this exact shape: the intent layer extracts
// case IDs from free text with a matching pattern.
func makeID(prefix string, randLen int) string {
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), randToken(randLen))
}

func randToken(n int) string {
	var b strings.Builder
	max := big.NewInt(int64(len(idAlphabet)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails if the OS entropy source is broken;
			// fall back to a fixed character rather than panic.
			b.WriteByte('0')
			continue
		}
		b.WriteByte(idAlphabet[idx.Int64()])
	}
	return b.String()
}

// randDigits returns n random decimal digits as a string, first digit
// non-zero.
func randDigits(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		limit := int64(10)
		offset := int64(0)
		if i == 0 {
			limit, offset = 9, 1
		}
		v, err := rand.Int(rand.Reader, big.NewInt(limit))
		if err != nil {
			b.WriteByte('1')
			continue
		}
		b.WriteByte(byte('0' + offset + v.Int64()))
	}
	return b.String()
}
