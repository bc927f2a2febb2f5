package promocode

import (
	"crypto/rand"
	"fmt"
)

const (
	alphabet      = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	DefaultLength = 8
)

// Generate returns a random code of the given length over A-Z0-9. The source
// is crypto/rand and bytes are rejection-sampled so every character is
// uniform; predictable codes would let anyone redeem codes they never
// claimed. Uniqueness is not checked here, the unique constraint on the
// claim/activation tables catches the astronomically rare collision.
func Generate(length int) (string, error) {
	if length <= 0 {
		length = DefaultLength
	}

	// largest multiple of len(alphabet) below 256, bytes at or above it are
	// rejected to avoid modulo bias
	max := byte(256 - 256%len(alphabet))

	code := make([]byte, 0, length)
	buf := make([]byte, length)
	for len(code) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("promocode: %w", err)
		}
		for _, b := range buf {
			if b >= max {
				continue
			}
			code = append(code, alphabet[int(b)%len(alphabet)])
			if len(code) == length {
				break
			}
		}
	}

	return string(code), nil
}
