package docstore

import (
	"crypto/rand"
	"fmt"
)

// IDLen is the length of generated document ids, about 119 bits of entropy.
const IDLen = 20

const idChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// NewID returns a random alphanumeric document id of IDLen characters.
func NewID() (string, error) {
	// bytes above maxByte are skipped so every character is equally likely
	const maxByte = 255 - (256 % len(idChars))

	out := make([]byte, 0, IDLen)
	buf := make([]byte, IDLen+IDLen/2) //nolint:mnd

	for len(out) < IDLen {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}

		for _, b := range buf {
			if int(b) > maxByte {
				continue
			}

			out = append(out, idChars[int(b)%len(idChars)])
			if len(out) == IDLen {
				break
			}
		}
	}

	return string(out), nil
}
