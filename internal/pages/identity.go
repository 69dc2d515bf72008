package pages

import (
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"strconv"

	"github.com/rotisserie/eris"
)

const (
	idLength       = 7
	passwordLength = 5
)

// deriveID returns the shareable identifier for content created at the given
// millisecond timestamp: the first 7 hex characters of an MD5 digest over the
// content and timestamp. The truncated space makes collisions improbable but
// not impossible; an insert hitting an existing id fails with ErrPageExists.
func deriveID(content string, createdAt int64) string {
	sum := md5.Sum([]byte(content + strconv.FormatInt(createdAt, 10)))
	return hex.EncodeToString(sum[:])[:idLength]
}

// generatePassword draws 5 independent decimal digits from crypto/rand.
func generatePassword() (string, error) {
	digits := make([]byte, passwordLength)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", eris.Wrap(err, "drawing password digit")
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}
