package storage

import (
	"fmt"
	"regexp"

	"github.com/jaevor/go-nanoid"
)

const tokenLength = 32

var tokenPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

func newTokenGenerator() (func() string, error) {
	gen, err := nanoid.Standard(tokenLength)
	if err != nil {
		return nil, fmt.Errorf("init token generator: %w", err)
	}
	return gen, nil
}

// validToken rejects anything that could escape the receipt directory or
// bucket prefix.
func validToken(token string) bool {
	return tokenPattern.MatchString(token)
}

func objectName(token string) string {
	return token + ".pdf"
}
