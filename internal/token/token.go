// Package token generates the opaque single-use tokens used for email
// confirmation, password resets and syndicate invitations.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Generator produces unguessable string tokens. The seed is accepted for
// interface compatibility with callers that key tokens by email, but the
// output never derives from it: every token comes from crypto/rand.
type Generator interface {
	Generate(seed string) (string, error)
}

type randomGenerator struct {
	size int
}

// NewGenerator returns a Generator producing 32-character hex tokens.
func NewGenerator() Generator {
	return &randomGenerator{size: 16}
}

func (g *randomGenerator) Generate(_ string) (string, error) {
	buf := make([]byte, g.size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
