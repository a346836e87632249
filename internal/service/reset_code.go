package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	numericAlphabet = "0123456789"
	// Ambiguous glyphs (0/O, 1/I/L) are left out for codes read from an email.
	alphanumericAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
)

// ResetCodeGenerator produces fixed-length one-time codes from crypto/rand.
type ResetCodeGenerator struct {
	length   int
	alphabet string
}

// NewResetCodeGenerator creates a generator. charset is "numeric" or "alphanumeric".
func NewResetCodeGenerator(length int, charset string) *ResetCodeGenerator {
	if length <= 0 {
		length = 6
	}
	alphabet := numericAlphabet
	if charset == "alphanumeric" {
		alphabet = alphanumericAlphabet
	}
	return &ResetCodeGenerator{length: length, alphabet: alphabet}
}

// Generate returns a new code.
func (g *ResetCodeGenerator) Generate() (string, error) {
	limit := big.NewInt(int64(len(g.alphabet)))

	var builder strings.Builder
	builder.Grow(g.length)
	for i := 0; i < g.length; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("generate reset code: %w", err)
		}
		builder.WriteByte(g.alphabet[n.Int64()])
	}
	return builder.String(), nil
}

// Space returns the number of distinct codes the generator can produce.
func (g *ResetCodeGenerator) Space() *big.Int {
	return new(big.Int).Exp(big.NewInt(int64(len(g.alphabet))), big.NewInt(int64(g.length)), nil)
}
