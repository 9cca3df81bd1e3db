package utils

import (
	"crypto/rand"
	"fmt"
	"io"
)

// PasswordAlphabet is the set of symbols generated passwords are drawn from
const PasswordAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// rejectAbove is the largest multiple of len(PasswordAlphabet) that fits in
// a byte. Bytes at or above it are discarded so every symbol stays equally likely.
const rejectAbove = 256 - 256%len(PasswordAlphabet)

// PasswordGenerator produces random alphanumeric credentials
type PasswordGenerator struct {
	src io.Reader
}

// NewPasswordGenerator returns a generator reading randomness from src.
// A nil src uses crypto/rand.
func NewPasswordGenerator(src io.Reader) *PasswordGenerator {
	if src == nil {
		src = rand.Reader
	}
	return &PasswordGenerator{src: src}
}

// Generate returns a string of exactly length symbols from PasswordAlphabet
func (g *PasswordGenerator) Generate(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("password length must be positive, got %d", length)
	}

	out := make([]byte, 0, length)
	buf := make([]byte, length)
	for len(out) < length {
		if _, err := io.ReadFull(g.src, buf[:length-len(out)]); err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		for _, b := range buf[:length-len(out)] {
			if int(b) >= rejectAbove {
				continue
			}
			out = append(out, PasswordAlphabet[int(b)%len(PasswordAlphabet)])
		}
	}
	return string(out), nil
}
