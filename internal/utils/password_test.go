package utils

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordGenerator_Generate(t *testing.T) {
	t.Run("Length and alphabet", func(t *testing.T) {
		gen := NewPasswordGenerator(nil)
		for _, n := range []int{1, 13, 64} {
			pw, err := gen.Generate(n)
			require.NoError(t, err)
			assert.Len(t, pw, n)
			for _, c := range pw {
				assert.True(t, strings.ContainsRune(PasswordAlphabet, c), "unexpected symbol %q", c)
			}
		}
	})

	t.Run("Deterministic source", func(t *testing.T) {
		src := bytes.NewReader([]byte{0, 1, 25, 26, 61, 62})
		pw, err := NewPasswordGenerator(src).Generate(6)
		require.NoError(t, err)
		assert.Equal(t, "ABZa9A", pw)
	})

	t.Run("Rejects biased bytes", func(t *testing.T) {
		// 248..255 would favour the first symbols and are skipped
		src := bytes.NewReader([]byte{248, 255, 3, 250, 4})
		pw, err := NewPasswordGenerator(src).Generate(2)
		require.NoError(t, err)
		assert.Equal(t, "DE", pw)
	})

	t.Run("Exhausted source", func(t *testing.T) {
		_, err := NewPasswordGenerator(bytes.NewReader([]byte{1, 2})).Generate(13)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read random bytes")
	})

	t.Run("Invalid length", func(t *testing.T) {
		_, err := NewPasswordGenerator(nil).Generate(0)
		assert.Error(t, err)
	})

	t.Run("Every symbol reachable", func(t *testing.T) {
		seq := make([]byte, len(PasswordAlphabet))
		for i := range seq {
			seq[i] = byte(i)
		}
		pw, err := NewPasswordGenerator(bytes.NewReader(seq)).Generate(len(seq))
		require.NoError(t, err)
		assert.Equal(t, PasswordAlphabet, pw)
	})
}
