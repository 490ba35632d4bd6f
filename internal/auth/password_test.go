package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePassword(t *testing.T) {
	p, err := GeneratePassword()
	require.NoError(t, err)
	assert.Len(t, p, passwordLength)
	for _, r := range p {
		assert.True(t, strings.ContainsRune(passwordAlphabet, r), "unexpected rune %q", r)
	}
}

func TestGeneratePasswordVaries(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 16; i++ {
		p, err := GeneratePassword()
		require.NoError(t, err)
		seen[p] = true
	}
	assert.Greater(t, len(seen), 1, "passwords should not repeat")
}
