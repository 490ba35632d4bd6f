package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashPassword(t *testing.T) {
	// sha512("abc"), the classic FIPS 180-2 vector.
	const want = "ddaf35a193617abacc417349ae20413112e6fa4e89a97ea20a9eeee64b55d39a" +
		"2192992a274fc1a836ba3c23a3feebbd454d4423643ce80e2a9ac94fa54ca49f"
	assert.Equal(t, want, HashPassword("abc"))
}

func TestHashPasswordDeterministic(t *testing.T) {
	assert.Equal(t, HashPassword("hunter2"), HashPassword("hunter2"))
	assert.NotEqual(t, HashPassword("hunter2"), HashPassword("hunter3"))
	assert.Len(t, HashPassword("anything"), 128)
}

func TestHashEqual(t *testing.T) {
	h := HashPassword("secret")
	assert.True(t, HashEqual(h, HashPassword("secret")))
	assert.False(t, HashEqual(h, HashPassword("other")))
	assert.False(t, HashEqual(h, ""))
}
