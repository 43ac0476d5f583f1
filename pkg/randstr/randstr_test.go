package randstr

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateRandomString(t *testing.T) {
	alphabet := "ABC123"
	g := New([]byte(alphabet))

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		s := g.GenerateRandomString(8)
		assert.Len(t, s, 8)
		for _, r := range s {
			assert.True(t, strings.ContainsRune(alphabet, r), "unexpected rune %q", r)
		}
		seen[s] = struct{}{}
	}

	assert.Greater(t, len(seen), 1, "output must not be constant")
}

func TestGenerateRandomStringZeroLength(t *testing.T) {
	g := New([]byte("AB"))
	assert.Empty(t, g.GenerateRandomString(0))
}
