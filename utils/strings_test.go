package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 50))
	assert.Equal(t, strings.Repeat("x", 50)+"...", Truncate(strings.Repeat("x", 51), 50))
	// rune-safe, not byte-safe
	assert.Equal(t, "héllo...", Truncate("héllo wörld", 5))
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, Dedupe([]string{"a", "b", "a", "", "c", "b"}))
	assert.Empty(t, Dedupe(nil))
}
