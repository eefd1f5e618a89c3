package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", TruncateRunes("abc", 5))
	assert.Equal(t, "ab", TruncateRunes("abc", 2))
	assert.Equal(t, "", TruncateRunes("abc", 0))
	assert.Equal(t, "héé", TruncateRunes("héééé", 3))

	long := strings.Repeat("語", 2500)
	got := TruncateRunes(long, 2000)
	assert.Equal(t, 2000, utf8.RuneCountInString(got))
	assert.True(t, utf8.ValidString(got))
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", FirstNonEmpty("", "b", "c"))
	assert.Equal(t, "", FirstNonEmpty("", ""))
}
