package repo

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURL(t *testing.T) {
	cases := []struct {
		in   string
		want Ref
	}{
		{"https://github.com/octo/demo", Ref{"octo", "demo"}},
		{"https://github.com/octo/demo.git", Ref{"octo", "demo"}},
		{"github.com/octo/demo/tree/main/src", Ref{"octo", "demo"}},
		{"  https://www.github.com/octo/demo?tab=readme  ", Ref{"octo", "demo"}},
	}
	for _, tc := range cases {
		got, err := ParseURL(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseURL_Invalid(t *testing.T) {
	for _, in := range []string{"", "octo/demo", "https://gitlab.com/octo/demo", "https://github.com/octo"} {
		_, err := ParseURL(in)
		assert.ErrorIs(t, err, ErrInvalidURL, in)
	}
}

func TestDecodeContent_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	alphabet := []rune("abcXYZ019 \n\t{}()<>\"'éß漢字🙂")
	for i := 0; i < 300; i++ {
		n := rng.Intn(200)
		var b strings.Builder
		for j := 0; j < n; j++ {
			b.WriteRune(alphabet[rng.Intn(len(alphabet))])
		}
		s := b.String()
		assert.Equal(t, s, DecodeContent(EncodeContent(s)))
	}
}

func TestDecodeContent_WrappedLines(t *testing.T) {
	enc := EncodeContent(strings.Repeat("package main\n", 20))
	var wrapped strings.Builder
	for i := 0; i < len(enc); i += 60 {
		end := min(i+60, len(enc))
		wrapped.WriteString(enc[i:end])
		wrapped.WriteString("\n")
	}
	assert.Equal(t, strings.Repeat("package main\n", 20), DecodeContent(wrapped.String()))
}

func TestDecodeContent_Invalid(t *testing.T) {
	assert.Equal(t, UndecodableContent, DecodeContent("%%%"))
	// valid base64, invalid UTF-8
	assert.Equal(t, UndecodableContent, DecodeContent("/w=="))
}
