package interview

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePacket(n int) Packet {
	p := Packet{ProjectSummary: "A CLI tool.", TechStack: []string{"Go", "SQLite"}}
	for i := 0; i < n; i++ {
		p.Questions = append(p.Questions, Question{
			Category:     "Technical",
			Q:            fmt.Sprintf("Question %d?", i+1),
			Strategy:     "Talk about trade-offs.",
			SampleAnswer: "I chose X because Y.",
			Difficulty:   "Mid",
		})
	}
	return p
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestParsePacket_Valid(t *testing.T) {
	want := samplePacket(6)
	got, err := ParsePacket(mustJSON(t, want))
	require.NoError(t, err)
	assert.Equal(t, want, *got)
}

func TestParsePacket_StripsFences(t *testing.T) {
	raw := "```json\n" + mustJSON(t, samplePacket(6)) + "\n```"
	got, err := ParsePacket(raw)
	require.NoError(t, err)
	assert.Len(t, got.Questions, 6)
}

func TestParsePacket_Malformed(t *testing.T) {
	noSummary := samplePacket(6)
	noSummary.ProjectSummary = " "
	noStrategy := samplePacket(6)
	noStrategy.Questions[3].Strategy = ""

	cases := map[string]string{
		"empty":       "",
		"not json":    "I cannot help with that.",
		"five":        mustJSON(t, samplePacket(5)),
		"seven":       mustJSON(t, samplePacket(7)),
		"no summary":  mustJSON(t, noSummary),
		"no strategy": mustJSON(t, noStrategy),
		"wrong shape": `{"questions":"six"}`,
		"truncated":   strings.TrimSuffix(mustJSON(t, samplePacket(6)), "}"),
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			p, err := ParsePacket(raw)
			assert.Nil(t, p)
			assert.ErrorIs(t, err, ErrMalformedPacket)
		})
	}
}

func TestMarkdown(t *testing.T) {
	p := samplePacket(2)
	md := Markdown("demo", &p)

	assert.True(t, strings.HasPrefix(md, "# Interview Prep Guide: demo\n"))
	assert.Contains(t, md, "## Project Summary\nA CLI tool.\n")
	assert.Contains(t, md, "## Tech Stack\nGo, SQLite\n")
	assert.Contains(t, md, "### 1. Question 1? (Technical)\n**Strategy:** Talk about trade-offs.\n**Sample Answer:** I chose X because Y.\n")
	assert.Contains(t, md, "### 2. Question 2? (Technical)")

	p.TechStack = nil
	assert.Contains(t, Markdown("demo", &p), "## Tech Stack\nN/A\n")
}

func TestGuideFilename(t *testing.T) {
	assert.Equal(t, "demo_interview_prep.md", GuideFilename("demo"))
	assert.Equal(t, "a_b_interview_prep.md", GuideFilename("a/b"))
}
