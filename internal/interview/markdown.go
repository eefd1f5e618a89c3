package interview

import (
	"fmt"
	"strings"
)

// Markdown renders the downloadable interview guide.
func Markdown(repoName string, p *Packet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Interview Prep Guide: %s\n\n", repoName)
	if p == nil {
		return b.String()
	}
	b.WriteString("## Project Summary\n")
	b.WriteString(p.ProjectSummary)
	b.WriteString("\n\n## Tech Stack\n")
	if len(p.TechStack) == 0 {
		b.WriteString(notAvailable)
	} else {
		b.WriteString(strings.Join(p.TechStack, ", "))
	}
	b.WriteString("\n\n## Questions\n")
	for i, q := range p.Questions {
		fmt.Fprintf(&b, "\n### %d. %s (%s)\n", i+1, q.Q, q.Category)
		fmt.Fprintf(&b, "**Strategy:** %s\n", q.Strategy)
		fmt.Fprintf(&b, "**Sample Answer:** %s\n", q.SampleAnswer)
	}
	return b.String()
}

// GuideFilename is the file name used when exporting the guide.
func GuideFilename(repoName string) string {
	name := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == 0 {
			return '_'
		}
		return r
	}, repoName)
	return name + "_interview_prep.md"
}
