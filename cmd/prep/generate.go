package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	gatewayclient "repoprep/internal/gateway/client"
	"repoprep/internal/interview"
	"repoprep/internal/util/jsonutil"
	"repoprep/internal/workflow"
)

// generateOptions are shared by generate and practice.
type generateOptions struct {
	files      []string
	resumeFile string
	qtype      string
}

func (o *generateOptions) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringSliceVar(&o.files, "files", nil, fmt.Sprintf("files to analyze, up to %d (comma separated)", workflow.MaxSelected))
	f.StringVar(&o.resumeFile, "resume-file", "", "plain-text resume to tailor the questions")
	f.StringVar(&o.qtype, "type", string(interview.Mixed), "question mix: mixed, technical or behavioral")
}

func (o *generateOptions) resume() (string, error) {
	if o.resumeFile == "" {
		return "", nil
	}
	b, err := os.ReadFile(o.resumeFile)
	if err != nil {
		return "", fmt.Errorf("read resume: %w", err)
	}
	return string(b), nil
}

// generated is the outcome of a scan, select and analyze run. repoName is
// the bare repository name used in the guide heading and file name.
type generated struct {
	repoName string
	packet   *interview.Packet
}

func (c *cli) generate(ctx context.Context, url string, o *generateOptions) (*generated, error) {
	resume, err := o.resume()
	if err != nil {
		return nil, err
	}
	wf, h, err := c.workflow()
	if err != nil {
		return nil, err
	}
	if err := wf.Scan(ctx, url); err != nil {
		return nil, err
	}
	c.warnHistory(h.Err())

	for _, p := range o.files {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		selected, err := wf.Toggle(p)
		if err != nil {
			return nil, err
		}
		if !selected {
			muted.Fprintf(c.out, "skipping %s: at most %d files can be selected\n", p, workflow.MaxSelected)
		}
	}

	st := wf.Snapshot()
	muted.Fprintf(c.out, "Analyzing %s (%d files selected)...\n", st.Ref, len(st.Selected))
	packet, err := wf.Analyze(ctx, resume, interview.ParseQuestionType(o.qtype))
	if err != nil {
		return nil, explainGatewayError(err)
	}
	return &generated{repoName: st.Ref.Repo, packet: packet}, nil
}

func newGenerateCmd(c *cli) *cobra.Command {
	var (
		opts     generateOptions
		out      string
		jsonPath string
	)
	cmd := &cobra.Command{
		Use:   "generate <github-url>",
		Short: "Generate six interview questions about a repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := c.generate(cmd.Context(), args[0], &opts)
			if err != nil {
				return err
			}
			printPacket(c.out, g.packet)

			if out != "" {
				path := guidePath(out, g.repoName)
				if err := os.WriteFile(path, []byte(interview.Markdown(g.repoName, g.packet)), 0o644); err != nil {
					return fmt.Errorf("write guide: %w", err)
				}
				success.Fprintf(c.out, "Guide written to %s\n", path)
			}
			if jsonPath != "" {
				b, err := jsonutil.MarshalNoEscapeIndent(g.packet, "", "  ")
				if err != nil {
					return err
				}
				if err := os.WriteFile(jsonPath, b, 0o644); err != nil {
					return fmt.Errorf("write packet: %w", err)
				}
				success.Fprintf(c.out, "Packet written to %s\n", jsonPath)
			}
			return nil
		},
	}
	opts.bind(cmd)
	cmd.Flags().StringVar(&out, "out", "", "write the Markdown guide to this file or directory")
	cmd.Flags().StringVar(&jsonPath, "json", "", "write the raw packet as JSON (reusable with practice --packet)")
	return cmd
}

// explainGatewayError adds the wait time to a rate-limit rejection.
func explainGatewayError(err error) error {
	var ge *gatewayclient.Error
	if errors.As(err, &ge) && ge.RateLimited() && ge.RetryAfter > 0 {
		return fmt.Errorf("%w Try again in %ds.", err, ge.RetryAfter)
	}
	return err
}

// guidePath resolves a directory target to the default guide file name.
func guidePath(out, repoName string) string {
	if strings.HasSuffix(out, string(os.PathSeparator)) {
		return filepath.Join(out, interview.GuideFilename(repoName))
	}
	if fi, err := os.Stat(out); err == nil && fi.IsDir() {
		return filepath.Join(out, interview.GuideFilename(repoName))
	}
	return out
}

func printPacket(w io.Writer, p *interview.Packet) {
	heading.Fprintln(w, "Project Summary")
	fmt.Fprintln(w, p.ProjectSummary)
	if len(p.TechStack) > 0 {
		fmt.Fprintln(w)
		heading.Fprintln(w, "Tech Stack")
		fmt.Fprintln(w, strings.Join(p.TechStack, ", "))
	}
	fmt.Fprintln(w)
	heading.Fprintln(w, "Questions")
	for i, q := range p.Questions {
		fmt.Fprintf(w, "\n%d. %s\n", i+1, q)
		muted.Fprintf(w, "   Strategy: %s\n", q.Strategy)
		muted.Fprintf(w, "   Sample answer: %s\n", q.SampleAnswer)
	}
}
