package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"repoprep/internal/interview"
	"repoprep/internal/llm/stream"
	"repoprep/internal/practice"
)

const quitCommand = "/quit"

func newPracticeCmd(c *cli) *cobra.Command {
	var (
		opts       generateOptions
		packetPath string
		number     int
		noStream   bool
	)
	cmd := &cobra.Command{
		Use:   "practice [github-url]",
		Short: "Answer one question and get streamed feedback",
		Long: "practice grades your answers to one question. Load a packet saved with generate --json, " +
			"or pass a repository URL to generate a fresh one. Type " + quitCommand + " to leave; " +
			"Ctrl-C cancels the feedback being streamed.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			packet, err := c.loadPacket(cmd.Context(), packetPath, args, &opts)
			if err != nil {
				return err
			}
			if number < 1 || number > len(packet.Questions) {
				return fmt.Errorf("question must be between 1 and %d", len(packet.Questions))
			}
			q := packet.Questions[number-1]
			var grader practice.Grader = c.service()
			if noStream {
				grader = wholeGrader{c.service()}
			}
			sess := practice.NewSession(grader, q.Q, q.SampleAnswer)
			return c.practiceLoop(cmd.Context(), sess, q)
		},
	}
	opts.bind(cmd)
	cmd.Flags().StringVar(&packetPath, "packet", "", "packet JSON written by generate --json")
	cmd.Flags().IntVarP(&number, "question", "q", 1, "question number (1-based)")
	cmd.Flags().BoolVar(&noStream, "no-stream", false, "grade through the non-streaming endpoint")
	return cmd
}

// wholeGrader adapts the non-streaming grader to practice.Grader. The
// feedback arrives as a single fragment.
type wholeGrader struct {
	s *interview.Service
}

func (g wholeGrader) EvaluateAnswerStreaming(ctx context.Context, question, ideal, answer string, fn stream.FragmentFunc) (string, error) {
	text, err := g.s.EvaluateAnswer(ctx, question, ideal, answer)
	if err != nil {
		if ctx.Err() != nil {
			return "", stream.ErrAborted
		}
		return "", explainGatewayError(err)
	}
	fn(text, text)
	return text, nil
}

func (c *cli) loadPacket(ctx context.Context, path string, args []string, o *generateOptions) (*interview.Packet, error) {
	switch {
	case path != "":
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read packet: %w", err)
		}
		return interview.ParsePacket(string(b))
	case len(args) == 1:
		g, err := c.generate(ctx, args[0], o)
		if err != nil {
			return nil, err
		}
		return g.packet, nil
	default:
		return nil, errors.New("pass a repository URL or --packet")
	}
}

func (c *cli) practiceLoop(ctx context.Context, sess *practice.Session, q interview.Question) error {
	heading.Fprintln(c.out, "Practice Mode")
	fmt.Fprintln(c.out, q)
	muted.Fprintf(c.out, "Type your answer and press Enter. %s to leave.\n", quitCommand)

	sc := bufio.NewScanner(c.in)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for {
		fmt.Fprint(c.out, "> ")
		if !sc.Scan() {
			fmt.Fprintln(c.out)
			return sc.Err()
		}
		answer := strings.TrimSpace(sc.Text())
		if answer == quitCommand {
			return nil
		}
		if answer == "" {
			continue
		}

		_, err := sendInterruptible(ctx, sess, answer, func(fragment, _ string) {
			fmt.Fprint(c.out, fragment)
		})
		fmt.Fprintln(c.out)
		switch {
		case err == nil:
		case errors.Is(err, stream.ErrAborted):
			muted.Fprintln(c.out, "(cancelled)")
			if ctx.Err() != nil {
				return nil
			}
		default:
			failure.Fprintln(c.out, practice.ErrorNotice)
		}
	}
}

// sendInterruptible runs one exchange with Ctrl-C bound to sess.Cancel. The
// handler is removed afterwards so Ctrl-C at the prompt exits as usual.
func sendInterruptible(ctx context.Context, sess *practice.Session, answer string, fn stream.FragmentFunc) (string, error) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	done := make(chan struct{})
	defer func() {
		signal.Stop(sigs)
		close(done)
	}()
	go func() {
		select {
		case <-sigs:
			sess.Cancel()
		case <-done:
		}
	}()
	return sess.Send(ctx, answer, fn)
}
