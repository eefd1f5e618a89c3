package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newScanCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "scan <github-url>",
		Short: "List the source files eligible for question generation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wf, h, err := c.workflow()
			if err != nil {
				return err
			}
			if err := wf.Scan(cmd.Context(), args[0]); err != nil {
				return err
			}
			st := wf.Snapshot()
			heading.Fprintf(c.out, "%s: %d files\n", st.Ref, len(st.Files))
			if len(st.Files) == 0 {
				muted.Fprintln(c.out, "No source files found. Questions will be based on the README only.")
			}
			for i, f := range st.Files {
				fmt.Fprintf(c.out, "%3d  %s\n", i+1, f)
			}
			c.warnHistory(h.Err())
			return nil
		},
	}
}

func (c *cli) warnHistory(err error) {
	if err != nil {
		muted.Fprintf(c.out, "warning: could not save recent searches: %v\n", err)
	}
}
