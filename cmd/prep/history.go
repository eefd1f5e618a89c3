package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHistoryCmd(c *cli) *cobra.Command {
	var clearAll bool
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or clear recently scanned repositories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h := c.history()
			if clearAll {
				h.Clear()
				if err := h.Err(); err != nil {
					return err
				}
				success.Fprintln(c.out, "Recent searches cleared.")
				return nil
			}
			urls := h.List()
			if len(urls) == 0 {
				muted.Fprintln(c.out, "No recent searches.")
				return nil
			}
			heading.Fprintln(c.out, "Recent searches")
			for _, u := range urls {
				fmt.Fprintln(c.out, u)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&clearAll, "clear", false, "forget all recent searches")
	return cmd
}
