package main

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	gatewayclient "repoprep/internal/gateway/client"
	"repoprep/internal/history"
	"repoprep/internal/interview"
	"repoprep/internal/repo"
	"repoprep/internal/workflow"
)

var (
	heading = color.New(color.FgCyan, color.Bold)
	success = color.New(color.FgGreen)
	failure = color.New(color.FgRed)
	muted   = color.New(color.Faint)
)

// cli holds what every command shares: the I/O streams and resolved settings.
type cli struct {
	in  io.Reader
	out io.Writer

	configPath string
	flags      settings
	settings   settings
	getenv     func(string) string
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	c := &cli{in: in, out: out, getenv: os.Getenv}

	root := &cobra.Command{
		Use:           "prep",
		Short:         "Interview prep from your own GitHub repositories",
		Long:          "prep scans a GitHub repository, generates six interview questions about the files you pick, and lets you practice answering them.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			path := c.configPath
			explicit := cmd.Flags().Changed("config")
			if !explicit {
				path = defaultConfigPath()
			}
			fc, err := loadFileConfig(path, explicit)
			if err != nil {
				return err
			}
			c.settings = resolve(c.flags, fc, c.getenv)
			return nil
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(out)

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/repoprep/config.toml)")
	pf.StringVar(&c.flags.GatewayURL, "gateway", "", "gateway base URL (default "+gatewayclient.DefaultBaseURL+")")
	pf.StringVar(&c.flags.GitHubToken, "github-token", "", "GitHub token for higher rate limits")
	pf.StringVar(&c.flags.GitHubAPIURL, "github-api", "", "GitHub API root (enterprise installs)")
	pf.StringVar(&c.flags.HistoryFile, "history-file", "", "recent searches file")

	root.AddCommand(
		newScanCmd(c),
		newGenerateCmd(c),
		newPracticeCmd(c),
		newHistoryCmd(c),
	)
	return root
}

func (c *cli) repoClient() (*repo.Client, error) {
	opts := []repo.Option{repo.WithToken(c.settings.GitHubToken)}
	if c.settings.GitHubAPIURL != "" {
		opts = append(opts, repo.WithBaseURL(c.settings.GitHubAPIURL))
	}
	return repo.New(opts...)
}

func (c *cli) service() *interview.Service {
	return interview.NewService(gatewayclient.New(c.settings.GatewayURL))
}

func (c *cli) history() *history.Recent {
	if c.settings.HistoryFile == "" {
		return history.New()
	}
	return history.Open(c.settings.HistoryFile)
}

// workflow wires the repository client, gateway and history together.
func (c *cli) workflow() (*workflow.Workflow, *history.Recent, error) {
	rc, err := c.repoClient()
	if err != nil {
		return nil, nil, err
	}
	h := c.history()
	return workflow.New(rc, c.service(), workflow.WithHistory(h)), h, nil
}
