package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	gatewayclient "repoprep/internal/gateway/client"
	"repoprep/internal/utils"
)

const configDirName = "repoprep"

// fileConfig mirrors config.toml. All keys are optional.
type fileConfig struct {
	GatewayURL   string `toml:"gateway_url"`
	GitHubToken  string `toml:"github_token"`
	GitHubAPIURL string `toml:"github_api_url"`
	HistoryFile  string `toml:"history_file"`
}

// settings is the resolved configuration after flags, env and file.
type settings struct {
	GatewayURL   string
	GitHubToken  string
	GitHubAPIURL string
	HistoryFile  string
}

func defaultConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, configDirName)
}

func defaultConfigPath() string {
	dir := defaultConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.toml")
}

func defaultHistoryPath() string {
	dir := defaultConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "recent.json")
}

// loadFileConfig reads path. A missing file is only an error when the path
// was given explicitly.
func loadFileConfig(path string, explicit bool) (fileConfig, error) {
	var fc fileConfig
	if path == "" {
		return fc, nil
	}
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return fileConfig{}, nil
		}
		return fileConfig{}, fmt.Errorf("config %s: %w", path, err)
	}
	return fc, nil
}

// resolve merges flag values over env over file values. getenv is injected
// for tests.
func resolve(flags settings, fc fileConfig, getenv func(string) string) settings {
	s := settings{
		GatewayURL:   utils.FirstNonEmpty(flags.GatewayURL, getenv("REPOPREP_GATEWAY_URL"), fc.GatewayURL, gatewayclient.DefaultBaseURL),
		GitHubToken:  utils.FirstNonEmpty(flags.GitHubToken, getenv("GITHUB_TOKEN"), fc.GitHubToken),
		GitHubAPIURL: utils.FirstNonEmpty(flags.GitHubAPIURL, fc.GitHubAPIURL),
		HistoryFile:  utils.FirstNonEmpty(flags.HistoryFile, fc.HistoryFile, defaultHistoryPath()),
	}
	s.HistoryFile = expandHome(s.HistoryFile)
	return s
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
