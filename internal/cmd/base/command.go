package base

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/spf13/afero"

	"github.com/hashicorp-forge/hermes-sharepoint/internal/config"
	"github.com/hashicorp-forge/hermes-sharepoint/pkg/sharepoint"
)

// ConfigEnvVar names the environment variable read when -config is not
// given.
const ConfigEnvVar = "SHAREPOINT_CONFIG"

// Command holds what every subcommand needs.
type Command struct {
	Log hclog.Logger
	UI  cli.Ui

	// Fs is where configuration and cookie files are read from.
	Fs afero.Fs
}

// NewCommand returns a base command reading from the OS filesystem.
func NewCommand(log hclog.Logger, ui cli.Ui) *Command {
	return &Command{
		Log: log,
		UI:  ui,
		Fs:  afero.NewOsFs(),
	}
}

// ConfigPath returns flagValue, falling back to $SHAREPOINT_CONFIG.
func ConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv(ConfigEnvVar)
}

// LoadSite reads the configuration at path and builds the site. verbose
// raises the log level and turns on request logging.
func (c *Command) LoadSite(ctx context.Context, path string, verbose bool) (*sharepoint.Site, error) {
	if path == "" {
		return nil, fmt.Errorf("config flag is required (-config or %s)", ConfigEnvVar)
	}

	cfg, err := config.LoadFile(c.Fs, path)
	if err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if verbose {
		c.Log.SetLevel(hclog.Debug)
		cfg.Site.Verbose = true
	}

	site, err := cfg.NewSite(ctx, c.Fs, c.Log)
	if err != nil {
		return nil, fmt.Errorf("error initializing site: %w", err)
	}
	return site, nil
}
