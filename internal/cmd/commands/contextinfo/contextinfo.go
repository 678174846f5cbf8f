package contextinfo

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/hashicorp-forge/hermes-sharepoint/internal/cmd/base"
	"github.com/hashicorp-forge/hermes-sharepoint/internal/output"
)

type Command struct {
	*base.Command

	flagConfig  string
	flagFormat  string
	flagVerbose bool
}

func (c *Command) Synopsis() string {
	return "Show the web object of the configured site"
}

func (c *Command) Help() string {
	return `Usage: sharepoint context-info [options]

  Fetches the root web of the configured site. Useful to check that the
  configuration and session are valid.` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("context-info", flag.ContinueOnError))

	f.StringVar(
		&c.flagConfig, "config", "",
		fmt.Sprintf("[%s] Path to the configuration file.", base.ConfigEnvVar),
	)
	f.StringVar(
		&c.flagFormat, "format", string(output.FormatJSON),
		"Output format: json, yaml or table.",
	)
	f.BoolVar(
		&c.flagVerbose, "verbose", false,
		"Log every request and response.",
	)

	return f
}

func (c *Command) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	format, err := output.ParseFormat(c.flagFormat)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	site, err := c.LoadSite(ctx, base.ConfigPath(c.flagConfig), c.flagVerbose)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	res, err := site.ContextInfo(ctx)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error fetching context info: %v", err))
		return 1
	}

	var buf bytes.Buffer
	if err := output.Render(&buf, output.NewFormatter(format), res); err != nil {
		c.UI.Error(fmt.Sprintf("error rendering result: %v", err))
		return 1
	}
	c.UI.Output(strings.TrimRight(buf.String(), "\n"))
	return 0
}
