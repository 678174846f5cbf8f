package digest

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/hashicorp-forge/hermes-sharepoint/internal/cmd/base"
	"github.com/hashicorp-forge/hermes-sharepoint/pkg/sharepoint"
)

type Command struct {
	*base.Command

	flagConfig  string
	flagVerbose bool
}

func (c *Command) Synopsis() string {
	return "Acquire a form digest for the configured site"
}

func (c *Command) Help() string {
	return `Usage: sharepoint digest [options]

  Requests a form digest from the contextinfo endpoint and prints it with
  its expiry. The value can be sent as X-RequestDigest by other tools.` +
		c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("digest", flag.ContinueOnError))

	f.StringVar(
		&c.flagConfig, "config", "",
		fmt.Sprintf("[%s] Path to the configuration file.", base.ConfigEnvVar),
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	site, err := c.LoadSite(ctx, base.ConfigPath(c.flagConfig), c.flagVerbose)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	digest, err := site.FormDigest(ctx)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	c.UI.Output(digest)
	if info, ok := site.CurrentDigest().(*sharepoint.ContextWebInformation); ok {
		c.UI.Info(fmt.Sprintf("expires at %s", info.ExpiresAt().Format(time.RFC3339)))
	}
	return 0
}
