package query

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/afero"

	"github.com/hashicorp-forge/hermes-sharepoint/internal/cmd/base"
	"github.com/hashicorp-forge/hermes-sharepoint/internal/output"
	"github.com/hashicorp-forge/hermes-sharepoint/pkg/sharepoint"
)

type Command struct {
	*base.Command

	flagConfig  string
	flagMethod  string
	flagData    string
	flagFormat  string
	flagHeaders base.StringSliceVar
	flagRaw     bool
	flagVerbose bool
}

func (c *Command) Synopsis() string {
	return "Send a request to the site REST API"
}

func (c *Command) Help() string {
	return `Usage: sharepoint query [options] <uri>

  Sends a request to the web API of the configured site and prints the
  mapped result. uri is relative to <site>/_api/web/ unless it is an
  absolute URL.

  Mutating requests acquire a form digest automatically.

  Examples:

      $ sharepoint query "lists/getbytitle('Documents')/items"
      $ sharepoint query -method POST -data @list.json lists` +
		c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("query", flag.ContinueOnError))

	f.StringVar(
		&c.flagConfig, "config", "",
		fmt.Sprintf("[%s] Path to the configuration file.", base.ConfigEnvVar),
	)
	f.StringVar(
		&c.flagMethod, "method", http.MethodGet,
		"HTTP method. Any method other than GET sends a form digest.",
	)
	f.StringVar(
		&c.flagData, "data", "",
		"Request body. A leading @ reads the body from a file.",
	)
	f.StringVar(
		&c.flagFormat, "format", string(output.FormatJSON),
		"Output format: json, yaml or table.",
	)
	f.Var(
		&c.flagHeaders, "header",
		"Extra request header as Name=Value. May be repeated.",
	)
	f.BoolVar(
		&c.flagRaw, "raw", false,
		"Print the response body without decoding it.",
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

	args = f.Args()
	if len(args) != 1 {
		c.UI.Error("expected exactly one argument: the request uri")
		return 1
	}
	uri := args[0]

	format, err := output.ParseFormat(c.flagFormat)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	body, err := readBody(c.Fs, c.flagData)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	opts, err := c.queryOptions()
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

	res, err := site.Query(ctx, c.flagMethod, uri, body, opts...)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error querying %s: %v", uri, err))
		return 1
	}

	var buf bytes.Buffer
	if err := output.Render(&buf, output.NewFormatter(format), res); err != nil {
		c.UI.Error(fmt.Sprintf("error rendering result: %v", err))
		return 1
	}
	if buf.Len() > 0 {
		c.UI.Output(strings.TrimRight(buf.String(), "\n"))
	}
	return 0
}

func (c *Command) queryOptions() ([]sharepoint.QueryOption, error) {
	var opts []sharepoint.QueryOption
	if c.flagRaw {
		opts = append(opts, sharepoint.SkipDecode())
	}
	for _, h := range c.flagHeaders {
		name, value, ok := strings.Cut(h, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid header %q, expected Name=Value", h)
		}
		opts = append(opts, sharepoint.WithHeader(strings.TrimSpace(name), strings.TrimSpace(value)))
	}
	return opts, nil
}

func readBody(fs afero.Fs, data string) ([]byte, error) {
	if data == "" {
		return nil, nil
	}
	if path, ok := strings.CutPrefix(data, "@"); ok {
		b, err := afero.ReadFile(fs, path)
		if err != nil {
			return nil, fmt.Errorf("error reading request body: %w", err)
		}
		return b, nil
	}
	return []byte(data), nil
}
