package cmd

import (
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/hashicorp-forge/hermes-sharepoint/internal/cmd/base"
	"github.com/hashicorp-forge/hermes-sharepoint/internal/cmd/commands/contextinfo"
	"github.com/hashicorp-forge/hermes-sharepoint/internal/cmd/commands/digest"
	"github.com/hashicorp-forge/hermes-sharepoint/internal/cmd/commands/query"
	"github.com/hashicorp-forge/hermes-sharepoint/internal/cmd/commands/version"
)

// Commands is the mapping of all available commands.
var Commands map[string]cli.CommandFactory

func initCommands(log hclog.Logger, ui cli.Ui) {
	b := base.NewCommand(log, ui)

	Commands = map[string]cli.CommandFactory{
		"context-info": func() (cli.Command, error) {
			return &contextinfo.Command{Command: b}, nil
		},
		"digest": func() (cli.Command, error) {
			return &digest.Command{Command: b}, nil
		},
		"query": func() (cli.Command, error) {
			return &query.Command{Command: b}, nil
		},
		"version": func() (cli.Command, error) {
			return &version.Command{Command: b}, nil
		},
	}
}
