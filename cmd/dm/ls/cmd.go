// Package lscmd implements the `dm ls` command.
package lscmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-ports/dm/cmd/dm/shared"
	"github.com/go-ports/dm/internal/service"
)

// Command implements `dm ls`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the ls command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List all bookmarks as name -> path, sorted by name",
		Args:    cobra.NoArgs,
		RunE:    c.run,
	}
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, _ []string) error {
	svc, err := service.New(c.ctx.Home)
	if err != nil {
		return err
	}
	defer svc.Close()

	out := cmd.OutOrStdout()
	name := shared.NameColor(out)
	for _, b := range svc.List() {
		fmt.Fprintf(out, "%s -> %s\n", name.Sprint(b.Name), b.Path)
	}
	return nil
}
