// Package rmcmd implements the `dm rm` command.
package rmcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-ports/dm/cmd/dm/shared"
	"github.com/go-ports/dm/internal/service"
)

// Command implements `dm rm`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the rm command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:               "rm <name>",
		Aliases:           []string{"remove"},
		Short:             "Delete a bookmark",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: shared.CompleteNames(ctx),
		RunE:              c.run,
	}
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, args []string) error {
	svc, err := service.New(c.ctx.Home)
	if err != nil {
		return err
	}
	defer svc.Close()

	removed, err := svc.Remove(args[0])
	if err != nil {
		return err
	}
	if removed {
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
	} else {
		fmt.Fprintf(cmd.ErrOrStderr(), "No bookmark named %q\n", args[0])
	}
	return nil
}
