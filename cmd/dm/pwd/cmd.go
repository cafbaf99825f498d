// Package pwdcmd implements the `dm pwd` command.
package pwdcmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-ports/dm/cmd/dm/shared"
)

// Command implements `dm pwd`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the pwd command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "pwd",
		Short: "Print the current directory",
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (*Command) run(cmd *cobra.Command, _ []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("pwd: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), cwd)
	return nil
}
