// Package basecmd implements the `dm base` command.
package basecmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-ports/dm/cmd/dm/shared"
	"github.com/go-ports/dm/internal/models"
	"github.com/go-ports/dm/internal/service"
)

// Command implements `dm base`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the base command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "base",
		Short: "Print the base name of the current directory (the name `dm add` would use)",
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
		return fmt.Errorf("base: %w", err)
	}
	name := models.NameFromPath(cwd)
	if name == "" {
		return fmt.Errorf("base: %w %q", service.ErrNoBaseName, cwd)
	}
	fmt.Fprintln(cmd.OutOrStdout(), name)
	return nil
}
