// Package addcmd implements the `dm add` command.
package addcmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-ports/dm/cmd/dm/shared"
	"github.com/go-ports/dm/internal/service"
)

// Command implements `dm add`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the add command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "add [name]",
		Short: "Bookmark the current directory (under its base name by default)",
		Long: `Bookmarks the current working directory. The bookmark name is the final
segment of the directory path unless a name is given. An existing bookmark
with the same name is replaced.`,
		Example: "  cd ~/projects/foo && dm add\n  dm add work",
		Args:    cobra.MaximumNArgs(1),
		RunE:    c.run,
	}
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("add: current directory: %w", err)
	}
	var name string
	if len(args) == 1 {
		name = args[0]
	}

	svc, err := service.New(c.ctx.Home)
	if err != nil {
		return err
	}
	defer svc.Close()

	b, err := svc.AddDir(cwd, name)
	if err != nil {
		return err
	}
	if shadowsCommand(cmd.Root(), b.Name) {
		slog.Warn("bookmark name matches a dm subcommand; it will not resolve via `dm <name>`",
			"name", b.Name)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", b)
	return nil
}

// shadowsCommand reports whether name resolves to a subcommand of root.
func shadowsCommand(root *cobra.Command, name string) bool {
	for _, sub := range root.Commands() {
		if sub.Name() == name || sub.HasAlias(name) {
			return true
		}
	}
	return false
}
