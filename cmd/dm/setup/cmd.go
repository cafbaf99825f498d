// Package setupcmd implements the `dm setup` command.
package setupcmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/go-ports/dm/cmd/dm/shared"
	"github.com/go-ports/dm/internal/agents"
)

// Command implements `dm setup`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command

	project    bool
	configFile string
	remove     bool
}

// New creates the setup command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "setup <agent>",
		Short: "Register the dm MCP server with a coding agent",
		Long: `Adds a "dm" entry running "dm mcp" to the agent's MCP configuration so the
agent can list, look up and manage bookmarks. Supported agents: ` + strings.Join(agents.Names, ", ") + `.`,
		Example:   "  dm setup claude-code\n  dm setup cursor --project\n  dm setup codex --remove",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: agents.Names,
		RunE:      c.run,
	}
	f := c.cmd.Flags()
	f.BoolVar(&c.project, "project", false, "Write the project config in the current directory instead of the user config")
	f.StringVar(&c.configFile, "config-file", "", "Path of the agent config file to edit")
	f.BoolVar(&c.remove, "remove", false, "Remove the dm entry instead of adding it")
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, args []string) error {
	opts := agents.Options{
		Project:    c.project,
		ConfigFile: c.configFile,
	}
	if c.ctx.Home != "" {
		home, err := filepath.Abs(c.ctx.Home)
		if err != nil {
			return err
		}
		opts.Home = home
	}

	var (
		res agents.Result
		err error
	)
	if c.remove {
		res, err = agents.Uninstall(args[0], opts)
	} else {
		res, err = agents.Install(args[0], opts)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.Message(!c.remove))
	return nil
}
