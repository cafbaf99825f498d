// Package configcmd implements the `dm config` command group.
package configcmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/go-ports/dm/cmd/dm/shared"
	"github.com/go-ports/dm/internal/config"
	"github.com/go-ports/dm/internal/db"
	"github.com/go-ports/dm/internal/service"
	"github.com/go-ports/dm/internal/store"
)

const configTemplate = `# dm configuration

# Where bookmarks are stored.
#   json:   <home>/data.json, human-readable (default)
#   sqlite: <home>/bookmarks.db
backend: json

# When the bookmark file cannot be parsed, move it aside as
# data.json.corrupt-<time> and start empty instead of refusing to run.
recover_corrupt: false

# Diagnostics written to stderr: debug | info | warn | error
log_level: warn
`

// Command implements `dm config`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the config command group.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "config",
		Short: "Show or manage configuration",
		Args:  cobra.NoArgs,
		RunE:  c.runShow,
	}
	c.cmd.AddCommand(
		newConfigInit(ctx),
		newSetHome(ctx),
		newClearHome(ctx),
	)
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) runShow(cmd *cobra.Command, _ []string) error {
	home, source, err := c.ctx.ResolveHome()
	if err != nil {
		return err
	}
	cfg, err := config.Load(filepath.Join(home, config.FileName))
	if err != nil {
		return err
	}
	data := map[string]any{
		"home":            home,
		"home_source":     source,
		"backend":         cfg.Backend,
		"store":           storePath(home, cfg.Backend),
		"recover_corrupt": cfg.RecoverCorrupt,
		"log_level":       cfg.LogLevel,
	}
	if err := addStoreStats(data, home); err != nil {
		return err
	}
	b, err := yaml.Marshal(data)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), string(b))
	return nil
}

// addStoreStats reports the bookmark count and last save time. A home that
// does not exist yet is not created just to report on it, and a store that
// cannot be opened is reported rather than failing the command.
func addStoreStats(data map[string]any, home string) error {
	if _, err := os.Stat(home); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	svc, err := service.New(home)
	if err != nil {
		data["store_error"] = err.Error()
		return nil
	}
	defer svc.Close()

	data["bookmarks"] = len(svc.Names())
	saved, ok, err := svc.LastSaved()
	if err != nil {
		return err
	}
	if ok {
		data["last_saved"] = saved
	}
	return nil
}

func storePath(home, backend string) string {
	if backend == config.BackendSQLite {
		return filepath.Join(home, db.DataFile)
	}
	return filepath.Join(home, store.DataFile)
}

// ---------------------------------------------------------------------------
// config init
// ---------------------------------------------------------------------------

func newConfigInit(ctx *shared.Context) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a starter config.yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			home, _, err := ctx.ResolveHome()
			if err != nil {
				return err
			}
			cfgPath := filepath.Join(home, config.FileName)
			out := cmd.OutOrStdout()
			if _, err := os.Stat(cfgPath); err == nil && !force {
				fmt.Fprintf(out, "Config already exists at %s\n", cfgPath)
				fmt.Fprintln(out, "Use --force to overwrite.")
				return nil
			}
			if err := os.MkdirAll(home, 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(cfgPath, []byte(configTemplate), 0o600); err != nil {
				return err
			}
			fmt.Fprintf(out, "Created %s\n", cfgPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing config")
	return cmd
}

// ---------------------------------------------------------------------------
// config set-home
// ---------------------------------------------------------------------------

func newSetHome(_ *shared.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "set-home <path>",
		Short: "Persist the dm home location (used when DM_HOME is unset)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := config.SetPersistedHome(args[0])
			if err != nil {
				return err
			}
			if err := os.MkdirAll(resolved, 0o755); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Persisted dm home: %s\n", resolved)
			fmt.Fprintf(out, "Override anytime with %s.\n", config.HomeEnv)
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// config clear-home
// ---------------------------------------------------------------------------

func newClearHome(_ *shared.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-home",
		Short: "Remove the persisted dm home location from global config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			changed, err := config.ClearPersistedHome()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if changed {
				fmt.Fprintln(out, "Cleared persisted dm home setting.")
			} else {
				fmt.Fprintln(out, "No persisted dm home setting was found.")
			}
			return nil
		},
	}
}
