// Package rootcmd wires the root cobra.Command for the dm CLI binary.
package rootcmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	addcmd "github.com/go-ports/dm/cmd/dm/add"
	basecmd "github.com/go-ports/dm/cmd/dm/base"
	configcmd "github.com/go-ports/dm/cmd/dm/config"
	importcmd "github.com/go-ports/dm/cmd/dm/importcmd"
	lscmd "github.com/go-ports/dm/cmd/dm/ls"
	mcpcmd "github.com/go-ports/dm/cmd/dm/mcp"
	pwdcmd "github.com/go-ports/dm/cmd/dm/pwd"
	rmcmd "github.com/go-ports/dm/cmd/dm/rm"
	setupcmd "github.com/go-ports/dm/cmd/dm/setup"
	"github.com/go-ports/dm/cmd/dm/shared"
	"github.com/go-ports/dm/internal/buildinfo"
	"github.com/go-ports/dm/internal/config"
	"github.com/go-ports/dm/internal/logging"
	"github.com/go-ports/dm/internal/service"
)

// notFoundMessage is printed to stderr when a looked-up bookmark does not exist.
const notFoundMessage = "Value not found!"

var supportedShells = []string{"bash", "zsh", "fish", "powershell"}

// New creates and returns the root cobra.Command for the dm CLI.
//
// Any argument that does not name a subcommand is looked up as a bookmark and
// its path printed on stdout, so a shell function can `cd "$(dm name)"`.
func New() *cobra.Command {
	ctx := &shared.Context{}
	var generate string

	root := &cobra.Command{
		Use:   "dm [name]",
		Short: "dm: your personal directory door man",
		Long: `dm bookmarks directories under short names.

Run "dm add" in a directory to bookmark it under its base name, then
"dm <name>" prints the bookmarked path. Pair it with a shell function such as

  dcd() { cd "$(dm "$1")"; }

to jump there.`,
		Version:           buildinfo.Summary(),
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: shared.CompleteNames(ctx),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			installLogger(cmd.ErrOrStderr(), ctx)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if generate != "" {
				return genCompletion(cmd.Root(), cmd.OutOrStdout(), generate)
			}
			if len(args) == 0 {
				return cmd.Help()
			}
			return lookup(cmd, ctx, args[0])
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	root.PersistentFlags().StringVar(
		&ctx.Home, "home", "",
		"Override the dm home directory (default: $DM_HOME env → persisted config → ~/.dm)",
	)
	root.Flags().StringVar(&generate, "generate", "",
		"Print a shell completion script ("+strings.Join(supportedShells, ", ")+")")
	_ = root.RegisterFlagCompletionFunc("generate",
		cobra.FixedCompletions(supportedShells, cobra.ShellCompDirectiveNoFileComp))

	root.AddCommand(
		addcmd.New(ctx).Cmd(),
		rmcmd.New(ctx).Cmd(),
		lscmd.New(ctx).Cmd(),
		pwdcmd.New(ctx).Cmd(),
		basecmd.New(ctx).Cmd(),
		importcmd.New(ctx).Cmd(),
		configcmd.New(ctx).Cmd(),
		mcpcmd.New(ctx).Cmd(),
		setupcmd.New(ctx).Cmd(),
	)

	return root
}

// lookup prints the path for name, or reports the miss on stderr.
// A miss is not a failure.
func lookup(cmd *cobra.Command, ctx *shared.Context, name string) error {
	svc, err := service.New(ctx.Home)
	if err != nil {
		return err
	}
	defer svc.Close()

	path, ok := svc.Lookup(name)
	if !ok {
		fmt.Fprintln(cmd.ErrOrStderr(), notFoundMessage)
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func genCompletion(root *cobra.Command, w io.Writer, shell string) error {
	switch shell {
	case "bash":
		return root.GenBashCompletionV2(w, true)
	case "zsh":
		return root.GenZshCompletion(w)
	case "fish":
		return root.GenFishCompletion(w, true)
	case "powershell":
		return root.GenPowerShellCompletionWithDesc(w)
	default:
		return fmt.Errorf("unsupported shell %q (want one of: %s)", shell, strings.Join(supportedShells, ", "))
	}
}

// installLogger configures slog from the home's config.yaml. Config errors
// are left for service.New to report; logging falls back to the default level.
func installLogger(w io.Writer, ctx *shared.Context) {
	level := config.Default().LogLevel
	if home, _, err := ctx.ResolveHome(); err == nil {
		if cfg, err := config.Load(filepath.Join(home, config.FileName)); err == nil {
			level = cfg.LogLevel
		}
	}
	logging.Install(w, level)
}
