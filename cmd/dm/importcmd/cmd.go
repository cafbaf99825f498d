// Package importcmd implements the `dm import` command.
package importcmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-ports/dm/cmd/dm/shared"
	"github.com/go-ports/dm/internal/importer"
	"github.com/go-ports/dm/internal/service"
)

// Command implements `dm import`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command

	selector string
}

// New creates the import command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "import <file|->",
		Short: "Import bookmarks from a JSON file",
		Long: `Imports name → path bookmarks from a JSON document ("-" reads stdin).

The document may be a dm data file, an object mapping names to paths, or an
array of {"name", "path"} objects. Use --select to point at the relevant part
of a larger document with a JSONPath expression. Imported names replace
existing bookmarks with the same name.`,
		Example: "  dm import backup.json\n  dm import other-tool.json --select '$.config.bookmarks'",
		Args:    cobra.ExactArgs(1),
		RunE:    c.run,
	}
	c.cmd.Flags().StringVar(&c.selector, "select", "", "JSONPath expression selecting the bookmarks")
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, args []string) error {
	data, err := readInput(cmd.InOrStdin(), args[0])
	if err != nil {
		return err
	}

	entries, err := importer.Parse(data, c.selector)
	if err != nil {
		return err
	}

	svc, err := service.New(c.ctx.Home)
	if err != nil {
		return err
	}
	defer svc.Close()

	n, err := svc.Import(entries)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d bookmarks\n", n)
	return nil
}

func readInput(stdin io.Reader, name string) ([]byte, error) {
	if name == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("import: read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	return data, nil
}
