package shared

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/go-ports/dm/internal/service"
)

// CompleteNames provides dynamic completion of bookmark names for the first
// positional argument. Errors are swallowed; completion just offers nothing.
// A home that does not exist yet offers nothing and is not created.
func CompleteNames(ctx *Context) cobra.CompletionFunc {
	return func(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		home, _, err := ctx.ResolveHome()
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		if info, err := os.Stat(home); err != nil || !info.IsDir() {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		svc, err := service.New(home)
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		defer svc.Close()

		var out []string
		for _, b := range svc.List() {
			if strings.HasPrefix(b.Name, toComplete) {
				out = append(out, b.Name+"\t"+b.Path)
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
}
