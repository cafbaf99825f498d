// Package shared holds the context passed to all CLI commands.
package shared

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/go-ports/dm/internal/config"
)

// Context carries global CLI state (flags set on the root command).
type Context struct {
	// Home overrides the dm home directory.
	// When empty, resolution falls through to DM_HOME env var → persisted config → ~/.dm.
	Home string
}

// ResolveHome returns the effective home directory and where it came from.
// source is one of "flag", "env", "config", or "default".
func (c *Context) ResolveHome() (home, source string, err error) {
	if c.Home != "" {
		return c.Home, "flag", nil
	}
	return config.ResolveHome()
}

// NameColor returns the colour used for bookmark names written to w.
// Colour is only emitted when w is a terminal.
func NameColor(w io.Writer) *color.Color {
	c := color.New(color.FgCyan, color.Bold)
	if f, ok := w.(*os.File); !ok || !isatty.IsTerminal(f.Fd()) {
		c.DisableColor()
	}
	return c
}
