// Package agents registers the dm MCP server with supported coding agents
// (Claude Code, Cursor, Codex, OpenCode).
package agents

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

// ServerName is the key dm is registered under in agent config files.
const ServerName = "dm"

// ErrUnknownAgent is returned for an agent name not in Names.
var ErrUnknownAgent = errors.New("unknown agent")

// Supported agents.
const (
	ClaudeCode = "claude-code"
	Cursor     = "cursor"
	Codex      = "codex"
	OpenCode   = "opencode"
)

// Names lists the supported agents in display order.
var Names = []string{ClaudeCode, Cursor, Codex, OpenCode}

// Options controls where and how the server entry is written.
type Options struct {
	// Project writes to the project-scoped config under Dir instead of the
	// user-wide one. Codex has no project scope.
	Project bool
	// Dir is the project directory used when Project is set.
	Dir string
	// ConfigFile, when set, overrides the resolved config file path.
	ConfigFile string
	// Home is passed to `dm --home` when non-empty so the agent sees the
	// same bookmarks as the caller.
	Home string
}

// Result describes what Install or Uninstall did.
type Result struct {
	Changed bool
	Path    string
}

// Message renders r for the CLI.
func (r Result) Message(installing bool) string {
	switch {
	case installing && r.Changed:
		return "Installed dm MCP server in " + r.Path
	case installing:
		return "Already installed in " + r.Path
	case r.Changed:
		return "Removed dm MCP server from " + r.Path
	default:
		return "Nothing to remove in " + r.Path
	}
}

// ConfigPath returns the config file that holds MCP servers for agent.
func ConfigPath(agent string, opts Options) (string, error) {
	if !slices.Contains(Names, agent) {
		return "", fmt.Errorf("%w %q (want one of: %s)", ErrUnknownAgent, agent, strings.Join(Names, ", "))
	}
	if opts.ConfigFile != "" {
		return opts.ConfigFile, nil
	}
	if opts.Project {
		dir := opts.Dir
		if dir == "" {
			cwd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			dir = cwd
		}
		switch agent {
		case ClaudeCode:
			return filepath.Join(dir, ".mcp.json"), nil
		case Cursor:
			return filepath.Join(dir, ".cursor", "mcp.json"), nil
		case OpenCode:
			return filepath.Join(dir, "opencode.json"), nil
		default:
			return "", fmt.Errorf("agents: %s has no project-scoped config", agent)
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	switch agent {
	case ClaudeCode:
		return filepath.Join(home, ".claude.json"), nil
	case Cursor:
		return filepath.Join(home, ".cursor", "mcp.json"), nil
	case Codex:
		return filepath.Join(home, ".codex", "config.toml"), nil
	default:
		return filepath.Join(home, ".config", "opencode", "opencode.json"), nil
	}
}

// Install adds the dm server entry to agent's config. An existing entry is
// left untouched.
func Install(agent string, opts Options) (Result, error) {
	path, err := ConfigPath(agent, opts)
	if err != nil {
		return Result{}, err
	}
	args := serverArgs(opts.Home)

	var changed bool
	switch agent {
	case Codex:
		changed, err = installTOML(path, args)
	case OpenCode:
		entry := map[string]any{
			"type":    "local",
			"command": append([]any{ServerName}, args...),
		}
		changed, err = installJSON(path, "mcp", entry)
	default:
		entry := map[string]any{
			"type":    "stdio",
			"command": ServerName,
			"args":    args,
		}
		changed, err = installJSON(path, "mcpServers", entry)
	}
	if err != nil {
		return Result{}, fmt.Errorf("agents.Install %s: %w", agent, err)
	}
	return Result{Changed: changed, Path: path}, nil
}

// Uninstall removes the dm server entry from agent's config.
func Uninstall(agent string, opts Options) (Result, error) {
	path, err := ConfigPath(agent, opts)
	if err != nil {
		return Result{}, err
	}

	var changed bool
	switch agent {
	case Codex:
		changed, err = uninstallTOML(path)
	case OpenCode:
		changed, err = uninstallJSON(path, "mcp")
	default:
		changed, err = uninstallJSON(path, "mcpServers")
	}
	if err != nil {
		return Result{}, fmt.Errorf("agents.Uninstall %s: %w", agent, err)
	}
	return Result{Changed: changed, Path: path}, nil
}

func serverArgs(home string) []any {
	if home == "" {
		return []any{"mcp"}
	}
	return []any{"--home", home, "mcp"}
}

// ---------------------------------------------------------------------------
// JSON configs (Claude Code, Cursor, OpenCode)
// ---------------------------------------------------------------------------

// readJSON returns the object stored at path, or an empty one if the file
// does not exist. A file that is not a JSON object is an error so that an
// agent's config is never clobbered.
func readJSON(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return make(map[string]any), nil
	}
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if m == nil {
		m = make(map[string]any)
	}
	return m, nil
}

func writeJSON(path string, data map[string]any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return os.WriteFile(path, b, 0o644) // #nosec G306 -- MCP server entries are not secrets
}

func installJSON(path, section string, entry map[string]any) (bool, error) {
	data, err := readJSON(path)
	if err != nil {
		return false, err
	}
	servers, _ := data[section].(map[string]any)
	if servers == nil {
		servers = make(map[string]any)
		data[section] = servers
	}
	if _, exists := servers[ServerName]; exists {
		return false, nil
	}
	servers[ServerName] = entry
	return true, writeJSON(path, data)
}

func uninstallJSON(path, section string) (bool, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return false, nil
	}
	data, err := readJSON(path)
	if err != nil {
		return false, err
	}
	servers, _ := data[section].(map[string]any)
	if _, exists := servers[ServerName]; !exists {
		return false, nil
	}
	delete(servers, ServerName)
	if len(servers) == 0 {
		delete(data, section)
	}
	if len(data) == 0 {
		return true, os.Remove(path)
	}
	return true, writeJSON(path, data)
}

// ---------------------------------------------------------------------------
// TOML config (Codex)
//
// The file is edited as text so the user's comments and layout survive; the
// result is decoded before it is written.
// ---------------------------------------------------------------------------

const tomlHeader = "[mcp_servers." + ServerName + "]"

type codexConfig struct {
	MCPServers map[string]struct {
		Command string   `toml:"command"`
		Args    []string `toml:"args"`
	} `toml:"mcp_servers"`
}

func decodeCodex(content string) (codexConfig, error) {
	var cfg codexConfig
	if _, err := toml.Decode(content, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func installTOML(path string, args []any) (bool, error) {
	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return false, err
	}
	cfg, err := decodeCodex(string(existing))
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", path, err)
	}
	if _, exists := cfg.MCPServers[ServerName]; exists {
		return false, nil
	}

	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = fmt.Sprintf("%q", a)
	}
	section := fmt.Sprintf("%s\ncommand = %q\nargs = [%s]\n", tomlHeader, ServerName, strings.Join(quoted, ", "))

	content := strings.TrimRight(string(existing), "\n")
	if content != "" {
		content += "\n\n"
	}
	content += section
	if _, err := decodeCodex(content); err != nil {
		return false, fmt.Errorf("update %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, err
	}
	return true, os.WriteFile(path, []byte(content), 0o644) // #nosec G306 -- MCP server entries are not secrets
}

func uninstallTOML(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	cfg, err := decodeCodex(string(data))
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", path, err)
	}
	if _, exists := cfg.MCPServers[ServerName]; !exists {
		return false, nil
	}

	// Drop the dm table header and its keys up to the next table or EOF.
	lines := strings.Split(string(data), "\n")
	kept := make([]string, 0, len(lines))
	inSection := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == tomlHeader {
			inSection = true
			continue
		}
		if inSection && strings.HasPrefix(trimmed, "[") {
			inSection = false
		}
		if !inSection {
			kept = append(kept, line)
		}
	}
	cleaned := strings.TrimRight(strings.Join(kept, "\n"), "\n")
	if after, err := decodeCodex(cleaned); err != nil {
		return false, fmt.Errorf("update %s: %w", path, err)
	} else if _, still := after.MCPServers[ServerName]; still {
		return false, fmt.Errorf("update %s: %s is not declared as a %s table", path, ServerName, tomlHeader)
	}
	if strings.TrimSpace(cleaned) == "" {
		return true, os.Remove(path)
	}
	return true, os.WriteFile(path, []byte(cleaned+"\n"), 0o644) // #nosec G306 -- MCP server entries are not secrets
}
