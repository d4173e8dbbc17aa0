// Package scaffold embeds the starter files written by "critics init": a
// config file, an example persona catalog and the .mcp.json server entry.
package scaffold

import (
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

//go:embed files/*
var files embed.FS

// starters maps embedded files to their destination names.
var starters = []struct {
	src  string
	dest string
}{
	{"files/critics.yaml", ".critics.yaml"},
	{"files/personas.yaml", "personas.yaml"},
}

// mcpConfig represents the structure of a .mcp.json file.
type mcpConfig struct {
	MCPServers map[string]json.RawMessage `json:"mcpServers"`
}

// criticsMCPEntry is the MCP server configuration for the critics binary.
var criticsMCPEntry = json.RawMessage(`{
  "type": "stdio",
  "command": "critics",
  "args": ["mcp"]
}`)

// Install writes the starter files into dir and registers the MCP server in
// dir/.mcp.json. Existing files are kept unless force is set. Progress is
// reported to w.
func Install(dir string, force bool, w io.Writer) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolving directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return err
	}

	for _, s := range starters {
		dest := filepath.Join(abs, s.dest)
		if !force {
			if _, err := os.Stat(dest); err == nil {
				fmt.Fprintf(w, "  skipped %s (exists, use --force to overwrite)\n", dotRelative(abs, dest))
				continue
			}
		}

		data, err := files.ReadFile(s.src)
		if err != nil {
			return fmt.Errorf("reading embedded %s: %w", s.src, err)
		}
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", dest, err)
		}
		fmt.Fprintf(w, "  created %s\n", dotRelative(abs, dest))
	}

	return mergeMCPConfig(filepath.Join(abs, ".mcp.json"), force, w)
}

// mergeMCPConfig creates or merges the critics entry into .mcp.json.
func mergeMCPConfig(mcpPath string, force bool, w io.Writer) error {
	var cfg mcpConfig

	data, err := os.ReadFile(mcpPath)
	if err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("parsing %s: %w", mcpPath, err)
		}
	}

	if cfg.MCPServers == nil {
		cfg.MCPServers = make(map[string]json.RawMessage)
	}

	if _, exists := cfg.MCPServers["critics"]; exists && !force {
		fmt.Fprintf(w, "  skipped .mcp.json critics entry (exists, use --force to overwrite)\n")
		return nil
	}

	cfg.MCPServers["critics"] = criticsMCPEntry

	out, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling .mcp.json: %w", err)
	}
	if err := os.WriteFile(mcpPath, append(out, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", mcpPath, err)
	}

	action := "created"
	if data != nil {
		action = "updated"
	}
	fmt.Fprintf(w, "  %s .mcp.json with critics MCP server\n", action)
	return nil
}

// dotRelative returns a display path relative to base, prefixed with "./".
func dotRelative(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	return "./" + rel
}
