package config

import (
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	"github.com/standardbeagle/flowgen/internal/errors"
)

// LoadKDL reads .flowgen.kdl from projectRoot. A missing file returns
// (nil, nil) so the caller can fall back to other sources.
func LoadKDL(projectRoot string) (*Config, error) {
	path := filepath.Join(projectRoot, ".flowgen.kdl")
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewConfigError("file", path, err)
	}

	cfg, err := parseKDL(string(content))
	if err != nil {
		return nil, errors.NewConfigError("file", path, err)
	}
	return cfg, nil
}

func parseKDL(content string) (*Config, error) {
	cfg := Default()

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, err
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children {
				assignSimpleString(cn, "root", func(v string) { cfg.Project.Root = v })
				assignSimpleString(cn, "name", func(v string) { cfg.Project.Name = v })
			}
		case "output":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "label_limit":
					if v, ok := firstIntArg(cn); ok {
						cfg.Output.LabelLimit = v
					}
				case "pretty":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Output.Pretty = b
					}
				case "dir":
					if s, ok := firstStringArg(cn); ok {
						cfg.Output.Dir = s
					}
				}
			}
		case "batch":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "include":
					if patterns := collectStringArgs(cn); len(patterns) > 0 {
						cfg.Batch.Include = patterns
					}
				case "exclude":
					if patterns := collectStringArgs(cn); len(patterns) > 0 {
						cfg.Batch.Exclude = patterns
					}
				case "max_goroutines":
					if v, ok := firstIntArg(cn); ok {
						cfg.Batch.MaxGoroutines = v
					}
				}
			}
		case "watch":
			for _, cn := range n.Children {
				if nodeName(cn) == "debounce_ms" {
					if v, ok := firstIntArg(cn); ok {
						cfg.Watch.DebounceMs = v
					}
				}
			}
		case "cache":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "enabled":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Cache.Enabled = b
					}
				case "max_entries":
					if v, ok := firstIntArg(cn); ok {
						cfg.Cache.MaxEntries = v
					}
				}
			}
		}
	}

	return cfg, nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

// collectStringArgs gathers strings from inline arguments and from child
// nodes, so both `include "a" "b"` and a children block work.
func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	for _, cn := range n.Children {
		if name := nodeName(cn); name != "" {
			out = append(out, name)
		}
	}
	return out
}

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}
