package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/flowgen/internal/config"
	"github.com/standardbeagle/flowgen/internal/debug"
	"github.com/standardbeagle/flowgen/internal/errors"
	"github.com/standardbeagle/flowgen/internal/lang"
	"github.com/standardbeagle/flowgen/internal/mcp"
	"github.com/standardbeagle/flowgen/internal/parser"
	"github.com/standardbeagle/flowgen/internal/types"
	"github.com/standardbeagle/flowgen/internal/version"
)

// loadConfigWithOverrides loads the project config and applies CLI flag
// overrides on top.
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	root := c.String("root")
	if root == "" {
		root = "."
	}
	cfg, err := config.Load(root)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", root, err)
	}

	if includeFlags := c.StringSlice("include"); len(includeFlags) > 0 {
		cfg.Batch.Include = includeFlags
	}
	if excludeFlags := c.StringSlice("exclude"); len(excludeFlags) > 0 {
		cfg.Batch.Exclude = append(cfg.Batch.Exclude, excludeFlags...)
	}
	if limit := c.Int("label-limit"); limit > 0 {
		cfg.Output.LabelLimit = limit
	}
	if c.Bool("pretty") {
		cfg.Output.Pretty = true
	}
	return cfg, nil
}

func main() {
	app := &cli.App{
		Name:                   "flowgen",
		Usage:                  "Flowchart generation from C++, Java, and Rust sources",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Project root directory (config lookup and batch scanning)",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Include files matching glob patterns (e.g., --include 'src/**/*.rs')",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Exclude files matching glob patterns (e.g., --exclude '**/generated/**')",
			},
			&cli.IntFlag{
				Name:  "label-limit",
				Usage: "Maximum node label length in characters",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Indent JSON output",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "generate",
				Aliases:   []string{"gen"},
				Usage:     "Generate a flowchart for one function in a source file",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "function",
						Aliases: []string{"f"},
						Usage:   "Function name to chart (exact match)",
					},
					&cli.IntFlag{
						Name:    "position",
						Aliases: []string{"p"},
						Usage:   "Byte offset inside the function to chart",
						Value:   -1,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write JSON to this file instead of stdout",
					},
					&cli.BoolFlag{
						Name:  "strict",
						Usage: "Exit non-zero when the selector matches nothing",
					},
				},
				Action: generateCommand,
			},
			{
				Name:      "list",
				Usage:     "List the functions in a source file",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Emit the list as JSON",
					},
				},
				Action: listCommand,
			},
			{
				Name:   "batch",
				Usage:  "Generate flowcharts for every function in every matching file",
				Flags:  batchFlags(),
				Action: batchCommand,
			},
			{
				Name:   "watch",
				Usage:  "Watch the project and regenerate flowcharts on change",
				Flags:  watchFlags(),
				Action: watchCommand,
			},
			{
				Name:   "serve",
				Usage:  "Serve flowchart generation over MCP on stdio",
				Action: serveCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func generateCommand(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: flowgen generate <file>")
	}
	path := c.Args().First()

	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	language, src, err := readSource(path)
	if err != nil {
		return err
	}

	opts := lang.Options{
		Function:   c.String("function"),
		LabelLimit: cfg.Output.LabelLimit,
	}
	if p := c.Int("position"); p >= 0 {
		pos := uint(p)
		opts.Position = &pos
	}

	result, err := lang.Generate(language, src, opts)
	if err != nil {
		return err
	}
	if !result.Found {
		debug.LogSelect("no match in %s for %q", path, opts.Function)
		if c.Bool("strict") {
			return errors.NewSelectError(opts.Function, result.Suggestions)
		}
	}

	return writeIR(c.String("output"), result.IR, cfg.Output.Pretty)
}

func listCommand(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: flowgen list <file>")
	}
	path := c.Args().First()

	language, src, err := readSource(path)
	if err != nil {
		return err
	}

	names, err := lang.ListFunctions(language, src)
	if err != nil {
		return err
	}

	if c.Bool("json") {
		out, err := json.MarshalIndent(names, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func serveCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return mcp.NewServer(cfg).Run(ctx)
}

// readSource resolves the file's language and reads its content.
func readSource(path string) (parser.Language, []byte, error) {
	language, ok := parser.LanguageForPath(path)
	if !ok {
		return "", nil, errors.NewFileError("detect", path,
			fmt.Errorf("unsupported file type %q", filepath.Ext(path)))
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return "", nil, errors.NewFileError("read", path, err)
	}
	return language, src, nil
}

// writeIR renders the IR as JSON to the given file, or stdout when path is
// empty.
func writeIR(path string, ir types.FlowchartIR, pretty bool) error {
	var out []byte
	var err error
	if pretty {
		out, err = json.MarshalIndent(ir, "", "  ")
	} else {
		out, err = json.Marshal(ir)
	}
	if err != nil {
		return err
	}

	if path == "" {
		fmt.Println(string(out))
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.NewFileError("mkdir", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, append(out, '\n'), 0o644); err != nil {
		return errors.NewFileError("write", path, err)
	}
	return nil
}
