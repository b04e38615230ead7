package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/flowgen/internal/config"
	"github.com/standardbeagle/flowgen/internal/debug"
	"github.com/standardbeagle/flowgen/internal/lang"
	"github.com/standardbeagle/flowgen/internal/parser"
)

func batchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "out-dir",
			Aliases: []string{"o"},
			Usage:   "Directory for generated JSON files",
			Value:   "flowcharts",
		},
		&cli.IntFlag{
			Name:    "jobs",
			Aliases: []string{"j"},
			Usage:   "Number of files processed concurrently",
		},
	}
}

func batchCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	root := cfg.Project.Root
	outDir := c.String("out-dir")
	if cfg.Output.Dir != "" && !c.IsSet("out-dir") {
		outDir = cfg.Output.Dir
	}
	jobs := cfg.Batch.MaxGoroutines
	if c.Int("jobs") > 0 {
		jobs = c.Int("jobs")
	}

	files, err := collectFiles(root, cfg.Batch)
	if err != nil {
		return err
	}
	debug.LogBuild("batch: %d files under %s", len(files), root)

	var g errgroup.Group
	g.SetLimit(jobs)
	for _, rel := range files {
		rel := rel
		g.Go(func() error {
			return processFile(root, rel, outDir, cfg)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	fmt.Printf("Generated flowcharts for %d files into %s\n", len(files), outDir)
	return nil
}

// collectFiles resolves the include/exclude globs to supported source files,
// relative to root.
func collectFiles(root string, batch config.Batch) ([]string, error) {
	fsys := os.DirFS(root)
	seen := make(map[string]struct{})
	var files []string

	for _, pattern := range batch.Include {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("bad include pattern %q: %w", pattern, err)
		}
	matching:
		for _, m := range matches {
			if _, dup := seen[m]; dup {
				continue
			}
			if info, err := fs.Stat(fsys, m); err != nil || info.IsDir() {
				continue
			}
			if _, ok := parser.LanguageForPath(m); !ok {
				continue
			}
			for _, ex := range batch.Exclude {
				if matched, _ := doublestar.Match(ex, m); matched {
					continue matching
				}
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	return files, nil
}

// processFile generates one flowchart per callable in the file, written as
// <out-dir>/<rel-path>.<function>.json.
func processFile(root, rel, outDir string, cfg *config.Config) error {
	path := filepath.Join(root, rel)
	language, src, err := readSource(path)
	if err != nil {
		return err
	}

	names, err := lang.ListFunctions(language, src)
	if err != nil {
		return err
	}

	for _, display := range names {
		name := strings.Fields(display)[0]
		result, err := lang.Generate(language, src, lang.Options{
			Function:   name,
			LabelLimit: cfg.Output.LabelLimit,
		})
		if err != nil {
			return err
		}
		if !result.Found {
			continue
		}

		target := filepath.Join(outDir, rel+"."+sanitize(name)+".json")
		if err := writeIR(target, result.IR, cfg.Output.Pretty); err != nil {
			return err
		}
	}
	return nil
}

// sanitize keeps generated filenames filesystem-safe.
func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '<', '>', '"', '|', '?', '*':
			return '_'
		}
		return r
	}, name)
}
