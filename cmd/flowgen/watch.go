package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/flowgen/internal/config"
	"github.com/standardbeagle/flowgen/internal/debug"
	"github.com/standardbeagle/flowgen/internal/parser"
)

func watchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "out-dir",
			Aliases: []string{"o"},
			Usage:   "Directory for generated JSON files",
			Value:   "flowcharts",
		},
		&cli.IntFlag{
			Name:  "debounce",
			Usage: "Milliseconds to wait after the last change before regenerating",
		},
	}
}

func watchCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	outDir := c.String("out-dir")
	if cfg.Output.Dir != "" && !c.IsSet("out-dir") {
		outDir = cfg.Output.Dir
	}
	debounce := time.Duration(cfg.Watch.DebounceMs) * time.Millisecond
	if c.Int("debounce") > 0 {
		debounce = time.Duration(c.Int("debounce")) * time.Millisecond
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watchTree(watcher, cfg.Project.Root); err != nil {
		return err
	}
	fmt.Printf("Watching %s\n", cfg.Project.Root)

	return watchLoop(ctx, watcher, cfg, outDir, debounce)
}

// watchTree registers every directory under root with the watcher; fsnotify
// does not recurse on its own.
func watchTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if name == ".git" || name == "node_modules" || name == "target" {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

// watchLoop coalesces change bursts with a debounce timer, then regenerates
// the dirty files.
func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, cfg *config.Config, outDir string, debounce time.Duration) error {
	dirty := make(map[string]struct{})
	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
				if event.Op&fsnotify.Create != 0 {
					if err := watcher.Add(event.Name); err != nil {
						debug.LogWatch("watch %s: %v", event.Name, err)
					}
				}
				continue
			}
			if _, ok := parser.LanguageForPath(event.Name); !ok {
				continue
			}
			debug.LogWatch("dirty: %s (%s)", event.Name, event.Op)
			dirty[event.Name] = struct{}{}
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			debug.LogWatch("watcher error: %v", err)

		case <-timer.C:
			for path := range dirty {
				delete(dirty, path)
				rel, err := filepath.Rel(cfg.Project.Root, path)
				if err != nil {
					rel = filepath.Base(path)
				}
				if err := processFile(cfg.Project.Root, rel, outDir, cfg); err != nil {
					fmt.Fprintf(os.Stderr, "regenerate %s: %v\n", rel, err)
					continue
				}
				fmt.Printf("Regenerated %s\n", rel)
			}
		}
	}
}
