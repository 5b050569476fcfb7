package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/meltosdev/meltos/internal/termcolor"
	"github.com/meltosdev/meltos/internal/tvc"
)

const watchDebounce = 100 * time.Millisecond

// runWatch watches workspace/ for on-disk edits and auto-stages them,
// feeding Stage's changed-files notice path the same way a manual
// `meltosctl stage` would. Grounded on the teacher's
// internal/server/watcher.go watchLoop/debounce pattern, generalized
// from .git ref-change broadcasting to workspace-content auto-staging.
func runWatch(args []string, _ *termcolor.Writer) int {
	root := repoRoot()
	repo := openRepo(root)
	branch, code := currentBranch(repo)
	if code != 0 {
		return code
	}

	dir := filepath.Join(root, "workspace")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		fmt.Printf("meltosctl: watch: %v\n", err)
		return 1
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Printf("meltosctl: watch: %v\n", err)
		return 1
	}
	defer watcher.Close()

	if err := walkAndWatch(watcher, dir); err != nil {
		fmt.Printf("meltosctl: watch: %v\n", err)
		return 1
	}

	fmt.Printf("watching %s for changes (ctrl-c to stop)\n", dir)

	var debounceTimer *time.Timer
	stage := func() {
		if err := tvc.Stage(repo, branch, tvc.FilePath("")); err != nil {
			if !errors.Is(err, &tvc.Error{Kind: tvc.ErrChangedFileNotExits}) {
				slog.Error("auto-stage failed", "err", err)
			}
			return
		}
		slog.Info("auto-staged workspace change")
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return 0
			}
			if shouldIgnoreWatchEvent(event) {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(watchDebounce, stage)

		case err, ok := <-watcher.Errors:
			if !ok {
				return 0
			}
			slog.Error("watcher error", "err", err)
		}
	}
}

func walkAndWatch(watcher *fsnotify.Watcher, dir string) error {
	return filepath.Walk(dir, func(path string, fi os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if fi.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}

func shouldIgnoreWatchEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return true
	}
	return strings.HasSuffix(event.Name, ".lock")
}
