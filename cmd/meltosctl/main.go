// Package main is the entry point for the meltosctl local repository CLI.
package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/meltosdev/meltos/internal/cli"
	"github.com/meltosdev/meltos/internal/termcolor"
)

// Build-time variables set via -ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	args := os.Args[1:]

	for _, a := range args {
		if a == "--version" {
			printVersion()
			os.Exit(0)
		}
	}

	mode := termcolor.ColorAuto
	for len(args) > 0 {
		if args[0] == "--no-color" {
			mode = termcolor.ColorNever
		} else if v, ok := strings.CutPrefix(args[0], "--color="); ok {
			m, err := termcolor.ParseColorMode(v)
			if err != nil {
				fmt.Fprintf(os.Stderr, "meltosctl: %v\n", err)
				os.Exit(2)
			}
			mode = m
		} else {
			break
		}
		args = args[1:]
	}

	cw := termcolor.NewWriter(os.Stdout, mode)

	app := cli.NewApp("meltosctl", version)
	app.Stderr = os.Stderr

	app.Register(&cli.Command{
		Name:    "init",
		Summary: "Create an empty meltos repository",
		Usage:   "meltosctl init",
		Run:     func(args []string) int { return runInit(args) },
	})

	app.Register(&cli.Command{
		Name:    "stage",
		Summary: "Stage workspace changes for the next commit",
		Usage:   "meltosctl stage [path]",
		Examples: []string{
			"meltosctl stage",
			"meltosctl stage src/main.go",
		},
		Run: func(args []string) int { return runStage(args, cw) },
	})

	app.Register(&cli.Command{
		Name:    "unstage",
		Summary: "Remove staged changes",
		Usage:   "meltosctl unstage [path]",
		Examples: []string{
			"meltosctl unstage",
			"meltosctl unstage src/main.go",
		},
		Run: func(args []string) int { return runUnstage(args, cw) },
	})

	app.Register(&cli.Command{
		Name:    "commit",
		Summary: "Commit staged changes",
		Usage:   "meltosctl commit <message>",
		Examples: []string{
			"meltosctl commit fix the parser",
		},
		Run: func(args []string) int { return runCommit(args, cw) },
	})

	app.Register(&cli.Command{
		Name:    "checkout",
		Summary: "Switch the working branch",
		Usage:   "meltosctl checkout <branch>",
		Run:     func(args []string) int { return runCheckout(args, cw) },
	})

	app.Register(&cli.Command{
		Name:    "branch",
		Summary: "List branches, or create one from another",
		Usage:   "meltosctl branch [<old> <new>]",
		Examples: []string{
			"meltosctl branch",
			"meltosctl branch main feature",
		},
		Run: func(args []string) int { return runBranch(args, cw) },
	})

	app.Register(&cli.Command{
		Name:    "merge",
		Summary: "Merge a branch into the current one",
		Usage:   "meltosctl merge <source>",
		Run:     func(args []string) int { return runMerge(args, cw) },
	})

	app.Register(&cli.Command{
		Name:    "status",
		Summary: "Show staged changes",
		Usage:   "meltosctl status",
		Run:     func(args []string) int { return runStatus(args, cw) },
	})

	app.Register(&cli.Command{
		Name:    "watch",
		Summary: "Watch the workspace and auto-stage changes",
		Usage:   "meltosctl watch",
		Run:     func(args []string) int { return runWatch(args, cw) },
	})

	app.Register(&cli.Command{
		Name:    "push",
		Summary: "Push local commits to a room",
		Usage:   "meltosctl push",
		Examples: []string{
			"MELTOS_SERVER=http://localhost:8080 MELTOS_ROOM=r1 MELTOS_SESSION=s1 meltosctl push",
		},
		Run: func(args []string) int { return runPush(args, cw) },
	})

	app.Register(&cli.Command{
		Name:    "fetch",
		Summary: "Fetch remote-mirror refs from a room",
		Usage:   "meltosctl fetch",
		Run:     func(args []string) int { return runFetch(args, cw) },
	})

	app.Register(&cli.Command{
		Name:    "version",
		Summary: "Show version information",
		Usage:   "meltosctl version",
		Run:     func([]string) int { printVersion(); return 0 },
	})

	app.Register(&cli.Command{
		Name:    "update",
		Summary: "Check for and install meltosctl updates",
		Usage:   "meltosctl update [--check]",
		Run:     func(args []string) int { return runUpdate(args, cw) },
	})

	os.Exit(app.Run(args, cw))
}

func printVersion() {
	fmt.Printf("meltosctl %s\n", version)
	fmt.Printf("  commit:     %s\n", commit)
	fmt.Printf("  go version: %s\n", runtime.Version())
	fmt.Printf("  platform:   %s/%s\n", runtime.GOOS, runtime.GOARCH)
}
