package main

import (
	"fmt"

	"github.com/meltosdev/meltos/internal/termcolor"
	"github.com/meltosdev/meltos/internal/tvc"
)

func runStage(args []string, _ *termcolor.Writer) int {
	repo := openRepo(repoRoot())
	branch, code := currentBranch(repo)
	if code != 0 {
		return code
	}

	scope := tvc.FilePath("")
	if len(args) > 0 {
		scope = tvc.NewFilePath(args[0])
	}

	if err := tvc.Stage(repo, branch, scope); err != nil {
		fmt.Printf("meltosctl: stage: %v\n", err)
		return 1
	}
	return 0
}

func runUnstage(args []string, _ *termcolor.Writer) int {
	repo := openRepo(repoRoot())

	if len(args) == 0 {
		if err := tvc.UnstageAll(repo); err != nil {
			fmt.Printf("meltosctl: unstage: %v\n", err)
			return 1
		}
		return 0
	}

	if err := tvc.Unstage(repo, tvc.NewFilePath(args[0])); err != nil {
		fmt.Printf("meltosctl: unstage: %v\n", err)
		return 1
	}
	return 0
}
