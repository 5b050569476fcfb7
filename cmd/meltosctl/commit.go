package main

import (
	"fmt"
	"strings"

	"github.com/meltosdev/meltos/internal/termcolor"
	"github.com/meltosdev/meltos/internal/tvc"
)

func runCommit(args []string, _ *termcolor.Writer) int {
	repo := openRepo(repoRoot())
	branch, code := currentBranch(repo)
	if code != 0 {
		return code
	}

	text := strings.Join(args, " ")
	if text == "" {
		fmt.Println("meltosctl: commit: message required")
		return 1
	}

	hash, err := tvc.Commit(repo, branch, text)
	if err != nil {
		fmt.Printf("meltosctl: commit: %v\n", err)
		return 1
	}

	fmt.Printf("[%s %s] %s\n", branch, hash.String()[:8], text)
	return 0
}
