package main

import (
	"fmt"
	"sort"

	"github.com/meltosdev/meltos/internal/termcolor"
	"github.com/meltosdev/meltos/internal/tvc"
)

func runBranch(args []string, cw *termcolor.Writer) int {
	repo := openRepo(repoRoot())

	if len(args) >= 2 {
		return runNewBranch(repo, args)
	}

	heads, err := repo.Branches()
	if err != nil {
		fmt.Printf("meltosctl: branch: %v\n", err)
		return 1
	}

	working, code := currentBranch(repo)
	if code != 0 {
		return code
	}

	names := make([]string, 0, len(heads))
	for name := range heads {
		names = append(names, name.String())
	}
	sort.Strings(names)

	for _, name := range names {
		if name == working.String() {
			fmt.Printf("* %s\n", cw.Green(name))
		} else {
			fmt.Printf("  %s\n", name)
		}
	}
	return 0
}

func runNewBranch(repo *tvc.Repository, args []string) int {
	if err := tvc.NewBranch(repo, tvc.BranchName(args[0]), tvc.BranchName(args[1])); err != nil {
		fmt.Printf("meltosctl: branch: %v\n", err)
		return 1
	}
	return 0
}
