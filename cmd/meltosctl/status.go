package main

import (
	"fmt"
	"sort"

	"github.com/pterm/pterm"

	"github.com/meltosdev/meltos/internal/termcolor"
	"github.com/meltosdev/meltos/internal/tvc"
)

func runStatus(args []string, cw *termcolor.Writer) int {
	repo := openRepo(repoRoot())
	branch, code := currentBranch(repo)
	if code != 0 {
		return code
	}

	staged, err := repo.Staged()
	if err != nil {
		fmt.Printf("meltosctl: status: %v\n", err)
		return 1
	}

	fmt.Printf("On branch %s\n", branch)

	if len(staged) == 0 {
		fmt.Println("nothing staged")
		return 0
	}

	paths := make([]string, 0, len(staged))
	for p := range staged {
		paths = append(paths, p.String())
	}
	sort.Strings(paths)

	if !cw.Enabled() {
		for _, p := range paths {
			fmt.Printf("  %s\n", p)
		}
		return 0
	}

	table := pterm.TableData{{"", "path"}}
	for _, p := range paths {
		hash := staged[tvc.NewFilePath(p)]
		obj, _, err := repo.ReadObj(hash)
		if err != nil {
			table = append(table, []string{"?", p + ": " + err.Error()})
			continue
		}
		if _, err := obj.AsDelete(); err == nil {
			table = append(table, []string{"deleted", p})
			continue
		}
		table = append(table, []string{"staged", p})
	}

	pterm.DefaultTable.WithHasHeader().WithData(table).Render()
	return 0
}
