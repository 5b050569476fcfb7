package main

import (
	"fmt"

	"github.com/meltosdev/meltos/internal/termcolor"
	"github.com/meltosdev/meltos/internal/tvc"
)

func runMerge(args []string, _ *termcolor.Writer) int {
	if len(args) == 0 {
		fmt.Println("meltosctl: merge: source branch required")
		return 1
	}
	repo := openRepo(repoRoot())
	dist, code := currentBranch(repo)
	if code != 0 {
		return code
	}

	status, err := tvc.Merge(repo, tvc.BranchName(args[0]), dist)
	if err != nil {
		fmt.Printf("meltosctl: merge: %v\n", err)
		return 1
	}

	switch status {
	case tvc.MergedFastDist:
		fmt.Println("already up to date")
	case tvc.MergedFastSource:
		fmt.Printf("fast-forwarded '%s' to '%s'\n", dist, args[0])
	case tvc.MergedNormally:
		fmt.Printf("merged '%s' into '%s'\n", args[0], dist)
	case tvc.MergedConflicted:
		// Reserved: Merge never returns this today (source always wins on
		// an overlapping path), but the case is named here so enabling
		// real conflict detection later only needs a Merge change, not a
		// CLI change too.
		fmt.Printf("merge of '%s' into '%s' has conflicts\n", args[0], dist)
	}
	return 0
}
