package main

import (
	"fmt"
	"os"

	"github.com/meltosdev/meltos/internal/tvc"
)

// repoRoot returns MELTOS_DIR if set, else the current directory —
// mirroring the teacher's GIT_DIR-or-dot convention
// (cmd/gitcli/main.go).
func repoRoot() string {
	if dir := os.Getenv("MELTOS_DIR"); dir != "" {
		return dir
	}
	return "."
}

// openRepo anchors a Repository at root via OSFileSystem. It does not
// require Init to have already run; commands that do require it check
// for an existing working branch themselves.
func openRepo(root string) *tvc.Repository {
	return tvc.OpenRepository(tvc.NewOSFileSystem(root))
}

// currentBranch reads the repository's working branch, defaulting to
// tvc.Owner if none has ever been recorded.
func currentBranch(repo *tvc.Repository) (tvc.BranchName, int) {
	branch, err := repo.ReadWorking()
	if err != nil {
		fmt.Fprintf(os.Stderr, "meltosctl: %v\n", err)
		return "", 1
	}
	return branch, 0
}
