package main

import (
	"context"
	"fmt"

	"github.com/meltosdev/meltos/internal/progress"
	"github.com/meltosdev/meltos/internal/termcolor"
	"github.com/meltosdev/meltos/internal/tvc"
)

func runPush(args []string, _ *termcolor.Writer) int {
	repo := openRepo(repoRoot())
	branch, code := currentBranch(repo)
	if code != 0 {
		return code
	}

	remote, err := newHTTPRemote()
	if err != nil {
		fmt.Printf("meltosctl: push: %v\n", err)
		return 1
	}

	spinner := progress.New(fmt.Sprintf("pushing '%s' to %s/%s", branch, remote.serverURL, remote.roomId))
	spinner.Start()
	err = tvc.Push(context.Background(), repo, branch, remote)
	spinner.Stop()
	if err != nil {
		fmt.Printf("meltosctl: push: %v\n", err)
		return 1
	}
	fmt.Printf("pushed '%s' to %s/%s\n", branch, remote.serverURL, remote.roomId)
	return 0
}

func runFetch(args []string, _ *termcolor.Writer) int {
	repo := openRepo(repoRoot())

	remote, err := newHTTPRemote()
	if err != nil {
		fmt.Printf("meltosctl: fetch: %v\n", err)
		return 1
	}

	spinner := progress.New(fmt.Sprintf("fetching from %s/%s", remote.serverURL, remote.roomId))
	spinner.Start()
	err = tvc.Fetch(context.Background(), repo, remote)
	spinner.Stop()
	if err != nil {
		fmt.Printf("meltosctl: fetch: %v\n", err)
		return 1
	}
	fmt.Printf("fetched from %s/%s\n", remote.serverURL, remote.roomId)
	return 0
}
