package main

import (
	"fmt"

	"github.com/meltosdev/meltos/internal/tvc"
)

func runInit(args []string) int {
	repo := openRepo(repoRoot())

	hash, err := tvc.Init(repo, tvc.Owner)
	if err != nil {
		fmt.Printf("meltosctl: init: %v\n", err)
		return 1
	}

	fmt.Printf("initialized empty meltos repository, owner@%s\n", hash.String())
	return 0
}
