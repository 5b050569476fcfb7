package main

import (
	"fmt"

	"github.com/meltosdev/meltos/internal/termcolor"
	"github.com/meltosdev/meltos/internal/tvc"
)

func runCheckout(args []string, _ *termcolor.Writer) int {
	if len(args) == 0 {
		fmt.Println("meltosctl: checkout: branch name required")
		return 1
	}
	repo := openRepo(repoRoot())

	status, err := tvc.Checkout(repo, tvc.BranchName(args[0]))
	if err != nil {
		fmt.Printf("meltosctl: checkout: %v\n", err)
		return 1
	}

	switch status {
	case tvc.CheckoutAlready:
		fmt.Printf("already on '%s'\n", args[0])
	case tvc.CheckoutSwitched:
		fmt.Printf("switched to branch '%s'\n", args[0])
	case tvc.CheckoutNewBranch:
		fmt.Printf("switched to a new branch '%s'\n", args[0])
	}
	return 0
}
