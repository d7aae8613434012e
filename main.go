package main

import (
	"github.com/checkmate-ci/covcheck/sdk"
)

func main() {
	cmd := cmdMain()
	cmd.AddCommand(cmdCheck())
	cmd.AddCommand(cmdParse())
	cmd.AddCommand(cmdDiscover())
	cmd.AddCommand(cmdVersion)

	if err := cmd.Execute(); err != nil {
		sdk.Exit("%v\n", err)
	}
}
