package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/checkmate-ci/covcheck/internal/discover"
	covlog "github.com/checkmate-ci/covcheck/internal/log"
	"github.com/checkmate-ci/covcheck/sdk"
)

func cmdDiscover() *cobra.Command {
	c := &cobra.Command{
		Use:   "discover",
		Short: "List the test files matched by the given patterns",
		Long: `
covcheck discover runs only the discovery step and prints the matched test
files, one per line, followed by a count. Useful to debug --test-paths
patterns before wiring them into a workflow.
`,
		Run: discoverCmd(),
	}

	flags := c.Flags()

	flags.String("test-paths", "tests/,test/,**/test_*.py,**/tests.py", "Comma-separated list of test directories, files or glob patterns")
	viper.BindPFlag("discover_test_paths", flags.Lookup("test-paths"))

	flags.String("working-directory", "", "Workspace root (default: current directory)")
	viper.BindPFlag("discover_working_directory", flags.Lookup("working-directory"))

	return c
}

func discoverCmd() func(cmd *cobra.Command, args []string) {
	return func(cmd *cobra.Command, args []string) {
		ctx := context.WithValue(context.Background(), covlog.Command, "discover")

		workdir := viper.GetString("discover_working_directory")
		if workdir == "" {
			var err error
			workdir, err = os.Getwd()
			if err != nil {
				sdk.Exit("cannot get current directory: %v\n", err)
			}
		}

		patterns := discover.SplitList(viper.GetString("discover_test_paths"))
		files := discover.TestFiles(ctx, afero.NewOsFs(), workdir, patterns)
		for _, f := range files {
			fmt.Println(f)
		}
		fmt.Printf("found %d test files\n", len(files))
	}
}
