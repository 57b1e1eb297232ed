// Command pagebuilder edits page projects and generates single-file
// components from them.
package main

import (
	"fmt"
	"os"

	"github.com/professor-lee/FalseClose/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
