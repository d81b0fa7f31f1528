// Command lscript loads, formats and runs line scripts.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/lscript/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
