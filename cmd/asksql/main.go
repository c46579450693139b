// Command asksql resolves analytics questions into warehouse queries.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/asksql/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		if !cli.IsReported(err) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
