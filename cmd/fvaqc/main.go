// Command fvaqc checks and repairs freeboard (FVA) elevation raster stacks.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/freeboard/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
