// complyctl is the operator command line of the ComplyTrack engine.
package main

import (
	"os"

	"github.com/complytrack/complytrack/internal/interfaces/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
