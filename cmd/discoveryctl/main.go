// Command discoveryctl inspects discovery records offline: it derives
// blueprints from exported records, manages a local draft directory and
// renders diagrams.
package main

import (
	"os"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
