// Command waterbench is the CLI for the water-quality anomaly benchmark:
// it fetches the yearly datasets, runs baseline evaluations, and runs
// drift scenarios.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
