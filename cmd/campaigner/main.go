// campaigner composes campaign documents for the simulation engine from
// plan files and shipped presets.
//
// Usage:
//
//	campaigner build plan.yaml [more.yaml ...] [-o dir]
//	campaigner inspect <plan-file|preset>
//	campaigner graph <plan-file|preset> [-o file.mmd]
//	campaigner presets [show <name>]
//	campaigner drugs
//	campaigner serve
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
