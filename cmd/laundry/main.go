// Laundry serves the laundry pickup website and its booking wizard.
//
// Usage:
//
//	laundry [command] [flags]
//
// See 'laundry --help' for available commands.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
