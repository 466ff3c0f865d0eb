// Command ebisu predicts, updates and calibrates Ebisu recall models from the
// command line.
package main

import (
	"context"
	"os"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
