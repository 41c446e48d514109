package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rorycl/roster/app"
)

// main is the entry point for the application.
// It initializes the core application logic, builds the CLI interface,
// and executes the command provided by the user.
func main() {
	application := app.New()

	cmd := BuildCLI(application)

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
