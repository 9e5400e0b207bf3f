// Command mulderive generates scalar operator impls for Rust structs.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/roach88/mulderive/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		// Commands print their own formatted errors; flag and argument
		// errors from cobra still need reporting.
		code := cli.GetExitCode(err)
		if _, ok := err.(*cli.ExitError); !ok {
			fmt.Fprintln(os.Stderr, "Error:", err)
			code = cli.ExitCommandError
		}
		stop()
		os.Exit(code)
	}
}
