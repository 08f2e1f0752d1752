package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/lherron/habitus/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		code := 1
		var exit *cli.ExitError
		if errors.As(err, &exit) {
			code = exit.Code
		}
		stop()
		os.Exit(code)
	}
}
