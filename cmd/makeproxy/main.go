package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	appErrors "shootproxy/internal/errors"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, appErrors.UserMessage(err))
		}
		os.Exit(1)
	}
}
