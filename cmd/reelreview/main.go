package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"reelreview/internal/api"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
			for _, detail := range api.ValidationDetails(err) {
				fmt.Fprintf(os.Stderr, "  - %s\n", detail)
			}
		}
		os.Exit(1)
	}
}
