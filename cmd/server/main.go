// Package main provides the signup validation server entry point.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rvceconnect/rvce-connect-go/internal/app"
	"github.com/rvceconnect/rvce-connect-go/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	application, err := app.Initialize(cfg)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	if err := application.Run(context.Background()); err != nil {
		os.Exit(1)
	}
}
