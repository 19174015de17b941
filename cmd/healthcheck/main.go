// Package main provides the container health probe. It exits 0 when /livez answers 200.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/rvceconnect/rvce-connect-go/internal/config"
)

func main() {
	port := os.Getenv(config.EnvPort)
	if port == "" {
		port = "10000"
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.HealthcheckRequest)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("http://localhost:%s/livez", port), nil)
	if err != nil {
		os.Exit(1)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		os.Exit(1)
	}
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
}
