package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// HealthResponse matches the response from internal/api/handlers/health.go
type HealthResponse struct {
	Status string                 `json:"status"`
	Checks map[string]CheckResult `json:"checks,omitempty"`
}

type CheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthCheckResult is the outcome of one probe.
type HealthCheckResult struct {
	URL       string
	Status    string
	IsHealthy bool
	LatencyMs int64
	Error     string
}

func newHealthcheckCommand() *cobra.Command {
	var (
		timeout int
		url     string
	)

	cmd := &cobra.Command{
		Use:   "healthcheck",
		Short: "Check if the server is healthy",
		Long: `Performs a health check by calling the /health endpoint.

This command is used by Docker HEALTHCHECK to monitor container health.
A degraded server (for example with email delivery disabled) still passes.

Exit codes:
  0 - Server is healthy
  1 - Server is unhealthy or unreachable`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if url == "" {
				url = defaultHealthURL()
			}
			result := performHealthCheck(url, time.Duration(timeout)*time.Second)
			if result.Error != "" {
				return fmt.Errorf("health check failed: %s", result.Error)
			}
			if !result.IsHealthy {
				return fmt.Errorf("server status: %s", result.Status)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%dms)\n", result.Status, result.LatencyMs)
			return nil
		},
	}

	cmd.Flags().IntVar(&timeout, "timeout", 5, "timeout in seconds")
	cmd.Flags().StringVar(&url, "url", "", "health check URL (default: http://localhost:{SERVER_PORT}/health)")

	return cmd
}

func defaultHealthURL() string {
	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}
	return fmt.Sprintf("http://localhost:%s/health", port)
}

func performHealthCheck(url string, timeout time.Duration) HealthCheckResult {
	result := HealthCheckResult{URL: url}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		result.Error = fmt.Sprintf("create request: %v", err)
		return result
	}

	start := time.Now()
	resp, err := http.DefaultClient.Do(req)
	result.LatencyMs = time.Since(start).Milliseconds()
	if err != nil {
		result.Error = err.Error()
		return result
	}
	defer func() { _ = resp.Body.Close() }()

	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		result.Error = fmt.Sprintf("parse response: %v", err)
		return result
	}

	result.Status = health.Status
	result.IsHealthy = resp.StatusCode == http.StatusOK &&
		(health.Status == "healthy" || health.Status == "degraded")
	return result
}
