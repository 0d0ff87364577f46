// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/semchat/internal/queryapi"
)

// statusTimeout bounds the health check.
const statusTimeout = 5 * time.Second

// StatusReport is the --json payload of "semchat status".
type StatusReport struct {
	ServiceURL       string `json:"service_url"`
	Reachable        bool   `json:"reachable"`
	Healthy          bool   `json:"healthy"`
	Status           string `json:"status,omitempty"`
	RedisConnected   bool   `json:"redis_connected"`
	APIKeyConfigured bool   `json:"api_key_configured"`
	Error            string `json:"error,omitempty"`
	Latency          string `json:"latency"`
}

func (a *App) newStatusCommand() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check the query service health endpoint",
		Long: `Status calls the service health endpoint and reports whether the service
is reachable and healthy. The exit status is 1 when it is not.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runStatus(cmd, jsonOut)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the report as JSON")
	return cmd
}

func (a *App) runStatus(cmd *cobra.Command, jsonOut bool) error {
	client := a.newClient()

	ctx, cancel := context.WithTimeout(cmd.Context(), statusTimeout)
	defer cancel()

	start := time.Now()
	health, err := client.Health(ctx)
	report := buildStatusReport(client.BaseURL(), health, err, time.Since(start))

	out := cmd.OutOrStdout()
	if jsonOut {
		resp := NewJSONResponse("status", report)
		if !report.Healthy {
			msg := report.Error
			if msg == "" {
				msg = "service unhealthy"
			}
			resp = NewJSONErrorResponse("status", msg, report)
		}
		if err := resp.Write(out); err != nil {
			return err
		}
	} else {
		printStatusReport(cmd, report)
	}

	if !report.Healthy {
		return &ExitError{Code: 1}
	}
	return nil
}

func buildStatusReport(url string, health *queryapi.HealthStatus, err error, latency time.Duration) StatusReport {
	report := StatusReport{
		ServiceURL: url,
		Latency:    latency.Round(time.Millisecond).String(),
	}
	if err != nil {
		// A non-2xx answer still means the service is up
		_, report.Reachable = queryapi.IsServiceError(err)
		report.Error = err.Error()
		return report
	}

	if health == nil {
		health = &queryapi.HealthStatus{}
	}
	report.Reachable = true
	report.Healthy = health.IsHealthy()
	report.Status = health.Status
	report.RedisConnected = health.RedisConnected
	report.APIKeyConfigured = health.APIKeyConfigured
	report.Error = health.Error
	return report
}

func printStatusReport(cmd *cobra.Command, r StatusReport) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, TitleStyle.Render("semchat status"))
	printRow(out, "Service", r.ServiceURL)
	printRow(out, "Reachable", statusWord(r.Reachable))
	if r.Reachable && r.Status != "" {
		printRow(out, "Health", statusWord(r.Healthy)+" "+r.Status)
		printRow(out, "Cache backend", yesNo(r.RedisConnected, "connected", "not connected"))
		printRow(out, "API key", yesNo(r.APIKeyConfigured, "configured", "missing"))
	}
	if r.Error != "" {
		printRow(out, "Error", ErrorStyle.Render(r.Error))
	}
	printRow(out, "Latency", r.Latency)
}

func yesNo(b bool, yes, no string) string {
	if b {
		return SuccessStyle.Render(yes)
	}
	return WarningStyle.Render(no)
}
