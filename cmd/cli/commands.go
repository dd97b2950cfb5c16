package main

import (
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(matchesCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(pendingCmd)
	rootCmd.AddCommand(undoCmd)
	rootCmd.AddCommand(metricsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health", false)
	},
}

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "List the active players in the club roster",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/players", false)
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the scored and ranked leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/leaderboard", false)
	},
}

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "List the recorded match results",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/matches", false)
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Show the next scheduled club event",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/schedule", false)
	},
}

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List the pending membership requests (admin)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/membership/pending", true)
	},
}

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Delete the most recently recorded match (admin)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/matches/undo", true)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics", false)
	},
}

func performGetRequest(endpoint string, admin bool) error {
	return performRequest(http.MethodGet, endpoint, admin)
}

func performPostRequest(endpoint string, admin bool) error {
	return performRequest(http.MethodPost, endpoint, admin)
}

func performRequest(method, endpoint string, admin bool) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if admin {
		req.Header.Set("X-Admin-Password", adminPassword)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
