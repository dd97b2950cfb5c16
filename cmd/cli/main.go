package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	host          string
	adminPassword string
)

var rootCmd = &cobra.Command{
	Use:   "howl-cli",
	Short: "A CLI to interact with the howlhub server",
	Long: `A command-line interface for making requests to the various endpoints
of the howlhub club dashboard.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&host, "host", "http://localhost:8080", "The host address of the server")
	rootCmd.PersistentFlags().StringVar(&adminPassword, "admin-password", "", "The admin password for gated endpoints")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your command '%s'", err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
