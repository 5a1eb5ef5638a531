// Package main provides the autoapply CLI: discover freelance-gig postings,
// generate candidate replies, and optionally submit them.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "autoapply",
	Short: "Automatic freelance order finder and responder",
	Long:  "autoapply scrapes freelance marketplaces for postings matching your criteria, generates candidate replies, and can submit them through your captured browser session.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
