package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrii-d/autoapply/internal/config"
	"github.com/andrii-d/autoapply/internal/marketplace"
	"github.com/andrii-d/autoapply/internal/submit"
)

var authCommand = &cobra.Command{
	Use:   "auth",
	Short: "Capture an authenticated session state for a marketplace",
	Long: `Opens a visible browser, logs into the marketplace with the given credentials,
and saves the resulting session cookies to a session-state file. The submission
engine consumes this file read-only; credentials themselves are never stored.`,
	RunE: runAuthCmd,
}

var (
	authConfigPath  string
	authMarketplace string
	authUsername    string
	authPassword    string
	authOutput      string
)

func init() {
	authCommand.Flags().StringVar(&authConfigPath, "config", "config/config.yaml", "Path to config file (JSON or YAML)")
	authCommand.Flags().StringVarP(&authMarketplace, "marketplace", "m", "", "Marketplace identifier (e.g. kwork)")
	authCommand.Flags().StringVarP(&authUsername, "username", "u", "", "Marketplace username or email")
	authCommand.Flags().StringVarP(&authPassword, "password", "p", "", "Marketplace password")
	authCommand.Flags().StringVarP(&authOutput, "output", "o", "", "Output path for the session-state file (defaults to <session_dir>/auth_state_<marketplace>.json)")

	_ = authCommand.MarkFlagRequired("marketplace")
	_ = authCommand.MarkFlagRequired("username")
	_ = authCommand.MarkFlagRequired("password")

	rootCmd.AddCommand(authCommand)
}

func runAuthCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	mp, err := marketplace.NewRegistry().Lookup(authMarketplace)
	if err != nil {
		return err
	}

	output := authOutput
	if output == "" {
		output = config.Load(authConfigPath).SessionStatePath(mp.Name())
	}

	state, err := submit.CaptureSession(ctx, mp, authUsername, authPassword)
	if err != nil {
		return err
	}
	if err := state.Save(output); err != nil {
		return err
	}

	fmt.Printf("Session state for %s saved to %s (%d cookies)\n", mp.Name(), output, len(state.Cookies))
	return nil
}
