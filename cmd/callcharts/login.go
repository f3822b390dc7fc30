package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jgoulah/callcharts/internal/workflow"
	"github.com/jgoulah/callcharts/pkg/models"
)

var loginEmail string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Remember your email address",
	Long: `Validates an email address and saves it to the config file, so load, save and
the dashboard use it without --email.`,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Email address to remember")
	_ = loginCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	email := models.NormalizeEmail(loginEmail)
	if !models.ValidEmail(email) {
		return fmt.Errorf("%s: %q", workflow.StatusInvalidEmail, loginEmail)
	}

	// Load the file as written so env-only settings are not persisted
	cfg, err := loadConfigFile()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	cfg.Email = email

	// Save config
	if err := saveConfig(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved %s to %s\n", email, getConfigPath())
	return nil
}
