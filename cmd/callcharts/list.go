package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jgoulah/callcharts/internal/config"
)

var listEmail string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved chart values",
	Long:  `Displays the saved custom chart values stored in the local database.`,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listEmail, "email", "", "Filter by email (default: all emails)")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if backend := getBackend(cfg); backend != config.BackendSQLite {
		return fmt.Errorf("list needs the sqlite backend (configured: %s)", backend)
	}

	// Open database
	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	entries, err := db.ListEntries(cmd.Context(), listEmail)
	if err != nil {
		return fmt.Errorf("listing saved values: %w", err)
	}

	if len(entries) == 0 {
		fmt.Fprintln(out, "No saved values found")
		return nil
	}

	fmt.Fprintln(out, "----------------------------------------------------------------------")
	fmt.Fprintf(out, "%-30s  %-14s  %6s  %-14s  %s\n", "Email", "Chart", "Points", "Updated", "Published")
	fmt.Fprintln(out, "----------------------------------------------------------------------")

	for _, e := range entries {
		published := "no"
		if e.Published {
			published = "yes"
		}
		fmt.Fprintf(out, "%-30s  %-14s  %6d  %-14s  %s\n",
			e.Email, e.ChartID, len(e.Values), humanize.Time(e.UpdatedAt), published)
	}

	fmt.Fprintln(out, "----------------------------------------------------------------------")
	fmt.Fprintf(out, "Total: %d saved charts\n", len(entries))
	return nil
}
