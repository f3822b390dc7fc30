package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jgoulah/callcharts/internal/config"
	"github.com/jgoulah/callcharts/internal/publisher"
	"github.com/jgoulah/callcharts/pkg/models"
)

var (
	publishEmail string
	publishAll   bool
	publishLimit int
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish saved chart values to MQTT",
	Long: `Reads saved chart values from the database and publishes them to an MQTT broker
as retained messages on {topic_prefix}/{chart}/{user}/values, where {user} is a
name-based UUID of the email address.`,
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().StringVar(&publishEmail, "email", "", "Only publish values saved under this email")
	publishCmd.Flags().BoolVar(&publishAll, "all", false, "Force republish all entries (ignore published flag)")
	publishCmd.Flags().IntVar(&publishLimit, "limit", 0, "Limit number of entries to publish (0 = no limit)")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	ctx := cmd.Context()
	fmt.Fprintf(out, "=== Publish started at %s ===\n", time.Now().Format("2006-01-02 15:04:05 MST"))

	// Load config
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if !cfg.MQTT.Enabled {
		return fmt.Errorf("MQTT is not enabled in config")
	}
	if backend := getBackend(cfg); backend != config.BackendSQLite {
		return fmt.Errorf("publish needs the sqlite backend (configured: %s)", backend)
	}

	// Open database
	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	// Get entries based on --all flag
	var entries []models.SavedEntry
	if publishAll {
		entries, err = db.ListEntries(ctx, publishEmail)
	} else {
		entries, err = db.ListUnpublished(ctx)
	}
	if err != nil {
		return fmt.Errorf("listing saved values: %w", err)
	}

	if publishEmail != "" && !publishAll {
		filtered := entries[:0]
		for _, e := range entries {
			if e.Email == publishEmail {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	if len(entries) == 0 {
		if publishAll {
			fmt.Fprintln(out, "No saved values found")
		} else {
			fmt.Fprintln(out, "No unpublished values found")
		}
		return nil
	}

	// Apply limit if specified
	if publishLimit > 0 && len(entries) > publishLimit {
		entries = entries[:publishLimit]
		fmt.Fprintf(out, "Limiting to %d entries (--limit flag)\n", publishLimit)
	}

	pub, err := publisher.New(cfg.MQTT, cfg.GetTopicPrefix(), logger)
	if err != nil {
		return fmt.Errorf("creating publisher: %w", err)
	}
	defer pub.Close()

	fmt.Fprintf(out, "Publishing %d entries...\n", len(entries))
	published := 0
	for i, e := range entries {
		fmt.Fprintf(out, "[%d/%d] Publishing %s %s (%d points)... ", i+1, len(entries), e.Email, e.ChartID, len(e.Values))
		if err := pub.Publish(e); err != nil {
			fmt.Fprintf(out, "FAILED: %v\n", err)
			logger.Warn("Publishing entry", zap.Int("id", e.ID), zap.Error(err))
			continue
		}

		// Mark entry as published in database
		if err := db.MarkPublished(ctx, e.ID); err != nil {
			fmt.Fprintf(out, "✓ (warning: failed to mark as published: %v)\n", err)
		} else {
			fmt.Fprintln(out, "✓")
		}
		published++
	}

	fmt.Fprintf(out, "\nSuccessfully published %d/%d entries\n", published, len(entries))
	return nil
}
