package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jgoulah/callcharts/internal/workflow"
	"github.com/jgoulah/callcharts/pkg/models"
)

var (
	saveEmail string
	saveChart string
	saveFile  string
	saveYes   bool
)

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save custom values for a chart",
	Long: `Reads a JSON array of chart points and saves it for an email address and chart.
If values were already saved you are asked before they are overwritten.

Example:
  callcharts defaults --chart callVolume > calls.json
  callcharts save --email you@example.com --chart callVolume --file calls.json`,
	RunE: runSave,
}

func init() {
	saveCmd.Flags().StringVar(&saveEmail, "email", "", "Email to save the values under (default from config)")
	saveCmd.Flags().StringVar(&saveChart, "chart", "voiceQuality", "Chart to save (voiceQuality or callVolume)")
	saveCmd.Flags().StringVarP(&saveFile, "file", "f", "", "JSON file with the values, or - for stdin")
	saveCmd.Flags().BoolVarP(&saveYes, "yes", "y", false, "Overwrite previously saved values without asking")
	_ = saveCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(saveCmd)
}

func runSave(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	chart, err := models.ParseChartID(saveChart)
	if err != nil {
		return err
	}

	fromStdin := saveFile == "-"
	var data []byte
	if fromStdin {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(saveFile)
	}
	if err != nil {
		return fmt.Errorf("reading values: %w", err)
	}

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	email := resolveEmail(saveEmail, cfg)
	wf := newWorkflow(cfg, store, workflow.WithSelected(chart))

	prompt := bufio.NewReader(cmd.InOrStdin())
	decide := func(previous models.Series) bool {
		fmt.Fprintf(out, "⚠ %s\n", workflow.StatusConfirm)
		if text, err := previous.MarshalIndent(); err == nil {
			fmt.Fprintln(out, text)
		}
		if saveYes {
			return true
		}
		if fromStdin {
			fmt.Fprintln(out, "  Values were read from stdin, re-run with --yes to overwrite")
			return false
		}
		fmt.Fprint(out, "Overwrite? [y/N]: ")
		answer, _ := prompt.ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		return answer == "y" || answer == "yes"
	}

	res, err := wf.SaveAndConfirm(cmd.Context(), email, chart, string(data), decide)
	if err != nil {
		return workflowError(err)
	}

	switch res.Result {
	case workflow.SaveCancelled:
		fmt.Fprintf(out, "%s, kept the previously saved values\n", workflow.StatusCancelled)
	case workflow.SaveSaved:
		fmt.Fprintf(out, "✓ %s: %d points for %s (%s)\n", workflow.StatusSaved, len(res.Values), chart.Title(), email)
	}
	return nil
}
