package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/Shrike-Security/shrike-guard-go/scan"
)

var (
	scanConfigFile string
	scanEndpoint   string
	scanTimeout    time.Duration
	scanSQL        bool
	scanDatabase   string
	scanDestructive bool
	scanFilePath   string
	scanContext    string
)

var scanCmd = &cobra.Command{
	Use:   "scan [text]",
	Short: "Scan a prompt, SQL query, or file path for threats",
	Long: `Scan content against the Shrike backend and print the verdict.

By default the argument is treated as a prompt. Use --sql to scan an
AI-generated SQL query, or --file to scan a file path (the file's content
is read and scanned too when it exists).`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanConfigFile, "config", "", "Path to shrike.yaml config file")
	scanCmd.Flags().StringVar(&scanEndpoint, "endpoint", "", "Scan backend URL (overrides config)")
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", 0, "Scan timeout (overrides config)")
	scanCmd.Flags().BoolVar(&scanSQL, "sql", false, "Treat input as a SQL query")
	scanCmd.Flags().StringVar(&scanDatabase, "database", "", "Database type for SQL scans (postgres, mysql, ...)")
	scanCmd.Flags().BoolVar(&scanDestructive, "allow-destructive", false, "Permit destructive SQL operations")
	scanCmd.Flags().StringVar(&scanFilePath, "file", "", "Scan this file path instead of a prompt")
	scanCmd.Flags().StringVar(&scanContext, "context", "", "Conversation context for prompt scans")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(scanConfigFile, scanEndpoint, "", scanTimeout)
	if err != nil {
		return err
	}
	client, err := newScanClient(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	text := strings.Join(args, " ")
	ctx := context.Background()

	spinner, _ := pterm.DefaultSpinner.Start("Scanning...")

	var verdict *scan.Verdict
	switch {
	case scanSQL:
		verdict, err = client.ScanSQL(ctx, text, scanDatabase, scanDestructive)
	case scanFilePath != "":
		content := ""
		if data, rerr := os.ReadFile(scanFilePath); rerr == nil {
			content = string(data)
		}
		verdict, err = client.ScanFile(ctx, scanFilePath, content)
	default:
		verdict, err = client.Scan(ctx, text, scanContext)
	}

	if err != nil {
		spinner.Fail("Scan failed")
		pterm.Println(pterm.NewStyle(pterm.FgRed).Sprintf("  %v", err))
		os.Exit(2)
	}
	spinner.Stop()

	printVerdict(verdict)
	if !verdict.Safe {
		os.Exit(1)
	}
	return nil
}

func printVerdict(v *scan.Verdict) {
	pterm.Println()
	if v.Safe {
		pterm.Println(pterm.NewStyle(pterm.FgGreen, pterm.Bold).Sprint("✔ SAFE") +
			pterm.NewStyle(pterm.FgGray).Sprint("  no threats detected"))
		pterm.Println()
		return
	}

	pterm.Println(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("✘ BLOCKED"))
	pterm.Println()
	rows := [][]string{
		{"Threat", v.ThreatType},
		{"Severity", v.Severity},
		{"Confidence", fmt.Sprintf("%.2f (%s)", v.Confidence, v.ConfidenceLevel)},
		{"Reason", v.Reason},
	}
	for _, row := range rows {
		if row[1] == "" {
			continue
		}
		pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprintf("  %-11s", row[0]) + row[1])
	}
	if v.Guidance != "" {
		pterm.Println()
		pterm.Println(pterm.NewStyle(pterm.FgYellow).Sprint("  Guidance: ") + v.Guidance)
	}
	pterm.Println()
}
