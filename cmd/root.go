package cmd

import "github.com/spf13/cobra"

// Version is set at build time.
var Version = "0.4.0"

var rootCmd = &cobra.Command{
	Use:   "shrike-guard",
	Short: "Shrike Guard - security scanning for LLM applications",
	Long: `Shrike Guard protects LLM applications from prompt injection, SQL
injection, and path traversal attacks. Prompts are scanned against the
Shrike backend before they reach the model; threats are blocked at the
client, before any provider sees them.`,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("shrike-guard v%s\n", Version)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
