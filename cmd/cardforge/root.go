package main

import (
	"fmt"
	"os"

	"github.com/meur/cardforge/internal/logger"
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "cardforge",
	Short: "Curate anime title and character cards",
	Long: "Cardforge turns raw anime catalog exports into a balanced card collection:\n" +
		"rarity tiers, costs and points for titles, and a rarity-ranked character pool.",
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.PersistentFlags().String("log", getEnv("CARDFORGE_LOG", "dev"), "Log mode: dev or prod")

	rootCmd.AddCommand(curateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(cmd *cobra.Command) (*logger.Logger, error) {
	mode, _ := cmd.Flags().GetString("log")
	return logger.New(mode)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
