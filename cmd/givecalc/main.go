package main

import (
	"os"

	"github.com/spf13/cobra"
)

var flagConfigDir string

var rootCmd = &cobra.Command{
	Use:          "givecalc",
	Short:        "GiveCalc backend-for-frontend",
	Long:         "Serve the GiveCalc donation tax-impact calculator, or run a single calculation against the engine.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "Directory holding givecalc.yaml and .env (default: . and the user config dir)")
	rootCmd.AddCommand(serveCmd, calcCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
