// Package main provides the webstract CLI entry point.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "webstract",
	Short: "Convert JATS baseprints into normalized webstract documents",
	Long: `webstract converts loosely-structured JATS XML research articles
("baseprints") into a normalized intermediate document model with
deterministically resolved numeric citations.

The model round-trips losslessly through JSON and YAML and back to
equivalent JATS. All commands output JSON by default for easy
integration with other tools.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}
