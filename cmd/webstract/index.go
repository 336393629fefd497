package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/perm-pub/webstract/internal/config"
	"github.com/perm-pub/webstract/internal/storage"
)

func init() {
	rootCmd.AddCommand(indexCmd)
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the conversion index from the workspace records file",
	RunE:  runIndex,
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg := config.FromEnv()
	if err := config.EnsureWorkspace(cfg.Root); err != nil {
		exitWithError(ExitConfigError, "creating workspace: %v", err)
	}

	db, err := storage.OpenDB(config.DBPath(cfg.Root))
	if err != nil {
		exitWithError(ExitConfigError, "opening index: %v", err)
	}
	defer db.Close()

	count, err := db.RebuildFromJSONL(config.RecordsPath(cfg.Root))
	if err != nil {
		exitWithError(ExitDataError, "rebuilding index: %v", err)
	}

	if humanOutput {
		fmt.Printf("indexed %d conversions\n", count)
		return nil
	}
	return outputJSON(IndexResponse{Status: "indexed", Indexed: count})
}
