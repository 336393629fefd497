package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/perm-pub/webstract/internal/config"
	"github.com/perm-pub/webstract/internal/storage"
)

func init() {
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed conversions, newest first",
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	cfg := config.FromEnv()

	db, err := storage.OpenDB(config.DBPath(cfg.Root))
	if err != nil {
		exitWithError(ExitConfigError, "opening index: %v (run 'webstract index' first)", err)
	}
	defer db.Close()

	records, err := db.List()
	if err != nil {
		exitWithError(ExitError, "listing conversions: %v", err)
	}

	if humanOutput {
		for _, rec := range records {
			fmt.Printf("%s  %s\n", rec.ConvertedAt, rec.Source)
			fmt.Printf("  %s (%d references)\n", truncateString(rec.Title, 70), rec.References)
		}
		return nil
	}
	return outputJSON(records)
}
