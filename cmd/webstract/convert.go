package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/perm-pub/webstract/internal/config"
	"github.com/perm-pub/webstract/internal/jats"
	"github.com/perm-pub/webstract/internal/storage"
	"github.com/perm-pub/webstract/internal/webstract"
)

var (
	convertOutput string
	convertFormat string
	convertRecord bool
)

func init() {
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "Output path (default: input name with format extension)")
	convertCmd.Flags().StringVar(&convertFormat, "format", "", "Output format: json or yaml (default from WEBSTRACT_FORMAT)")
	convertCmd.Flags().BoolVar(&convertRecord, "record", false, "Append a conversion record to the workspace records file")
	rootCmd.AddCommand(convertCmd)
}

var convertCmd = &cobra.Command{
	Use:   "convert <article.xml>",
	Short: "Convert a JATS baseprint to a webstract document",
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg := config.FromEnv()
	input := args[0]

	data, err := os.ReadFile(input)
	if err != nil {
		exitWithError(ExitError, "reading %s: %v", input, err)
	}

	doc, err := jats.Parse(data)
	if err != nil {
		exitWithError(ExitDataError, "converting %s: %v", input, err)
	}

	format := convertFormat
	if format == "" {
		format = cfg.Format
	}
	output := convertOutput
	if output == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		output = base + "." + format
	}
	if err := webstract.WriteFile(doc, output); err != nil {
		exitWithError(ExitError, "writing %s: %v", output, err)
	}

	if convertRecord {
		if err := appendRecord(cfg, input, output, data, doc); err != nil {
			exitWithError(ExitConfigError, "recording conversion: %v", err)
		}
	}

	title := webstract.PlainText(doc.Title)
	if humanOutput {
		fmt.Printf("%s -> %s\n", input, output)
		fmt.Printf("  %s (%d references)\n", truncateString(title, 70), len(doc.References))
		return nil
	}
	return outputJSON(ConvertResponse{
		Status:     "converted",
		Output:     output,
		Title:      title,
		References: len(doc.References),
	})
}

func appendRecord(cfg config.Config, input, output string, data []byte, doc *webstract.Document) error {
	if err := config.EnsureWorkspace(cfg.Root); err != nil {
		return err
	}
	sum := sha256.Sum256(data)
	rec := storage.Record{
		Source:      input,
		Hash:        hex.EncodeToString(sum[:]),
		Title:       webstract.PlainText(doc.Title),
		References:  len(doc.References),
		ConvertedAt: time.Now().UTC().Format(time.RFC3339),
		Output:      output,
	}
	if doc.Edition != nil {
		rec.Succession = doc.Edition.Succession
	}
	return storage.Append(config.RecordsPath(cfg.Root), rec)
}
