package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/perm-pub/webstract/internal/biblio"
	"github.com/perm-pub/webstract/internal/jats"
)

var exportTo string

func init() {
	exportCmd.Flags().StringVar(&exportTo, "to", "bibtex", "Export format: bibtex or jats")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export <article.xml|document.json|document.yaml>",
	Short: "Export a document's references as BibTeX, or the document as JATS",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	doc, err := loadDocument(args[0])
	if err != nil {
		exitWithError(ExitDataError, "loading %s: %v", args[0], err)
	}

	switch exportTo {
	case "bibtex":
		fmt.Print(biblio.ToBibTeXList(doc.References))
	case "jats":
		data, err := jats.WriteBytes(doc)
		if err != nil {
			exitWithError(ExitError, "serializing JATS: %v", err)
		}
		os.Stdout.Write(data)
		fmt.Println()
	default:
		exitWithError(ExitError, "unknown export format %q (want bibtex or jats)", exportTo)
	}
	return nil
}
