package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/perm-pub/webstract/internal/biblio"
	"github.com/perm-pub/webstract/internal/jats"
	"github.com/perm-pub/webstract/internal/webstract"
)

func init() {
	rootCmd.AddCommand(refsCmd)
}

var refsCmd = &cobra.Command{
	Use:   "refs <article.xml|document.json|document.yaml>",
	Short: "Print the resolved reference list in citation order",
	Args:  cobra.ExactArgs(1),
	RunE:  runRefs,
}

func runRefs(cmd *cobra.Command, args []string) error {
	doc, err := loadDocument(args[0])
	if err != nil {
		exitWithError(ExitDataError, "loading %s: %v", args[0], err)
	}

	rendered := biblio.Render(doc.References, biblio.NumericFormatter{})
	if humanOutput {
		for _, r := range rendered {
			fmt.Printf("%d. %s\n", r.Number, r.Text)
		}
		return nil
	}
	return outputJSON(rendered)
}

// loadDocument reads a document from JATS XML or an interchange encoding,
// dispatching on the file extension.
func loadDocument(path string) (*webstract.Document, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml", ".jats":
		return jats.ParseFile(path)
	default:
		return webstract.ReadFile(path)
	}
}
