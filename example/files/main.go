package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	hideme "github.com/yasinhessnawi1/Hideme-sub004"
	"github.com/yasinhessnawi1/Hideme-sub004/model"
)

// Demonstrates the on-device filestore backend: annotations written in
// one session are hydrated back in the next, like a desktop viewer
// restoring highlights after a restart.
func main() {
	ctx := context.Background()

	root := filepath.Join(os.TempDir(), "hideme-example")
	defer os.RemoveAll(root)

	// First session: annotate and close
	{
		annotator := hideme.NewFileAnnotator(root)

		annotator.Store.Add(ctx, &model.Annotation{
			DocumentKey: "thesis.pdf",
			Page:        12,
			X:           30, Y: 120, W: 140, H: 16,
			Kind:  model.KindManual,
			Text:  "supervisor's name",
			Color: "#ff8800",
		})
		annotator.Store.Add(ctx, &model.Annotation{
			DocumentKey: "thesis.pdf",
			Page:        12,
			X:           30, Y: 160, W: 90, H: 16,
			Kind:        model.KindEntity,
			EntityLabel: "PERSON",
			Text:        "Kari Nordmann",
			Score:       0.95,
		})

		if err := annotator.Close(); err != nil {
			log.Fatalf("Close failed: %v", err)
		}
	}

	// Second session: everything is back
	{
		annotator := hideme.NewFileAnnotator(root)
		defer annotator.Close()

		records := annotator.Store.ForPage(ctx, "thesis.pdf", 12)
		fmt.Printf("restored %d annotations:\n", len(records))
		for _, a := range records {
			fmt.Printf("  %s: %q\n", a.ID, a.Text)
		}

		mapping := annotator.ExportRedactionMapping(ctx, "thesis.pdf", true, true, true)
		stats := annotator.MappingStatistics(mapping)
		fmt.Printf("redaction mapping covers %d items across %d pages\n", stats.TotalItems, len(mapping.Pages))
	}
}
