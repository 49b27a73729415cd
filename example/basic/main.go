package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	hideme "github.com/yasinhessnawi1/Hideme-sub004"
	"github.com/yasinhessnawi1/Hideme-sub004/model"
)

const samplePage = `Patient John Doe visited the clinic on 12 May 2024.
Contact: john.doe@example.com. The patient reported no complaints.`

// locate maps character offsets to a toy page geometry: one unit of x
// per character, a fixed line height. A real viewer resolves offsets
// against its text layer instead.
func locate(start, end int) (float64, float64, float64, float64, bool) {
	return float64(start), 40, float64(end - start), 14, true
}

func main() {
	ctx := context.Background()

	// Memory-only annotator, no durable persistence
	annotator := hideme.NewMemoryAnnotator()
	defer annotator.Close()

	// Manual highlight drawn by the user
	annotator.Store.Add(ctx, &model.Annotation{
		DocumentKey: "report.pdf",
		Page:        1,
		X:           8, Y: 40, W: 60, H: 14,
		Kind:  model.KindManual,
		Text:  "John Doe",
		Color: "#ffff00",
	})

	// Highlight every occurrence of a search term
	ids, err := annotator.SearchText(ctx, "report.pdf", 1, samplePage, "patient", locate)
	if err != nil {
		log.Fatalf("Search failed: %v", err)
	}
	fmt.Printf("Search stored %d annotations\n", len(ids))

	// Export the redaction mapping for the whole document
	mapping := annotator.ExportRedactionMapping(ctx, "report.pdf", true, true, true)
	out, err := json.MarshalIndent(mapping, "", "  ")
	if err != nil {
		log.Fatalf("Marshal failed: %v", err)
	}
	fmt.Println(string(out))

	stats := annotator.MappingStatistics(mapping)
	fmt.Printf("Total items: %d, by page: %v\n", stats.TotalItems, stats.ByPage)
}
