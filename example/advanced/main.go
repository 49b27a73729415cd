package main

import (
	"context"
	"fmt"
	"log"

	hideme "github.com/yasinhessnawi1/Hideme-sub004"
	"github.com/yasinhessnawi1/Hideme-sub004/core/match"
	"github.com/yasinhessnawi1/Hideme-sub004/helper"
	"github.com/yasinhessnawi1/Hideme-sub004/model"
	"github.com/yasinhessnawi1/Hideme-sub004/store"
)

func main() {
	ctx := context.Background()

	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	// Database configuration using the container port
	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		User:     "user",
		Password: "password",
		Name:     "database",
		SSLMode:  "disable",
	}

	// Annotator persisting to PostgreSQL. If the database were down it
	// would degrade to memory-only with a warning instead of failing.
	annotator := hideme.NewAnnotator(dbConfig)
	defer annotator.Close()

	// React to store changes the way a viewer would re-render
	sub := annotator.Store.Subscribe(func(c store.Change) {
		fmt.Printf("changed: document=%q page=%d kind=%q\n", c.DocumentKey, c.Page, c.Kind)
	})
	defer sub.Unsubscribe()

	annotator.Store.OnRemoval(func(r store.Removal) {
		fmt.Printf("removed: %s\n", r.ID)
	})

	// Batch-add highlights across two pages
	annotator.Store.AddMany(ctx, []*model.Annotation{
		{DocumentKey: "contract.pdf", Page: 1, X: 10, Y: 10, W: 50, H: 20, Kind: model.KindManual, Text: "Alice Smith"},
		{DocumentKey: "contract.pdf", Page: 1, X: 10, Y: 40, W: 80, H: 20, Kind: model.KindManual, Text: "Oslo, Norway"},
		{DocumentKey: "contract.pdf", Page: 2, X: 10, Y: 10, W: 50, H: 20, Kind: model.KindSearch, Text: "confidential"},
	})

	// Fuzzy erase: remove whatever sits approximately under this box
	annotator.Store.RemoveByPosition(
		ctx,
		[]string{"contract.pdf"},
		match.Rect{X0: 10, Y0: 10, X1: 60, Y1: 30},
		nil, // default thresholds
	)

	// Query what is left
	remaining := annotator.Store.ForDocument(ctx, "contract.pdf")
	fmt.Printf("%d annotations remain:\n", len(remaining))
	for _, a := range remaining {
		fmt.Printf("  page %d: %q (%s)\n", a.Page, a.Text, a.Kind.Normalized())
	}

	// Clear one kind across the whole store
	annotator.Store.RemoveAllByKind(ctx, model.KindSearch)
	fmt.Printf("after clearing search: %d annotations\n", len(annotator.Store.ForDocument(ctx, "contract.pdf")))
}
