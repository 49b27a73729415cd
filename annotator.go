// Package hideme is the core of the HideMe document annotation tool:
// an authoritative annotation store over per-document, per-page
// highlight records, fuzzy geometric matching for cleanup actions, and
// the redaction mapping export consumed by the redaction service.
package hideme

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/yasinhessnawi1/Hideme-sub004/core/pipeline"
	"github.com/yasinhessnawi1/Hideme-sub004/core/redact"
	"github.com/yasinhessnawi1/Hideme-sub004/database"
	"github.com/yasinhessnawi1/Hideme-sub004/filestore"
	"github.com/yasinhessnawi1/Hideme-sub004/helper"
	"github.com/yasinhessnawi1/Hideme-sub004/model"
	"github.com/yasinhessnawi1/Hideme-sub004/store"
)

// Annotator wires the annotation store to a persistence backend and
// the optional detection pipeline. One instance per process; create it
// at startup and Close it at shutdown.
type Annotator struct {
	Store    *store.Store
	Detector pipeline.DetectFunc // Optional entity detector
	// Logging
	log *slog.Logger
}

func newLogger() *slog.Logger {
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	return slog.New(helper.NewPrettyHandler(os.Stdout, opts))
}

// NewAnnotator creates an Annotator persisting to PostgreSQL. When the
// database is unreachable the annotator degrades to memory-only
// operation with a logged warning: annotation usability never blocks
// on storage failure.
func NewAnnotator(config *helper.DatabaseConfiguration) *Annotator {
	logger := newLogger()

	var backend store.Backend
	db, err := helper.NewDatabaseChecked("hideme", config, logger)
	if err != nil {
		logger.Warn("Annotation database unavailable, continuing memory-only", slog.Any("error", err))
	} else {
		annotations, err := database.NewAnnotationsDBHandler(db, false)
		if err != nil {
			logger.Warn("Annotation handler initialization failed, continuing memory-only", slog.Any("error", err))
			db.Instance.Close()
		} else {
			backend = annotations
		}
	}

	return &Annotator{
		Store: store.New(backend, logger),
		log:   logger,
	}
}

// NewFileAnnotator creates an Annotator persisting to an on-device
// object store rooted at the given directory.
func NewFileAnnotator(root string) *Annotator {
	logger := newLogger()
	return &Annotator{
		Store: store.New(filestore.New(root), logger),
		log:   logger,
	}
}

// NewMemoryAnnotator creates an Annotator without durable persistence
func NewMemoryAnnotator() *Annotator {
	logger := newLogger()
	return &Annotator{
		Store: store.New(nil, logger),
		log:   logger,
	}
}

// Close flushes pending persistence writes and releases the backend
func (a *Annotator) Close() error {
	return a.Store.Close()
}

// SetDetector sets the entity detection function
func (a *Annotator) SetDetector(detector pipeline.DetectFunc) {
	a.Detector = detector
}

// UseDefaultEntityDetector sets up the default NER detector
// (distilbert-NER via hugot), downloading the model if needed.
func (a *Annotator) UseDefaultEntityDetector() error {
	detector, err := pipeline.DefaultEntityDetector()
	if err != nil {
		return helper.NewError("create default entity detector", err)
	}
	a.Detector = detector
	return nil
}

// DetectEntities runs the detector over one page's text, places the
// results with the caller's locator and stores them as ENTITY
// annotations. Returns the assigned annotation ids.
func (a *Annotator) DetectEntities(ctx context.Context, documentKey string, page int, text string, locate pipeline.LocateFunc) ([]string, error) {
	if a.Detector == nil {
		return nil, helper.NewError("detect entities", fmt.Errorf("detector not set, use SetDetector() or UseDefaultEntityDetector() first"))
	}

	detected, err := a.Detector(text)
	if err != nil {
		return nil, helper.NewError("run entity detector", err)
	}

	located := pipeline.Locate(detected, locate)
	for _, annotation := range located {
		annotation.DocumentKey = documentKey
		annotation.Page = page
	}

	ids := a.Store.AddMany(ctx, located)
	a.log.Info("Detected entities",
		slog.String("document", documentKey),
		slog.Int("page", page),
		slog.Int("count", len(ids)))
	return ids, nil
}

// SearchText finds every occurrence of a term in one page's text,
// places the matches with the caller's locator and stores them as
// SEARCH annotations. Returns the assigned annotation ids.
func (a *Annotator) SearchText(ctx context.Context, documentKey string, page int, text string, term string, locate pipeline.LocateFunc) ([]string, error) {
	matches, err := pipeline.SearchDetector(term, false)(text)
	if err != nil {
		return nil, helper.NewError("run search detector", err)
	}

	located := pipeline.Locate(matches, locate)
	for _, annotation := range located {
		annotation.DocumentKey = documentKey
		annotation.Page = page
	}

	return a.Store.AddMany(ctx, located), nil
}

// ExportRedactionMapping snapshots a document's current annotations
// into an exportable redaction job, filtered by kind-inclusion flags.
func (a *Annotator) ExportRedactionMapping(ctx context.Context, documentKey string, includeSearch, includeEntity, includeManual bool) *model.RedactionMapping {
	pageAnnotations := make(map[int][]*model.Annotation)
	for _, annotation := range a.Store.ForDocument(ctx, documentKey) {
		pageAnnotations[annotation.Page] = append(pageAnnotations[annotation.Page], annotation)
	}
	return redact.BuildMapping(pageAnnotations, includeSearch, includeEntity, includeManual)
}

// MappingStatistics aggregates a redaction mapping into totals
func (a *Annotator) MappingStatistics(mapping *model.RedactionMapping) model.MappingStats {
	return redact.Statistics(mapping)
}
