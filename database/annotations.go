package database

import (
	"context"
	dbsql "database/sql"
	"fmt"

	"github.com/yasinhessnawi1/Hideme-sub004/helper"
	"github.com/yasinhessnawi1/Hideme-sub004/model"
	"github.com/yasinhessnawi1/Hideme-sub004/sql"
)

// AnnotationsDBHandlerFunctions defines the interface for annotation
// database operations. It covers the store's backend contract: writes
// keyed by id plus bulk paths by document, page and kind.
type AnnotationsDBHandlerFunctions interface {
	Open(ctx context.Context) error
	Put(ctx context.Context, annotation *model.Annotation) error
	Delete(ctx context.Context, id string) error
	DeleteDocument(ctx context.Context, documentKey string) error
	DeletePage(ctx context.Context, documentKey string, page int) error
	DeleteKind(ctx context.Context, kind model.Kind) error
	DeleteAll(ctx context.Context) error
	LoadAll(ctx context.Context) ([]*model.Annotation, error)
	LoadDocument(ctx context.Context, documentKey string) ([]*model.Annotation, error)
	Close() error
}

// AnnotationsDBHandler handles annotation-related database operations
type AnnotationsDBHandler struct {
	db *helper.Database
}

// NewAnnotationsDBHandler creates a new annotations database handler.
// It loads the annotation SQL functions and creates the table.
// If force is true, it will reload the SQL functions even if they already exist.
func NewAnnotationsDBHandler(db *helper.Database, force bool) (*AnnotationsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	annotationsDbHandler := &AnnotationsDBHandler{
		db: db,
	}

	err := sql.LoadAnnotationsSql(annotationsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load annotations sql", err)
	}

	err = annotationsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized AnnotationsDBHandler")

	return annotationsDbHandler, nil
}

// CreateTable creates the 'annotations' table in the database.
// If the table already exists, it does not create it again.
// It also creates all necessary indexes.
func (h *AnnotationsDBHandler) CreateTable() error {
	_, err := h.db.Instance.Exec(`SELECT init_annotations();`)
	if err != nil {
		return helper.NewError("initialize annotations table", err)
	}

	h.db.Logger.Info("Checked/created table annotations")

	return nil
}

// Open verifies the connection is usable. The schema is prepared in
// the constructor, so opening is just a ping.
func (h *AnnotationsDBHandler) Open(ctx context.Context) error {
	if err := h.db.Instance.PingContext(ctx); err != nil {
		return helper.NewError("ping", err)
	}
	return nil
}

// Put persists one annotation, overwriting any record with the same id
func (h *AnnotationsDBHandler) Put(ctx context.Context, annotation *model.Annotation) error {
	_, err := h.db.Instance.ExecContext(
		ctx,
		`SELECT insert_annotation($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		annotation.ID,
		annotation.DocumentKey,
		annotation.Page,
		annotation.X,
		annotation.Y,
		annotation.W,
		annotation.H,
		string(annotation.Kind),
		annotation.Text,
		annotation.EntityLabel,
		annotation.Color,
		annotation.Opacity,
		annotation.Score,
		annotation.Start,
		annotation.End,
		annotation.Metadata,
		annotation.CreatedAt,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// Delete removes one annotation by id. Missing ids are not an error.
func (h *AnnotationsDBHandler) Delete(ctx context.Context, id string) error {
	_, err := h.db.Instance.ExecContext(
		ctx,
		`SELECT delete_annotation($1)`,
		id,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// DeleteDocument removes every annotation of a document
func (h *AnnotationsDBHandler) DeleteDocument(ctx context.Context, documentKey string) error {
	_, err := h.db.Instance.ExecContext(
		ctx,
		`SELECT delete_annotations_by_document($1)`,
		documentKey,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// DeletePage removes every annotation of one page of a document
func (h *AnnotationsDBHandler) DeletePage(ctx context.Context, documentKey string, page int) error {
	_, err := h.db.Instance.ExecContext(
		ctx,
		`SELECT delete_annotations_by_page($1, $2)`,
		documentKey,
		page,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// DeleteKind removes every annotation of a kind across all documents
func (h *AnnotationsDBHandler) DeleteKind(ctx context.Context, kind model.Kind) error {
	_, err := h.db.Instance.ExecContext(
		ctx,
		`SELECT delete_annotations_by_kind($1)`,
		string(kind),
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// DeleteAll clears the annotations table
func (h *AnnotationsDBHandler) DeleteAll(ctx context.Context) error {
	_, err := h.db.Instance.ExecContext(ctx, `SELECT delete_all_annotations()`)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// LoadAll returns every persisted annotation, ordered by document,
// page and creation time.
func (h *AnnotationsDBHandler) LoadAll(ctx context.Context) ([]*model.Annotation, error) {
	rows, err := h.db.Instance.QueryContext(ctx, `SELECT * FROM select_all_annotations()`)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	return scanAnnotations(rows)
}

// LoadDocument returns every persisted annotation of one document,
// ordered by page and creation time.
func (h *AnnotationsDBHandler) LoadDocument(ctx context.Context, documentKey string) ([]*model.Annotation, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_annotations_by_document($1)`,
		documentKey,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	return scanAnnotations(rows)
}

func scanAnnotations(rows *dbsql.Rows) ([]*model.Annotation, error) {
	defer rows.Close()

	var annotations []*model.Annotation
	for rows.Next() {
		annotation := &model.Annotation{}
		var kind string
		err := rows.Scan(
			&annotation.ID,
			&annotation.DocumentKey,
			&annotation.Page,
			&annotation.X,
			&annotation.Y,
			&annotation.W,
			&annotation.H,
			&kind,
			&annotation.Text,
			&annotation.EntityLabel,
			&annotation.Color,
			&annotation.Opacity,
			&annotation.Score,
			&annotation.Start,
			&annotation.End,
			&annotation.Metadata,
			&annotation.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		annotation.Kind = model.Kind(kind)
		annotations = append(annotations, annotation)
	}
	if err := rows.Err(); err != nil {
		return nil, helper.NewError("rows", err)
	}

	return annotations, nil
}

// Close closes the underlying database connection
func (h *AnnotationsDBHandler) Close() error {
	return h.db.Instance.Close()
}
