package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind categorizes how an annotation was created
type Kind string

const (
	// KindManual marks highlights drawn by the user
	KindManual Kind = "MANUAL"
	// KindSearch marks highlights produced by text search
	KindSearch Kind = "SEARCH"
	// KindEntity marks highlights produced by a classifier
	KindEntity Kind = "ENTITY"
)

// DefaultDocumentKey is the sentinel used for annotations without a document
const DefaultDocumentKey = "_default"

// Normalized returns the kind itself, or KindManual when unset.
// Records without a kind are treated as manual highlights everywhere.
func (k Kind) Normalized() Kind {
	if k == "" {
		return KindManual
	}
	return k
}

// Annotation represents a labeled bounding box on a document page.
// Geometry lives in a page-local coordinate space shared by all
// annotations of that page; the store is scale-agnostic and accepts
// geometry as-is without validation.
type Annotation struct {
	ID          string    `json:"id"`
	DocumentKey string    `json:"documentKey"`
	Page        int       `json:"page"` // 1-based
	X           float64   `json:"x"`
	Y           float64   `json:"y"`
	W           float64   `json:"w"`
	H           float64   `json:"h"`
	Kind        Kind      `json:"kind,omitempty"`
	Text        string    `json:"text,omitempty"`
	EntityLabel string    `json:"entityLabel,omitempty"`
	Color       string    `json:"color,omitempty"`
	Opacity     float64   `json:"opacity,omitempty"`
	Score       float64   `json:"score,omitempty"` // detector confidence, 0 = absent
	Start       int       `json:"start,omitempty"` // character offset into the source text
	End         int       `json:"end,omitempty"`
	Metadata    Metadata  `json:"metadata,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewAnnotationID builds a new globally unique annotation id in the
// form {kind}-{timestamp}-{random}.
func NewAnnotationID(kind Kind) string {
	prefix := strings.ToLower(string(kind.Normalized()))
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), uuid.NewString()[:8])
}

// SameBox reports whether another annotation occupies exactly the
// same bounding box. Kind and color are deliberately not compared.
func (a *Annotation) SameBox(other *Annotation) bool {
	return a.X == other.X && a.Y == other.Y && a.W == other.W && a.H == other.H
}

// Clone returns a copy safe to hand out to callers.
func (a *Annotation) Clone() *Annotation {
	c := *a
	if a.Metadata != nil {
		c.Metadata = make(Metadata, len(a.Metadata))
		for k, v := range a.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}
