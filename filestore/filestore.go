// Package filestore is the on-device object store behind the
// annotation store: one CBOR-encoded file per annotation under a root
// directory, keyed by annotation id. Writes are best-effort; the
// in-memory index stays authoritative for the session.
package filestore

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fxamacker/cbor/v2"

	"github.com/yasinhessnawi1/Hideme-sub004/helper"
	"github.com/yasinhessnawi1/Hideme-sub004/model"
)

const fileExtension = ".cbor"

// Store is a directory-backed annotation object store. Safe for
// concurrent use; bulk deletes scan and decode every record, which is
// acceptable because they only run during housekeeping.
type Store struct {
	mu   sync.Mutex
	root string
}

// New creates a filestore rooted at the given directory. The directory
// is created on Open.
func New(root string) *Store {
	return &Store{root: root}
}

// Open creates the root directory if needed
func (s *Store) Open(ctx context.Context) error {
	if s.root == "" {
		return helper.NewError("open filestore", fmt.Errorf("root directory is empty"))
	}
	if err := os.MkdirAll(s.root, 0755); err != nil {
		return helper.NewError("create filestore directory", err)
	}
	return nil
}

// Put persists one annotation, overwriting any record with the same
// id. The record is written to a temporary file and renamed into place
// so a crash never leaves a truncated record behind.
func (s *Store) Put(ctx context.Context, annotation *model.Annotation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := cbor.Marshal(annotation)
	if err != nil {
		return helper.NewError("encode annotation", err)
	}

	path := s.path(annotation.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0644); err != nil {
		return helper.NewError("write annotation", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return helper.NewError("rename annotation", err)
	}
	return nil
}

// Delete removes one annotation by id. Missing ids are not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(id)); err != nil && !os.IsNotExist(err) {
		return helper.NewError("delete annotation", err)
	}
	return nil
}

// DeleteDocument removes every annotation of a document
func (s *Store) DeleteDocument(ctx context.Context, documentKey string) error {
	return s.deleteMatching(func(a *model.Annotation) bool {
		return a.DocumentKey == documentKey
	})
}

// DeletePage removes every annotation of one page of a document
func (s *Store) DeletePage(ctx context.Context, documentKey string, page int) error {
	return s.deleteMatching(func(a *model.Annotation) bool {
		return a.DocumentKey == documentKey && a.Page == page
	})
}

// DeleteKind removes every annotation of a kind across all documents
func (s *Store) DeleteKind(ctx context.Context, kind model.Kind) error {
	return s.deleteMatching(func(a *model.Annotation) bool {
		return a.Kind.Normalized() == kind.Normalized()
	})
}

// DeleteAll clears the filestore entirely
func (s *Store) DeleteAll(ctx context.Context) error {
	return s.deleteMatching(func(*model.Annotation) bool { return true })
}

// LoadAll returns every persisted annotation. Files that no longer
// decode are skipped rather than failing the whole hydration.
func (s *Store) LoadAll(ctx context.Context) ([]*model.Annotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	paths, err := s.recordPaths()
	if err != nil {
		return nil, err
	}

	var annotations []*model.Annotation
	for _, path := range paths {
		annotation, err := readRecord(path)
		if err != nil {
			continue
		}
		annotations = append(annotations, annotation)
	}
	return annotations, nil
}

// Close releases nothing; the filestore holds no open handles
func (s *Store) Close() error {
	return nil
}

func (s *Store) deleteMatching(matches func(*model.Annotation) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	paths, err := s.recordPaths()
	if err != nil {
		return err
	}

	for _, path := range paths {
		annotation, err := readRecord(path)
		if err != nil {
			continue
		}
		if !matches(annotation) {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return helper.NewError("delete annotation", err)
		}
	}
	return nil
}

func (s *Store) recordPaths() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, helper.NewError("read filestore directory", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExtension) {
			continue
		}
		paths = append(paths, filepath.Join(s.root, entry.Name()))
	}
	return paths, nil
}

func readRecord(path string) (*model.Annotation, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	annotation := &model.Annotation{}
	if err := cbor.Unmarshal(b, annotation); err != nil {
		return nil, err
	}
	return annotation, nil
}

// path maps an id to its record file, escaping characters that are not
// filesystem safe. Generated ids never need escaping.
func (s *Store) path(id string) string {
	return filepath.Join(s.root, url.PathEscape(id)+fileExtension)
}
