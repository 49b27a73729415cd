package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yasinhessnawi1/Hideme-sub004/model"
)

func newTestStore(t *testing.T) *Store {
	s := New(t.TempDir())
	require.NoError(t, s.Open(context.Background()))
	return s
}

func record(id, documentKey string, page int, kind model.Kind) *model.Annotation {
	return &model.Annotation{
		ID:          id,
		DocumentKey: documentKey,
		Page:        page,
		X:           10,
		Y:           20,
		W:           30,
		H:           40,
		Kind:        kind,
		Text:        "covered text",
		CreatedAt:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestOpen(t *testing.T) {
	t.Run("Creates the root directory", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "nested", "annotations")
		s := New(root)

		require.NoError(t, s.Open(context.Background()))

		info, err := os.Stat(root)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("Empty root is an error", func(t *testing.T) {
		s := New("")

		err := s.Open(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "error in open filestore")
	})
}

func TestPutAndLoadAll(t *testing.T) {
	ctx := context.Background()

	t.Run("Round-trips a record", func(t *testing.T) {
		s := newTestStore(t)
		original := record("manual-1-aaa", "doc1", 3, model.KindManual)
		original.Metadata = model.Metadata{"origin": "test"}

		require.NoError(t, s.Put(ctx, original))

		records, err := s.LoadAll(ctx)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, original.ID, records[0].ID)
		assert.Equal(t, original.Text, records[0].Text)
		assert.Equal(t, original.W, records[0].W)
		assert.True(t, original.CreatedAt.Equal(records[0].CreatedAt), "Expected the creation time to survive the round-trip")
	})

	t.Run("Put overwrites the record with the same id", func(t *testing.T) {
		s := newTestStore(t)
		first := record("manual-1-aaa", "doc1", 3, model.KindManual)
		require.NoError(t, s.Put(ctx, first))

		updated := record("manual-1-aaa", "doc1", 3, model.KindManual)
		updated.Text = "updated"
		require.NoError(t, s.Put(ctx, updated))

		records, err := s.LoadAll(ctx)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "updated", records[0].Text)
	})

	t.Run("LoadAll on an empty store returns nothing", func(t *testing.T) {
		s := newTestStore(t)

		records, err := s.LoadAll(ctx)

		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("LoadAll skips undecodable files", func(t *testing.T) {
		s := newTestStore(t)
		require.NoError(t, s.Put(ctx, record("manual-1-aaa", "doc1", 1, model.KindManual)))
		require.NoError(t, os.WriteFile(filepath.Join(s.root, "broken.cbor"), []byte("not cbor at all"), 0644))

		records, err := s.LoadAll(ctx)

		require.NoError(t, err)
		assert.Len(t, records, 1, "Expected the broken file to be skipped")
	})

	t.Run("Ignores files without the record extension", func(t *testing.T) {
		s := newTestStore(t)
		require.NoError(t, os.WriteFile(filepath.Join(s.root, "notes.txt"), []byte("hello"), 0644))

		records, err := s.LoadAll(ctx)

		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("Removes a record by id", func(t *testing.T) {
		s := newTestStore(t)
		require.NoError(t, s.Put(ctx, record("manual-1-aaa", "doc1", 1, model.KindManual)))

		require.NoError(t, s.Delete(ctx, "manual-1-aaa"))

		records, err := s.LoadAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("Missing id is not an error", func(t *testing.T) {
		s := newTestStore(t)

		assert.NoError(t, s.Delete(ctx, "manual-1-missing"))
	})
}

func TestBulkDeletes(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T) *Store {
		s := newTestStore(t)
		require.NoError(t, s.Put(ctx, record("manual-1-aaa", "doc1", 1, model.KindManual)))
		require.NoError(t, s.Put(ctx, record("manual-1-bbb", "doc1", 2, model.KindManual)))
		require.NoError(t, s.Put(ctx, record("search-1-ccc", "doc1", 2, model.KindSearch)))
		require.NoError(t, s.Put(ctx, record("manual-1-ddd", "doc2", 1, model.KindManual)))
		return s
	}

	remainingIDs := func(t *testing.T, s *Store) []string {
		records, err := s.LoadAll(ctx)
		require.NoError(t, err)
		ids := make([]string, 0, len(records))
		for _, r := range records {
			ids = append(ids, r.ID)
		}
		return ids
	}

	t.Run("DeleteDocument removes only that document", func(t *testing.T) {
		s := seed(t)

		require.NoError(t, s.DeleteDocument(ctx, "doc1"))

		assert.ElementsMatch(t, []string{"manual-1-ddd"}, remainingIDs(t, s))
	})

	t.Run("DeletePage removes only that page", func(t *testing.T) {
		s := seed(t)

		require.NoError(t, s.DeletePage(ctx, "doc1", 2))

		assert.ElementsMatch(t, []string{"manual-1-aaa", "manual-1-ddd"}, remainingIDs(t, s))
	})

	t.Run("DeleteKind spans all documents", func(t *testing.T) {
		s := seed(t)

		require.NoError(t, s.DeleteKind(ctx, model.KindManual))

		assert.ElementsMatch(t, []string{"search-1-ccc"}, remainingIDs(t, s))
	})

	t.Run("DeleteKind treats untyped records as MANUAL", func(t *testing.T) {
		s := newTestStore(t)
		untyped := record("manual-1-aaa", "doc1", 1, "")
		require.NoError(t, s.Put(ctx, untyped))

		require.NoError(t, s.DeleteKind(ctx, model.KindManual))

		assert.Empty(t, remainingIDs(t, s))
	})

	t.Run("DeleteAll clears everything", func(t *testing.T) {
		s := seed(t)

		require.NoError(t, s.DeleteAll(ctx))

		assert.Empty(t, remainingIDs(t, s))
	})
}

func TestPath(t *testing.T) {
	t.Run("Escapes filesystem-unsafe ids", func(t *testing.T) {
		s := New(t.TempDir())
		require.NoError(t, s.Open(context.Background()))

		unsafe := record("weird/../id", "doc1", 1, model.KindManual)
		require.NoError(t, s.Put(context.Background(), unsafe))

		records, err := s.LoadAll(context.Background())
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "weird/../id", records[0].ID)
	})
}
