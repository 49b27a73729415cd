// Package store implements the annotation store: the single source of
// truth for highlight records across all open documents. The in-memory
// three-level index (document -> page -> id) is authoritative for the
// session; a Backend mirrors it durably with asynchronous writes,
// serialized in issue order, so UI feedback never blocks on storage.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/yasinhessnawi1/Hideme-sub004/core/match"
	"github.com/yasinhessnawi1/Hideme-sub004/model"
)

// Store is the authoritative annotation index. All exported methods
// are safe for concurrent use; each appears atomic relative to the
// others. One instance owns its backend exclusively.
type Store struct {
	mu          sync.Mutex
	index       map[string]map[int]map[string]*model.Annotation
	changeSubs  []changeSubscriber
	removalSubs []removalSubscriber
	nextSubID   int
	backend     Backend
	log         *slog.Logger

	initOnce sync.Once
	writes   sync.WaitGroup

	queueMu  sync.Mutex
	queue    []queuedWrite
	draining bool
}

type queuedWrite struct {
	what    string
	fn      func(context.Context, Backend) error
	backend Backend
}

type pageKey struct {
	documentKey string
	page        int
}

// New creates a store over the given backend. A nil backend means
// memory-only operation. Initialization is lazy: the backend is opened
// and the index hydrated on the first operation.
func New(backend Backend, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		index:   make(map[string]map[int]map[string]*model.Annotation),
		backend: backend,
		log:     logger,
	}
}

// ensureInit opens the backend and hydrates the index, exactly once.
// Backend failure degrades to memory-only instead of surfacing: the
// store must stay usable when storage is broken.
func (s *Store) ensureInit(ctx context.Context) {
	s.initOnce.Do(func() {
		if s.backend == nil {
			return
		}
		if err := s.backend.Open(ctx); err != nil {
			s.log.Warn("Annotation backend unavailable, continuing memory-only", slog.Any("error", err))
			s.mu.Lock()
			s.backend = nil
			s.mu.Unlock()
			return
		}

		records, err := s.backend.LoadAll(ctx)
		if err != nil {
			s.log.Warn("Could not hydrate annotations from backend", slog.Any("error", err))
			return
		}

		s.mu.Lock()
		for _, record := range records {
			if record == nil || record.ID == "" {
				continue
			}
			s.insertLocked(record)
		}
		s.mu.Unlock()

		if len(records) > 0 {
			s.log.Info("Hydrated annotations from backend", slog.Int("count", len(records)))
		}
	})
}

// Close waits for pending persistence writes and releases the backend.
func (s *Store) Close() error {
	s.writes.Wait()

	s.mu.Lock()
	backend := s.backend
	s.backend = nil
	s.mu.Unlock()

	if backend == nil {
		return nil
	}
	return backend.Close()
}

// Add inserts one annotation, assigning id, document key and creation
// time when missing, and notifies subscribers. It never fails on valid
// input; geometry is accepted as-is. The assigned id is written back
// to the input record and returned.
func (s *Store) Add(ctx context.Context, annotation *model.Annotation) string {
	s.ensureInit(ctx)

	s.mu.Lock()
	prepare(annotation)
	record := annotation.Clone()
	s.insertLocked(record)
	s.mu.Unlock()

	s.persistAsync("put", func(ctx context.Context, b Backend) error {
		return b.Put(ctx, record.Clone())
	})

	s.notify(Change{DocumentKey: record.DocumentKey, Page: record.Page, Kind: record.Kind})
	return record.ID
}

// AddMany inserts a batch of annotations. Before each insert, any
// existing record of the same document occupying exactly the same box
// is removed first, so rapid repeated gestures do not double manual
// highlights (kind and color are deliberately ignored by this dedup).
// Subscribers are notified once per distinct (documentKey, page)
// touched, for each kind present in the batch. Persistence writes are
// queued per record; the in-memory state is final on return.
func (s *Store) AddMany(ctx context.Context, annotations []*model.Annotation) []string {
	s.ensureInit(ctx)

	ids := make([]string, 0, len(annotations))
	var inserted []*model.Annotation
	var displacedIDs []string
	var touched []pageKey
	touchedSeen := map[pageKey]bool{}
	var kinds []model.Kind
	kindSeen := map[model.Kind]bool{}

	touch := func(documentKey string, page int) {
		key := pageKey{documentKey, page}
		if !touchedSeen[key] {
			touchedSeen[key] = true
			touched = append(touched, key)
		}
	}

	s.mu.Lock()
	for _, annotation := range annotations {
		if annotation == nil {
			continue
		}
		prepare(annotation)
		record := annotation.Clone()

		for _, existing := range s.sameBoxLocked(record) {
			s.removeLocked(existing)
			displacedIDs = append(displacedIDs, existing.ID)
			touch(existing.DocumentKey, existing.Page)
		}

		s.insertLocked(record)
		inserted = append(inserted, record)
		ids = append(ids, record.ID)
		touch(record.DocumentKey, record.Page)
		if !kindSeen[record.Kind] {
			kindSeen[record.Kind] = true
			kinds = append(kinds, record.Kind)
		}
	}
	s.mu.Unlock()

	for _, id := range displacedIDs {
		id := id
		s.persistAsync("delete", func(ctx context.Context, b Backend) error {
			return b.Delete(ctx, id)
		})
	}
	for _, record := range inserted {
		record := record
		s.persistAsync("put", func(ctx context.Context, b Backend) error {
			return b.Put(ctx, record.Clone())
		})
	}

	changes := make([]Change, 0, len(touched)*len(kinds))
	for _, key := range touched {
		for _, kind := range kinds {
			changes = append(changes, Change{DocumentKey: key.documentKey, Page: key.page, Kind: kind})
		}
	}
	s.notify(changes...)

	return ids
}

// Remove deletes one annotation by id, scanning the whole index.
// Returns false when the id is unknown; a second call with the same id
// is a no-op. Emits a removal event with the record's detail.
func (s *Store) Remove(ctx context.Context, id string) bool {
	s.ensureInit(ctx)

	s.mu.Lock()
	record, ok := s.findLocked(id)
	if ok {
		s.removeLocked(record)
	}
	s.mu.Unlock()

	if !ok {
		return false
	}

	s.persistAsync("delete", func(ctx context.Context, b Backend) error {
		return b.Delete(ctx, id)
	})

	s.notify(Change{DocumentKey: record.DocumentKey, Page: record.Page, Kind: record.Kind})
	s.publishRemovals(Removal{
		ID:          record.ID,
		DocumentKey: record.DocumentKey,
		Page:        record.Page,
		Kind:        record.Kind,
		Timestamp:   time.Now(),
	})
	return true
}

// RemoveMany deletes a set of ids, batching subscriber notifications
// per affected (documentKey, page, kind). Returns true when every id
// was found; an empty input returns true immediately.
func (s *Store) RemoveMany(ctx context.Context, ids []string) bool {
	if len(ids) == 0 {
		return true
	}
	s.ensureInit(ctx)

	s.mu.Lock()
	var removed []*model.Annotation
	allFound := true
	for _, id := range ids {
		record, ok := s.findLocked(id)
		if !ok {
			allFound = false
			continue
		}
		s.removeLocked(record)
		removed = append(removed, record)
	}
	s.mu.Unlock()

	s.finishRemoval(removed)
	return allFound && len(removed) > 0
}

// finishRemoval issues backend deletes, batched change notifications
// and per-record removal events for records already taken out of the
// index. Call without holding the lock.
func (s *Store) finishRemoval(removed []*model.Annotation) {
	if len(removed) == 0 {
		return
	}

	now := time.Now()
	var changes []Change
	changeSeen := map[Change]bool{}
	removals := make([]Removal, 0, len(removed))

	for _, record := range removed {
		id := record.ID
		s.persistAsync("delete", func(ctx context.Context, b Backend) error {
			return b.Delete(ctx, id)
		})

		change := Change{DocumentKey: record.DocumentKey, Page: record.Page, Kind: record.Kind}
		if !changeSeen[change] {
			changeSeen[change] = true
			changes = append(changes, change)
		}
		removals = append(removals, Removal{
			ID:          record.ID,
			DocumentKey: record.DocumentKey,
			Page:        record.Page,
			Kind:        record.Kind,
			Timestamp:   now,
		})
	}

	s.notify(changes...)
	s.publishRemovals(removals...)
}

// ForPage returns copies of the annotations of one page, ordered by
// creation time (id as tie-breaker).
func (s *Store) ForPage(ctx context.Context, documentKey string, page int) []*model.Annotation {
	s.ensureInit(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneSorted(s.index[normalizeDocumentKey(documentKey)][page])
}

// ForDocument returns copies of all annotations of a document, ordered
// by page, then creation time.
func (s *Store) ForDocument(ctx context.Context, documentKey string) []*model.Annotation {
	s.ensureInit(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.forDocumentLocked(normalizeDocumentKey(documentKey))
}

func (s *Store) forDocumentLocked(documentKey string) []*model.Annotation {
	docPages := s.index[documentKey]
	pages := make([]int, 0, len(docPages))
	for page := range docPages {
		pages = append(pages, page)
	}
	sort.Ints(pages)

	var out []*model.Annotation
	for _, page := range pages {
		out = append(out, cloneSorted(docPages[page])...)
	}
	return out
}

// ByKind returns copies of a document's annotations of one kind.
// Records without a kind count as MANUAL.
func (s *Store) ByKind(ctx context.Context, documentKey string, kind model.Kind) []*model.Annotation {
	return s.filterDocument(ctx, documentKey, func(a *model.Annotation) bool {
		return a.Kind.Normalized() == kind.Normalized()
	})
}

// ByProperty returns copies of a document's annotations whose named
// property has the given value. Known fields are matched by their
// string form; unknown names fall back to the metadata map. An unknown
// property matches nothing.
func (s *Store) ByProperty(ctx context.Context, documentKey string, property string, value string) []*model.Annotation {
	return s.filterDocument(ctx, documentKey, func(a *model.Annotation) bool {
		v, ok := propertyValue(a, property)
		return ok && v == value
	})
}

// ByText returns copies of a document's annotations whose covered text
// equals the given text, case-insensitively and ignoring surrounding
// whitespace.
func (s *Store) ByText(ctx context.Context, documentKey string, text string) []*model.Annotation {
	want := strings.ToLower(strings.TrimSpace(text))
	return s.filterDocument(ctx, documentKey, func(a *model.Annotation) bool {
		return strings.ToLower(strings.TrimSpace(a.Text)) == want
	})
}

func (s *Store) filterDocument(ctx context.Context, documentKey string, keep func(*model.Annotation) bool) []*model.Annotation {
	s.ensureInit(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*model.Annotation
	for _, record := range s.forDocumentLocked(normalizeDocumentKey(documentKey)) {
		if keep(record) {
			out = append(out, record)
		}
	}
	return out
}

// RemoveForPage deletes every annotation of one page, using the
// backend's page-level bulk path.
func (s *Store) RemoveForPage(ctx context.Context, documentKey string, page int) bool {
	s.ensureInit(ctx)
	documentKey = normalizeDocumentKey(documentKey)

	s.mu.Lock()
	var removed []*model.Annotation
	for _, record := range s.index[documentKey][page] {
		removed = append(removed, record)
	}
	for _, record := range removed {
		s.removeLocked(record)
	}
	s.mu.Unlock()

	if len(removed) == 0 {
		return true
	}

	s.persistAsync("delete page", func(ctx context.Context, b Backend) error {
		return b.DeletePage(ctx, documentKey, page)
	})
	s.finishRemovalWithoutBackend(removed)
	return true
}

// RemoveForDocument deletes every annotation of a document, using the
// backend's document-level bulk path.
func (s *Store) RemoveForDocument(ctx context.Context, documentKey string) bool {
	s.ensureInit(ctx)
	documentKey = normalizeDocumentKey(documentKey)

	s.mu.Lock()
	removed := s.forDocumentLockedRefs(documentKey)
	delete(s.index, documentKey)
	s.mu.Unlock()

	if len(removed) == 0 {
		return true
	}

	s.persistAsync("delete document", func(ctx context.Context, b Backend) error {
		return b.DeleteDocument(ctx, documentKey)
	})
	s.finishRemovalWithoutBackend(removed)
	return true
}

func (s *Store) forDocumentLockedRefs(documentKey string) []*model.Annotation {
	var out []*model.Annotation
	for _, byID := range s.index[documentKey] {
		for _, record := range byID {
			out = append(out, record)
		}
	}
	return out
}

// finishRemovalWithoutBackend is finishRemoval for operations that
// already scheduled a bulk backend delete.
func (s *Store) finishRemovalWithoutBackend(removed []*model.Annotation) {
	now := time.Now()
	var changes []Change
	changeSeen := map[Change]bool{}
	removals := make([]Removal, 0, len(removed))

	for _, record := range removed {
		change := Change{DocumentKey: record.DocumentKey, Page: record.Page, Kind: record.Kind}
		if !changeSeen[change] {
			changeSeen[change] = true
			changes = append(changes, change)
		}
		removals = append(removals, Removal{
			ID:          record.ID,
			DocumentKey: record.DocumentKey,
			Page:        record.Page,
			Kind:        record.Kind,
			Timestamp:   now,
		})
	}

	s.notify(changes...)
	s.publishRemovals(removals...)
}

// RemoveByKind deletes a document's annotations of one kind
func (s *Store) RemoveByKind(ctx context.Context, documentKey string, kind model.Kind) bool {
	return s.RemoveMany(ctx, collectIDs(s.ByKind(ctx, documentKey, kind)))
}

// RemoveByProperty deletes a document's annotations matching a property value
func (s *Store) RemoveByProperty(ctx context.Context, documentKey string, property string, value string) bool {
	return s.RemoveMany(ctx, collectIDs(s.ByProperty(ctx, documentKey, property, value)))
}

// RemoveByPropertyAcrossDocuments deletes matching annotations from
// each of the listed documents.
func (s *Store) RemoveByPropertyAcrossDocuments(ctx context.Context, property string, value string, documents []string) bool {
	var ids []string
	for _, documentKey := range documents {
		ids = append(ids, collectIDs(s.ByProperty(ctx, documentKey, property, value))...)
	}
	return s.RemoveMany(ctx, ids)
}

// RemoveByPosition deletes every annotation across the given documents
// whose bounding box fuzzily matches the query box. A nil config uses
// the default thresholds.
func (s *Store) RemoveByPosition(ctx context.Context, documents []string, query match.Rect, config *model.MatchConfig) bool {
	s.ensureInit(ctx)

	s.mu.Lock()
	var ids []string
	for _, documentKey := range documents {
		for _, byID := range s.index[normalizeDocumentKey(documentKey)] {
			for id, record := range byID {
				if match.Matches(query, match.FromAnnotation(record), config) {
					ids = append(ids, id)
				}
			}
		}
	}
	s.mu.Unlock()

	return s.RemoveMany(ctx, ids)
}

// RemoveAll clears the store and its backend entirely, with a single
// store-wide notification.
func (s *Store) RemoveAll(ctx context.Context) bool {
	s.ensureInit(ctx)

	s.mu.Lock()
	s.index = make(map[string]map[int]map[string]*model.Annotation)
	s.mu.Unlock()

	s.persistAsync("delete all", func(ctx context.Context, b Backend) error {
		return b.DeleteAll(ctx)
	})

	s.notify(Change{})
	return true
}

// RemoveAllByKind clears one kind across all documents, with a single
// kind-scoped notification.
func (s *Store) RemoveAllByKind(ctx context.Context, kind model.Kind) bool {
	s.ensureInit(ctx)

	s.mu.Lock()
	var removed []*model.Annotation
	for _, docPages := range s.index {
		for _, byID := range docPages {
			for _, record := range byID {
				if record.Kind.Normalized() == kind.Normalized() {
					removed = append(removed, record)
				}
			}
		}
	}
	for _, record := range removed {
		s.removeLocked(record)
	}
	s.mu.Unlock()

	s.persistAsync("delete kind", func(ctx context.Context, b Backend) error {
		return b.DeleteKind(ctx, kind)
	})

	s.notify(Change{Kind: kind})
	return true
}

// persistAsync schedules a best-effort backend write. Failures are
// logged, never surfaced: memory is authoritative for the session.
// Writes execute on a single drain goroutine in issue order, so a Put
// and a later Delete for the same id can never invert on the backend.
func (s *Store) persistAsync(what string, fn func(context.Context, Backend) error) {
	s.mu.Lock()
	backend := s.backend
	s.mu.Unlock()
	if backend == nil {
		return
	}

	s.writes.Add(1)
	s.queueMu.Lock()
	s.queue = append(s.queue, queuedWrite{what: what, fn: fn, backend: backend})
	start := !s.draining
	s.draining = true
	s.queueMu.Unlock()

	if start {
		go s.drainWrites()
	}
}

// drainWrites executes queued backend writes one at a time, in FIFO
// order, and exits when the queue empties. At most one drainer runs.
func (s *Store) drainWrites() {
	for {
		s.queueMu.Lock()
		if len(s.queue) == 0 {
			s.draining = false
			s.queueMu.Unlock()
			return
		}
		write := s.queue[0]
		s.queue = s.queue[1:]
		s.queueMu.Unlock()

		if err := write.fn(context.Background(), write.backend); err != nil {
			s.log.Warn("Annotation persistence failed", slog.String("operation", write.what), slog.Any("error", err))
		}
		s.writes.Done()
	}
}

// prepare fills in defaults on a record about to be stored: sentinel
// document key, generated id and creation timestamp. Existing values
// are kept; ids are immutable once assigned.
func prepare(annotation *model.Annotation) {
	if annotation.DocumentKey == "" {
		annotation.DocumentKey = model.DefaultDocumentKey
	}
	if annotation.ID == "" {
		annotation.ID = model.NewAnnotationID(annotation.Kind)
	}
	if annotation.CreatedAt.IsZero() {
		annotation.CreatedAt = time.Now()
	}
}

func (s *Store) insertLocked(record *model.Annotation) {
	docPages, ok := s.index[record.DocumentKey]
	if !ok {
		docPages = make(map[int]map[string]*model.Annotation)
		s.index[record.DocumentKey] = docPages
	}
	byID, ok := docPages[record.Page]
	if !ok {
		byID = make(map[string]*model.Annotation)
		docPages[record.Page] = byID
	}
	byID[record.ID] = record
}

// removeLocked deletes a record and prunes now-empty page and document
// levels, keeping the three-level index free of empty maps.
func (s *Store) removeLocked(record *model.Annotation) {
	docPages, ok := s.index[record.DocumentKey]
	if !ok {
		return
	}
	byID, ok := docPages[record.Page]
	if !ok {
		return
	}
	delete(byID, record.ID)
	if len(byID) == 0 {
		delete(docPages, record.Page)
	}
	if len(docPages) == 0 {
		delete(s.index, record.DocumentKey)
	}
}

func (s *Store) findLocked(id string) (*model.Annotation, bool) {
	for _, docPages := range s.index {
		for _, byID := range docPages {
			if record, ok := byID[id]; ok {
				return record, true
			}
		}
	}
	return nil, false
}

// sameBoxLocked returns the records of a document occupying exactly
// the same box as the given record, on any page.
func (s *Store) sameBoxLocked(record *model.Annotation) []*model.Annotation {
	var out []*model.Annotation
	for _, byID := range s.index[record.DocumentKey] {
		for _, existing := range byID {
			if existing.SameBox(record) {
				out = append(out, existing)
			}
		}
	}
	return out
}

func normalizeDocumentKey(documentKey string) string {
	if documentKey == "" {
		return model.DefaultDocumentKey
	}
	return documentKey
}

func cloneSorted(byID map[string]*model.Annotation) []*model.Annotation {
	out := make([]*model.Annotation, 0, len(byID))
	for _, record := range byID {
		out = append(out, record.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func collectIDs(records []*model.Annotation) []string {
	ids := make([]string, 0, len(records))
	for _, record := range records {
		ids = append(ids, record.ID)
	}
	return ids
}

func propertyValue(a *model.Annotation, property string) (string, bool) {
	switch property {
	case "id":
		return a.ID, true
	case "documentKey":
		return a.DocumentKey, true
	case "page":
		return strconv.Itoa(a.Page), true
	case "kind":
		return string(a.Kind.Normalized()), true
	case "text":
		return a.Text, true
	case "entityLabel":
		return a.EntityLabel, true
	case "color":
		return a.Color, true
	case "x":
		return formatFloat(a.X), true
	case "y":
		return formatFloat(a.Y), true
	case "w":
		return formatFloat(a.W), true
	case "h":
		return formatFloat(a.H), true
	case "opacity":
		return formatFloat(a.Opacity), true
	case "score":
		return formatFloat(a.Score), true
	case "start":
		return strconv.Itoa(a.Start), true
	case "end":
		return strconv.Itoa(a.End), true
	default:
		if v, ok := a.Metadata[property]; ok {
			return fmt.Sprint(v), true
		}
		return "", false
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
