// services/content_store.go - Versioned get/put of site content documents
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"shelleylegion/eventstatus"
	"shelleylegion/models"
	"shelleylegion/storage"

	"github.com/google/uuid"
)

var (
	ErrUnknownDocument = errors.New("unknown content document")
	ErrNotList         = errors.New("document has no entries")
	ErrEntryNotFound   = errors.New("entry not found")
	// ErrConflict means the document changed since the caller read it.
	ErrConflict = errors.New("content was changed since it was loaded; reload and retry")
	// ErrStorage wraps every backing medium failure.
	ErrStorage = errors.New("content storage unavailable")
)

// FallbackStats records how often reads were answered with default content.
type FallbackStats struct {
	Count        int64               `json:"count"`
	LastDocument models.DocumentName `json:"lastDocument,omitempty"`
	LastReason   string              `json:"lastReason,omitempty"`
	LastAt       time.Time           `json:"lastAt,omitempty"`
}

// ContentStore reads and writes content documents on a storage backend.
// It keeps no copy of any document between calls.
type ContentStore struct {
	backend   storage.Backend
	validator *ContentValidator
	timeout   time.Duration
	newID     func() string

	mu        sync.Mutex
	fallbacks FallbackStats
}

// NewContentStore wraps backend. Every backend call is bounded by timeout.
func NewContentStore(backend storage.Backend, timeout time.Duration) *ContentStore {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ContentStore{
		backend:   backend,
		validator: NewContentValidator(),
		timeout:   timeout,
		newID:     uuid.NewString,
	}
}

// BackendName reports which backing medium is in use.
func (s *ContentStore) BackendName() string {
	return s.backend.Name()
}

// Fallbacks returns a snapshot of fallback activity.
func (s *ContentStore) Fallbacks() FallbackStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fallbacks
}

// Read returns the document for viewers. Whenever the backend cannot supply
// it the default document is returned instead and the substitution logged.
func (s *ContentStore) Read(ctx context.Context, name models.DocumentName) (*models.ContentDocument, error) {
	doc, err := s.Load(ctx, name)
	if errors.Is(err, ErrStorage) {
		return s.fallback(name, err)
	}
	return doc, err
}

// Load returns the document for editing. A document that was never saved
// comes back as the default carrying storage.AbsentVersion, so the first
// save based on it is create-only. Any other backend failure is an
// ErrStorage so an editor never starts from defaults by accident.
func (s *ContentStore) Load(ctx context.Context, name models.DocumentName) (*models.ContentDocument, error) {
	if !known(name) {
		return nil, ErrUnknownDocument
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	obj, err := s.backend.GetObject(ctx, name.FileName())
	if errors.Is(err, storage.ErrNotFound) {
		return s.fallback(name, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrStorage, name, err)
	}

	content, err := DecodeContent(name, obj.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: stored %s is malformed: %v", ErrStorage, name, err)
	}
	sortContent(content)

	return &models.ContentDocument{
		Name:         name,
		Path:         name.FileName(),
		Content:      content,
		VersionToken: obj.Version,
	}, nil
}

func (s *ContentStore) fallback(name models.DocumentName, reason error) (*models.ContentDocument, error) {
	content, err := DefaultContent(name)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.fallbacks.Count++
	s.fallbacks.LastDocument = name
	s.fallbacks.LastReason = reason.Error()
	s.fallbacks.LastAt = time.Now()
	s.mu.Unlock()

	doc := &models.ContentDocument{
		Name:     name,
		Path:     name.FileName(),
		Content:  content,
		Fallback: true,
	}
	if errors.Is(reason, storage.ErrNotFound) {
		log.Printf("ℹ️  %s not saved yet on %s backend, serving default content", name, s.backend.Name())
		doc.VersionToken = storage.AbsentVersion
	} else {
		log.Printf("⚠️  Serving default %s content: %v", name, reason)
	}
	return doc, nil
}

// Write replaces a whole document. raw is the JSON content. When
// expectedVersion is non-empty the write only succeeds if the stored
// document still has that version; storage.AbsentVersion only succeeds if
// nothing is stored yet. Callers must have verified the admin
// credential already.
func (s *ContentStore) Write(ctx context.Context, name models.DocumentName, raw []byte, expectedVersion string) (*models.ContentDocument, error) {
	if !known(name) {
		return nil, ErrUnknownDocument
	}
	content, err := DecodeContent(name, raw)
	if err != nil {
		return nil, err
	}
	return s.put(ctx, name, content, expectedVersion)
}

// UpsertEntry replaces the list entry with the given id, or appends it when
// no entry has that id. The rest of the document is left as stored.
func (s *ContentStore) UpsertEntry(ctx context.Context, name models.DocumentName, id string, raw []byte, expectedVersion string) (*models.ContentDocument, error) {
	doc, err := s.loadForEntryEdit(ctx, name, expectedVersion)
	if err != nil {
		return nil, err
	}

	id = strings.TrimSpace(id)
	if id == "" {
		id = s.newID()
	}

	badEntry := func(err error) error {
		return &ValidationError{Document: name, Fields: []FieldError{{Field: "entry", Message: "is not valid JSON: " + err.Error()}}}
	}

	switch c := doc.Content.(type) {
	case *models.Roster:
		var p models.Player
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, badEntry(err)
		}
		p.ID = id
		c.Players = upsertEntry(c.Players, p)
	case *models.Schedule:
		var e models.Event
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, badEntry(err)
		}
		e.ID = id
		c.Events = upsertEntry(c.Events, e)
	case *models.TeamStats:
		var st models.TeamStat
		if err := json.Unmarshal(raw, &st); err != nil {
			return nil, badEntry(err)
		}
		st.ID = id
		c.TeamStats = upsertEntry(c.TeamStats, st)
	}

	return s.put(ctx, name, doc.Content, doc.VersionToken)
}

// DeleteEntry removes the list entry with the given id.
func (s *ContentStore) DeleteEntry(ctx context.Context, name models.DocumentName, id, expectedVersion string) (*models.ContentDocument, error) {
	doc, err := s.loadForEntryEdit(ctx, name, expectedVersion)
	if err != nil {
		return nil, err
	}

	var found bool
	switch c := doc.Content.(type) {
	case *models.Roster:
		c.Players, found = deleteEntry(c.Players, id)
	case *models.Schedule:
		c.Events, found = deleteEntry(c.Events, id)
	case *models.TeamStats:
		c.TeamStats, found = deleteEntry(c.TeamStats, id)
	}
	if !found {
		return nil, ErrEntryNotFound
	}

	return s.put(ctx, name, doc.Content, doc.VersionToken)
}

// RefreshStatuses stores "completed" for every upcoming event whose date
// is before now's day. Today's events and completed or cancelled ones are
// left as stored. It returns the number of events changed; when that is
// zero nothing is written and the loaded document is returned.
func (s *ContentStore) RefreshStatuses(ctx context.Context, now time.Time, expectedVersion string) (*models.ContentDocument, int, error) {
	doc, err := s.loadForEntryEdit(ctx, models.DocSchedule, expectedVersion)
	if err != nil {
		return nil, 0, err
	}

	schedule := doc.Content.(*models.Schedule)
	changed := 0
	for i := range schedule.Events {
		e := &schedule.Events[i]
		if eventstatus.Status(e.Status) != eventstatus.Upcoming {
			continue
		}
		if eventstatus.ResolveEvent(eventstatus.Upcoming, e.ISODate, e.Date, now) == eventstatus.Completed {
			e.Status = string(eventstatus.Completed)
			changed++
		}
	}
	if changed == 0 {
		return doc, 0, nil
	}

	saved, err := s.put(ctx, models.DocSchedule, schedule, doc.VersionToken)
	if err != nil {
		return nil, 0, err
	}
	return saved, changed, nil
}

func (s *ContentStore) loadForEntryEdit(ctx context.Context, name models.DocumentName, expectedVersion string) (*models.ContentDocument, error) {
	if !known(name) {
		return nil, ErrUnknownDocument
	}
	if !name.IsList() {
		return nil, ErrNotList
	}
	doc, err := s.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	if expectedVersion != "" && expectedVersion != doc.VersionToken {
		return nil, ErrConflict
	}
	return doc, nil
}

func (s *ContentStore) put(ctx context.Context, name models.DocumentName, content any, expectedVersion string) (*models.ContentDocument, error) {
	normalizeContent(content, s.newID)
	if err := s.validator.Validate(name, content); err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", name, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	version, err := s.backend.PutObject(ctx, name.FileName(), data, expectedVersion)
	if errors.Is(err, storage.ErrVersionMismatch) {
		log.Printf("⛔ Rejected stale write to %s (expected version %s)", name, expectedVersion)
		return nil, ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("%w: write %s: %v", ErrStorage, name, err)
	}

	log.Printf("💾 Saved %s on %s backend (version %s)", name, s.backend.Name(), version)

	return &models.ContentDocument{
		Name:         name,
		Path:         name.FileName(),
		Content:      content,
		VersionToken: version,
	}, nil
}

// List reports which documents are stored and their current versions.
func (s *ContentStore) List(ctx context.Context) ([]models.DocumentSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	keys, err := s.backend.ListObjects(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("%w: list: %v", ErrStorage, err)
	}
	stored := make(map[string]bool, len(keys))
	for _, k := range keys {
		stored[k] = true
	}

	summaries := make([]models.DocumentSummary, 0, len(models.DocumentNames))
	for _, name := range models.DocumentNames {
		sum := models.DocumentSummary{Name: name, Path: name.FileName(), Stored: stored[name.FileName()]}
		if sum.Stored {
			obj, err := s.backend.GetObject(ctx, name.FileName())
			if err != nil {
				return nil, fmt.Errorf("%w: stat %s: %v", ErrStorage, name, err)
			}
			sum.VersionToken = obj.Version
		}
		summaries = append(summaries, sum)
	}
	return summaries, nil
}

func known(name models.DocumentName) bool {
	for _, n := range models.DocumentNames {
		if n == name {
			return true
		}
	}
	return false
}

type listEntry interface {
	EntryID() string
	SetEntryID(string)
	EntryOrder() int
	SetEntryOrder(int)
}

// normalizeContent gives every new entry an id and makes displayOrder the
// submitted list position.
func normalizeContent(content any, newID func() string) {
	switch c := content.(type) {
	case *models.Roster:
		normalizeEntries(c.Players, newID)
	case *models.Schedule:
		normalizeEntries(c.Events, newID)
	case *models.TeamStats:
		normalizeEntries(c.TeamStats, newID)
	}
}

func normalizeEntries[T any, P interface {
	*T
	listEntry
}](items []T, newID func() string) {
	for i := range items {
		e := P(&items[i])
		if strings.TrimSpace(e.EntryID()) == "" {
			e.SetEntryID(newID())
		}
		e.SetEntryOrder(i)
	}
}

// sortContent orders stored entries by displayOrder.
func sortContent(content any) {
	switch c := content.(type) {
	case *models.Roster:
		sortEntries(c.Players)
	case *models.Schedule:
		sortEntries(c.Events)
	case *models.TeamStats:
		sortEntries(c.TeamStats)
	}
}

func sortEntries[T any, P interface {
	*T
	listEntry
}](items []T) {
	sort.SliceStable(items, func(i, j int) bool {
		return P(&items[i]).EntryOrder() < P(&items[j]).EntryOrder()
	})
}

func upsertEntry[T any, P interface {
	*T
	listEntry
}](items []T, entry T) []T {
	id := P(&entry).EntryID()
	for i := range items {
		if P(&items[i]).EntryID() == id {
			items[i] = entry
			return items
		}
	}
	return append(items, entry)
}

func deleteEntry[T any, P interface {
	*T
	listEntry
}](items []T, id string) ([]T, bool) {
	for i := range items {
		if P(&items[i]).EntryID() == id {
			return append(items[:i], items[i+1:]...), true
		}
	}
	return items, false
}
