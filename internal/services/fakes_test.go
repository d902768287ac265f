package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AnshRaj112/serenify-journal/internal/models"
)

// memEntryStore mimics the Mongo store, including millisecond time
// precision on write.
type memEntryStore struct {
	mu        sync.Mutex
	entries   map[primitive.ObjectID]models.JournalEntry
	lastQuery EntryQuery
	insertErr error
}

func newMemEntryStore(seed ...models.JournalEntry) *memEntryStore {
	s := &memEntryStore{entries: map[primitive.ObjectID]models.JournalEntry{}}
	for _, e := range seed {
		s.entries[e.ID] = e
	}
	return s
}

func (s *memEntryStore) List(_ context.Context, q EntryQuery) ([]models.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastQuery = q
	out := []models.JournalEntry{}
	for _, e := range s.entries {
		if e.UserID != q.UserID {
			continue
		}
		if !q.From.IsZero() && e.CreatedAt.Before(q.From) {
			continue
		}
		if !q.To.IsZero() && !e.CreatedAt.Before(q.To) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memEntryStore) Get(_ context.Context, userID string, id primitive.ObjectID) (models.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok || e.UserID != userID {
		return models.JournalEntry{}, ErrNotFound
	}
	return e, nil
}

func (s *memEntryStore) Insert(_ context.Context, e models.JournalEntry) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return primitive.NilObjectID, s.insertErr
	}
	e.ID = primitive.NewObjectID()
	e.CreatedAt = e.CreatedAt.Truncate(time.Millisecond)
	e.UpdatedAt = e.UpdatedAt.Truncate(time.Millisecond)
	s.entries[e.ID] = e
	return e.ID, nil
}

func (s *memEntryStore) Replace(_ context.Context, e models.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.entries[e.ID]
	if !ok || cur.UserID != e.UserID {
		return ErrNotFound
	}
	e.UpdatedAt = e.UpdatedAt.Truncate(time.Millisecond)
	s.entries[e.ID] = e
	return nil
}

func (s *memEntryStore) Delete(_ context.Context, userID string, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok || e.UserID != userID {
		return ErrNotFound
	}
	delete(s.entries, id)
	return nil
}

type fakePublisher struct {
	events []EntryEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, ev EntryEvent) error {
	p.events = append(p.events, ev)
	return p.err
}

type fakePromptStore struct {
	listFn func(ctx context.Context, categories []string) ([]models.WritingPrompt, error)
}

func (f *fakePromptStore) ListByCategories(ctx context.Context, categories []string) ([]models.WritingPrompt, error) {
	return f.listFn(ctx, categories)
}

type fakeUserStore struct {
	createFn     func(ctx context.Context, u models.User) (models.User, error)
	getByEmailFn func(ctx context.Context, email string) (models.User, error)
	getByIDFn    func(ctx context.Context, id uuid.UUID) (models.User, error)
}

func (f *fakeUserStore) Create(ctx context.Context, u models.User) (models.User, error) {
	return f.createFn(ctx, u)
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return f.getByEmailFn(ctx, email)
}

func (f *fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	return f.getByIDFn(ctx, id)
}

type fakeSessions struct {
	createFn     func(ctx context.Context, userID uuid.UUID) (string, error)
	validateFn   func(ctx context.Context, token string) (uuid.UUID, bool, error)
	invalidateFn func(ctx context.Context, token string) error
}

func (f *fakeSessions) Create(ctx context.Context, userID uuid.UUID) (string, error) {
	return f.createFn(ctx, userID)
}

func (f *fakeSessions) Validate(ctx context.Context, token string) (uuid.UUID, bool, error) {
	return f.validateFn(ctx, token)
}

func (f *fakeSessions) Invalidate(ctx context.Context, token string) error {
	return f.invalidateFn(ctx, token)
}
