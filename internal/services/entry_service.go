package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/AnshRaj112/serenify-journal/internal/models"
	"github.com/AnshRaj112/serenify-journal/internal/richtext"
	"github.com/AnshRaj112/serenify-journal/pkg/utils"
)

// EntryInput is the writable part of an entry. A create with IsPrivate
// unset makes the entry private; an update with it unset keeps the current
// value.
type EntryInput struct {
	Title         string               `json:"title"`
	Content       string               `json:"content"`
	ContentFormat models.ContentFormat `json:"content_format"`
	Mood          string               `json:"mood"`
	ImageURL      string               `json:"image_url"`
	IsPrivate     *bool                `json:"is_private"`
}

// EntryService validates and persists entries. Writes return the stored
// row as re-read from the store and announce the change to listeners.
type EntryService struct {
	store     EntryStore
	sanitizer *richtext.Sanitizer
	events    EventPublisher
	log       *zap.Logger
	now       func() time.Time
}

// NewEntryService wires an entry service. events may be nil.
func NewEntryService(store EntryStore, events EventPublisher, log *zap.Logger) *EntryService {
	return &EntryService{
		store:     store,
		sanitizer: richtext.NewSanitizer(),
		events:    events,
		log:       log,
		now:       time.Now,
	}
}

// List returns all of the user's entries, newest first.
func (s *EntryService) List(ctx context.Context, userID string) ([]models.JournalEntry, error) {
	return s.store.List(ctx, EntryQuery{UserID: userID})
}

// ListMonth returns the entries created during month ("2006-01") in loc.
func (s *EntryService) ListMonth(ctx context.Context, userID, month string, loc *time.Location) ([]models.JournalEntry, error) {
	start, err := time.ParseInLocation("2006-01", month, loc)
	if err != nil {
		return nil, &utils.ValidationError{Field: "month", Message: "Month must look like 2024-01"}
	}
	return s.store.List(ctx, EntryQuery{UserID: userID, From: start, To: start.AddDate(0, 1, 0)})
}

func (s *EntryService) Get(ctx context.Context, userID, id string) (models.JournalEntry, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.JournalEntry{}, ErrNotFound
	}
	return s.store.Get(ctx, userID, oid)
}

func (s *EntryService) Create(ctx context.Context, userID string, in EntryInput) (models.JournalEntry, error) {
	e, err := s.build(in)
	if err != nil {
		return models.JournalEntry{}, err
	}
	now := s.now().UTC()
	e.UserID = userID
	e.IsPrivate = in.IsPrivate == nil || *in.IsPrivate
	e.CreatedAt = now
	e.UpdatedAt = now

	id, err := s.store.Insert(ctx, e)
	if err != nil {
		return models.JournalEntry{}, err
	}
	stored, err := s.store.Get(ctx, userID, id)
	if err != nil {
		return models.JournalEntry{}, fmt.Errorf("reload created entry: %w", err)
	}
	s.publish(ctx, userID, "created", id)
	return stored, nil
}

// Update replaces every writable field of an existing entry.
func (s *EntryService) Update(ctx context.Context, userID, id string, in EntryInput) (models.JournalEntry, error) {
	current, err := s.Get(ctx, userID, id)
	if err != nil {
		return models.JournalEntry{}, err
	}
	e, err := s.build(in)
	if err != nil {
		return models.JournalEntry{}, err
	}

	e.ID = current.ID
	e.UserID = current.UserID
	e.IsPrivate = current.IsPrivate
	if in.IsPrivate != nil {
		e.IsPrivate = *in.IsPrivate
	}
	e.CreatedAt = current.CreatedAt
	e.UpdatedAt = s.now().UTC()
	if e.UpdatedAt.Before(e.CreatedAt) {
		e.UpdatedAt = e.CreatedAt
	}

	if err := s.store.Replace(ctx, e); err != nil {
		return models.JournalEntry{}, err
	}
	stored, err := s.store.Get(ctx, userID, e.ID)
	if err != nil {
		return models.JournalEntry{}, fmt.Errorf("reload updated entry: %w", err)
	}
	s.publish(ctx, userID, "updated", e.ID)
	return stored, nil
}

func (s *EntryService) Delete(ctx context.Context, userID, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	if err := s.store.Delete(ctx, userID, oid); err != nil {
		return err
	}
	s.publish(ctx, userID, "deleted", oid)
	return nil
}

// build validates input and returns the normalized entry fields.
func (s *EntryService) build(in EntryInput) (models.JournalEntry, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return models.JournalEntry{}, &utils.ValidationError{Field: "title", Message: "Title is required"}
	}
	if utf8.RuneCountInString(title) > models.MaxTitleLength {
		return models.JournalEntry{}, &utils.ValidationError{Field: "title", Message: "Title must be at most 200 characters"}
	}

	format := in.ContentFormat
	switch {
	case format == "":
		format = richtext.DetectFormat(in.Content)
	case !format.Valid():
		return models.JournalEntry{}, &utils.ValidationError{Field: "content_format", Message: "Content format must be plain or rich"}
	}
	content := in.Content
	if format == models.ContentFormatRich {
		content = s.sanitizer.Sanitize(content)
	}
	if strings.TrimSpace(content) == "" {
		return models.JournalEntry{}, &utils.ValidationError{Field: "content", Message: "Content is required"}
	}

	mood := strings.TrimSpace(in.Mood)
	if mood != "" && !models.IsValidMood(mood) {
		return models.JournalEntry{}, &utils.ValidationError{Field: "mood", Message: "Unknown mood"}
	}

	imageURL := strings.TrimSpace(in.ImageURL)
	if imageURL != "" {
		u, err := url.Parse(imageURL)
		if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
			return models.JournalEntry{}, &utils.ValidationError{Field: "image_url", Message: "Image URL must be an http(s) URL"}
		}
	}

	return models.JournalEntry{
		Title:         title,
		Content:       content,
		ContentFormat: format,
		Mood:          mood,
		ImageURL:      imageURL,
	}, nil
}

func (s *EntryService) publish(ctx context.Context, userID, action string, id primitive.ObjectID) {
	if s.events == nil {
		return
	}
	ev := EntryEvent{Type: EntriesChanged, Action: action, EntryID: id.Hex(), UserID: userID, Timestamp: s.now().UTC()}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Warn("failed to publish entry event", zap.String("action", action), zap.String("entry_id", ev.EntryID), zap.Error(err))
	}
}
