package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/AnshRaj112/serenify-journal/internal/journal"
	"github.com/AnshRaj112/serenify-journal/internal/models"
	"github.com/AnshRaj112/serenify-journal/internal/richtext"
	"github.com/AnshRaj112/serenify-journal/internal/services"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Entries is the entry API used by the journal, export and analytics
// handlers.
type Entries interface {
	List(ctx context.Context, userID string) ([]models.JournalEntry, error)
	ListMonth(ctx context.Context, userID, month string, loc *time.Location) ([]models.JournalEntry, error)
	Get(ctx context.Context, userID, id string) (models.JournalEntry, error)
	Create(ctx context.Context, userID string, in services.EntryInput) (models.JournalEntry, error)
	Update(ctx context.Context, userID, id string, in services.EntryInput) (models.JournalEntry, error)
	Delete(ctx context.Context, userID, id string) error
}

// EntryItem is an entry as shown on a dashboard card.
type EntryItem struct {
	models.JournalEntry
	MoodLabel string `json:"mood_label,omitempty"`
	Excerpt   string `json:"excerpt"`
}

type GroupResponse struct {
	Key     string      `json:"key"`
	Label   string      `json:"label"`
	Count   int         `json:"count"`
	Entries []EntryItem `json:"entries"`
}

type ListEntriesResponse struct {
	Success         bool            `json:"success"`
	Filter          journal.Filter  `json:"filter"`
	Groups          []GroupResponse `json:"groups"`
	AvailableMonths []string        `json:"available_months"`
	AvailableYears  []string        `json:"available_years"`
	AvailableMoods  []string        `json:"available_moods"`
	FilteredCount   int             `json:"filtered_count"`
	TotalCount      int             `json:"total_count"`
}

type EntryResponse struct {
	Success bool                 `json:"success"`
	Message string               `json:"message,omitempty"`
	Entry   *models.JournalEntry `json:"entry,omitempty"`
}

type JournalHandler struct {
	entries Entries
	loc     *time.Location
	log     *zap.Logger
}

// NewJournalHandler serves the entry CRUD routes. loc is used for month
// grouping when a request names no tz.
func NewJournalHandler(entries Entries, loc *time.Location, log *zap.Logger) *JournalHandler {
	return &JournalHandler{entries: entries, loc: loc, log: log}
}

func toItem(e models.JournalEntry) EntryItem {
	item := EntryItem{
		JournalEntry: e,
		Excerpt:      richtext.Excerpt(e.Content, richtext.FormatOf(e), richtext.ExcerptLength),
	}
	if e.HasMood() {
		item.MoodLabel = models.MoodLabel(e.Mood)
	}
	return item
}

// List returns the filtered dashboard view grouped by month.
func (h *JournalHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	loc, ok := location(w, r, h.loc)
	if !ok {
		return
	}

	entries, err := h.entries.List(r.Context(), uid)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	filter := journal.ParseFilter(r.URL.Query())
	view := journal.Apply(entries, filter, loc)

	groups := make([]GroupResponse, 0, len(view.Groups))
	for _, g := range view.Groups {
		items := make([]EntryItem, 0, len(g.Entries))
		for _, e := range g.Entries {
			items = append(items, toItem(e))
		}
		groups = append(groups, GroupResponse{Key: g.Key, Label: g.Label, Count: g.Count, Entries: items})
	}

	writeJSON(w, http.StatusOK, ListEntriesResponse{
		Success:         true,
		Filter:          filter,
		Groups:          groups,
		AvailableMonths: view.AvailableMonths,
		AvailableYears:  view.AvailableYears,
		AvailableMoods:  view.AvailableMoods,
		FilteredCount:   view.FilteredCount,
		TotalCount:      view.TotalCount,
	})
}

// Create stores a new entry and returns it as re-read from the store.
func (h *JournalHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var in services.EntryInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	entry, err := h.entries.Create(r.Context(), uid, in)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, EntryResponse{Success: true, Message: "Entry created successfully", Entry: &entry})
}

func (h *JournalHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	entry, err := h.entries.Get(r.Context(), uid, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, EntryResponse{Success: true, Entry: &entry})
}

// Update replaces the editable fields of an entry.
func (h *JournalHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var in services.EntryInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	entry, err := h.entries.Update(r.Context(), uid, chi.URLParam(r, "id"), in)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, EntryResponse{Success: true, Message: "Entry updated successfully", Entry: &entry})
}

func (h *JournalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	if err := h.entries.Delete(r.Context(), uid, chi.URLParam(r, "id")); err != nil {
		respondError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: "Entry deleted successfully"})
}
