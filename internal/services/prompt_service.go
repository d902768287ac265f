package services

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/lib/pq"

	"github.com/AnshRaj112/serenify-journal/internal/models"
	"github.com/AnshRaj112/serenify-journal/pkg/utils"
)

// PromptStore reads writing prompts.
type PromptStore interface {
	// ListByCategories returns prompts in the given categories, newest
	// first. Nil categories means every prompt.
	ListByCategories(ctx context.Context, categories []string) ([]models.WritingPrompt, error)
}

type PostgresPromptStore struct {
	db *sql.DB
}

func NewPostgresPromptStore(db *sql.DB) *PostgresPromptStore {
	return &PostgresPromptStore{db: db}
}

func (s *PostgresPromptStore) ListByCategories(ctx context.Context, categories []string) ([]models.WritingPrompt, error) {
	query := `SELECT id, prompt, category, created_at FROM writing_prompts`
	var args []any
	if categories != nil {
		query += ` WHERE category = ANY($1)`
		args = append(args, pq.Array(categories))
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query prompts: %w", err)
	}
	defer rows.Close()

	prompts := []models.WritingPrompt{}
	for rows.Next() {
		var p models.WritingPrompt
		if err := rows.Scan(&p.ID, &p.Prompt, &p.Category, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan prompt: %w", err)
		}
		prompts = append(prompts, p)
	}
	return prompts, rows.Err()
}

// PromptService picks writing prompts for the entry editor.
type PromptService struct {
	store PromptStore
	intn  func(n int) int
}

func NewPromptService(store PromptStore) *PromptService {
	return &PromptService{store: store, intn: rand.IntN}
}

// categoriesFor maps a mood to the prompt categories shown for it: the
// mood's own prompts plus the general ones.
func categoriesFor(mood string, all bool) ([]string, error) {
	mood = strings.TrimSpace(mood)
	switch {
	case all:
		return nil, nil
	case mood == "" || mood == models.MoodGeneral:
		return []string{models.MoodGeneral}, nil
	case !models.IsValidMood(mood):
		return nil, &utils.ValidationError{Field: "mood", Message: "Unknown mood"}
	default:
		return []string{mood, models.MoodGeneral}, nil
	}
}

// List returns the prompts offered for mood, or every prompt when all is set.
func (s *PromptService) List(ctx context.Context, mood string, all bool) ([]models.WritingPrompt, error) {
	categories, err := categoriesFor(mood, all)
	if err != nil {
		return nil, err
	}
	return s.store.ListByCategories(ctx, categories)
}

// Random picks one prompt uniformly from List's result.
func (s *PromptService) Random(ctx context.Context, mood string, all bool) (models.WritingPrompt, error) {
	prompts, err := s.List(ctx, mood, all)
	if err != nil {
		return models.WritingPrompt{}, err
	}
	if len(prompts) == 0 {
		return models.WritingPrompt{}, ErrNotFound
	}
	return prompts[s.intn(len(prompts))], nil
}
