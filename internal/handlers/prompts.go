package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/AnshRaj112/serenify-journal/internal/models"
	"github.com/AnshRaj112/serenify-journal/internal/richtext"
	"go.uber.org/zap"
)

// Prompts is the writing prompt API.
type Prompts interface {
	List(ctx context.Context, mood string, all bool) ([]models.WritingPrompt, error)
	Random(ctx context.Context, mood string, all bool) (models.WritingPrompt, error)
}

type PromptResponse struct {
	Success bool                  `json:"success"`
	Prompt  *models.WritingPrompt `json:"prompt,omitempty"`
	// Block is the prompt as a rich-text paragraph ready to insert into
	// the editor.
	Block   string                 `json:"block,omitempty"`
	Prompts []models.WritingPrompt `json:"prompts,omitempty"`
}

type PromptHandler struct {
	prompts Prompts
	log     *zap.Logger
}

func NewPromptHandler(prompts Prompts, log *zap.Logger) *PromptHandler {
	return &PromptHandler{prompts: prompts, log: log}
}

func promptQuery(r *http.Request) (string, bool) {
	q := r.URL.Query()
	all, _ := strconv.ParseBool(q.Get("all"))
	return q.Get("mood"), all
}

func (h *PromptHandler) Random(w http.ResponseWriter, r *http.Request) {
	mood, all := promptQuery(r)
	p, err := h.prompts.Random(r.Context(), mood, all)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, PromptResponse{Success: true, Prompt: &p, Block: richtext.PromptBlock(p.Prompt)})
}

func (h *PromptHandler) List(w http.ResponseWriter, r *http.Request) {
	mood, all := promptQuery(r)
	prompts, err := h.prompts.List(r.Context(), mood, all)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	if prompts == nil {
		prompts = []models.WritingPrompt{}
	}
	writeJSON(w, http.StatusOK, PromptResponse{Success: true, Prompts: prompts})
}
