package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/AnshRaj112/serenify-journal/internal/services"
	"go.uber.org/zap"
)

// MaxUploadSize caps image uploads at 10MB.
const MaxUploadSize = 10 << 20

type UploadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	URL     string `json:"url,omitempty"`
}

type UploadHandler struct {
	uploader services.ImageUploader
	log      *zap.Logger
}

// NewUploadHandler serves image uploads. A nil uploader answers 503.
func NewUploadHandler(uploader services.ImageUploader, log *zap.Logger) *UploadHandler {
	return &UploadHandler{uploader: uploader, log: log}
}

// Upload stores the multipart "file" field and returns its public URL.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.uploader == nil {
		writeError(w, http.StatusServiceUnavailable, "Image upload is not configured")
		return
	}

	// Leave room for the multipart framing around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize+1<<20)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "File must be 10MB or smaller")
			return
		}
		writeError(w, http.StatusBadRequest, "Failed to parse form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()
	if header.Size > MaxUploadSize {
		writeError(w, http.StatusRequestEntityTooLarge, "File must be 10MB or smaller")
		return
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Failed to read file")
		return
	}
	head = head[:n]
	if !strings.HasPrefix(http.DetectContentType(head), "image/") {
		writeError(w, http.StatusBadRequest, "Only image files are allowed")
		return
	}

	url, err := h.uploader.UploadImage(r.Context(), io.MultiReader(bytes.NewReader(head), file))
	if err != nil {
		h.log.Error("image upload failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "Failed to upload file")
		return
	}
	writeJSON(w, http.StatusOK, UploadResponse{Success: true, Message: "File uploaded successfully", URL: url})
}
