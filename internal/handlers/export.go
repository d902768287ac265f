package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/AnshRaj112/serenify-journal/internal/journal"
	"github.com/AnshRaj112/serenify-journal/internal/pdfexport"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ExportHandler struct {
	entries Entries
	loc     *time.Location
	log     *zap.Logger
	now     func() time.Time
}

func NewExportHandler(entries Entries, loc *time.Location, log *zap.Logger) *ExportHandler {
	return &ExportHandler{entries: entries, loc: loc, log: log, now: time.Now}
}

func (h *ExportHandler) exporter(loc *time.Location) *pdfexport.Exporter {
	x := pdfexport.NewExporter(loc)
	x.Now = h.now
	return x
}

func writePDF(w http.ResponseWriter, f *pdfexport.File) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+f.Name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(f.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(f.Data)
}

// Entry downloads one entry as a PDF.
func (h *ExportHandler) Entry(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	loc, ok := location(w, r, h.loc)
	if !ok {
		return
	}
	entry, err := h.entries.Get(r.Context(), uid, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	f, err := h.exporter(loc).Entry(entry)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	writePDF(w, f)
}

// Collection downloads the currently filtered dashboard view, in display
// order, as one PDF. The title query parameter names the document.
func (h *ExportHandler) Collection(w http.ResponseWriter, r *http.Request) {
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

	view := journal.Apply(entries, journal.ParseFilter(r.URL.Query()), loc)
	f, err := h.exporter(loc).Entries(journal.Flatten(view), r.URL.Query().Get("title"))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	writePDF(w, f)
}
