package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AnshRaj112/serenify-journal/internal/middleware"
	"github.com/AnshRaj112/serenify-journal/internal/models"
	"github.com/AnshRaj112/serenify-journal/internal/monitor"
	"github.com/AnshRaj112/serenify-journal/internal/pdfexport"
	"github.com/AnshRaj112/serenify-journal/internal/services"
	"github.com/AnshRaj112/serenify-journal/pkg/utils"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var testUserID = uuid.MustParse("3f1c2d4e-0000-4000-8000-000000000001")

type fakeEntries struct {
	listFn      func(ctx context.Context, userID string) ([]models.JournalEntry, error)
	listMonthFn func(ctx context.Context, userID, month string, loc *time.Location) ([]models.JournalEntry, error)
	getFn       func(ctx context.Context, userID, id string) (models.JournalEntry, error)
	createFn    func(ctx context.Context, userID string, in services.EntryInput) (models.JournalEntry, error)
	updateFn    func(ctx context.Context, userID, id string, in services.EntryInput) (models.JournalEntry, error)
	deleteFn    func(ctx context.Context, userID, id string) error
}

func (f *fakeEntries) List(ctx context.Context, userID string) ([]models.JournalEntry, error) {
	return f.listFn(ctx, userID)
}

func (f *fakeEntries) ListMonth(ctx context.Context, userID, month string, loc *time.Location) ([]models.JournalEntry, error) {
	return f.listMonthFn(ctx, userID, month, loc)
}

func (f *fakeEntries) Get(ctx context.Context, userID, id string) (models.JournalEntry, error) {
	return f.getFn(ctx, userID, id)
}

func (f *fakeEntries) Create(ctx context.Context, userID string, in services.EntryInput) (models.JournalEntry, error) {
	return f.createFn(ctx, userID, in)
}

func (f *fakeEntries) Update(ctx context.Context, userID, id string, in services.EntryInput) (models.JournalEntry, error) {
	return f.updateFn(ctx, userID, id, in)
}

func (f *fakeEntries) Delete(ctx context.Context, userID, id string) error {
	return f.deleteFn(ctx, userID, id)
}

func entryAt(title, mood, content string, created time.Time) models.JournalEntry {
	return models.JournalEntry{
		ID:            primitive.NewObjectID(),
		UserID:        testUserID.String(),
		Title:         title,
		Content:       content,
		ContentFormat: models.ContentFormatPlain,
		Mood:          mood,
		IsPrivate:     true,
		CreatedAt:     created,
		UpdatedAt:     created,
	}
}

func sampleEntries() []models.JournalEntry {
	return []models.JournalEntry{
		entryAt("Feb walk", "happy", strings.Repeat("long text ", 30), time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC)),
		entryAt("Late night", "sad", "tired", time.Date(2024, 1, 31, 23, 30, 0, 0, time.UTC)),
		entryAt("New year", "happy", "fresh start", time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)),
	}
}

// authed injects the test user the way RequireAuth would.
func authed(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(middleware.WithUserID(r.Context(), testUserID)))
	})
}

func entryRouter(entries Entries) chi.Router {
	fixedNow := func() time.Time { return time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC) }
	j := NewJournalHandler(entries, time.UTC, zap.NewNop())
	x := NewExportHandler(entries, time.UTC, zap.NewNop())
	x.now = fixedNow
	a := NewAnalyticsHandler(entries, time.UTC, zap.NewNop())
	a.now = fixedNow

	r := chi.NewRouter()
	r.Use(authed)
	r.Get("/api/entries", j.List)
	r.Post("/api/entries", j.Create)
	r.Get("/api/entries/export", x.Collection)
	r.Get("/api/entries/{id}", j.Get)
	r.Put("/api/entries/{id}", j.Update)
	r.Delete("/api/entries/{id}", j.Delete)
	r.Get("/api/entries/{id}/pdf", x.Entry)
	r.Get("/api/analytics", a.Month)
	return r
}

func serve(h http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, target, bytes.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestJournalList(t *testing.T) {
	entries := &fakeEntries{listFn: func(_ context.Context, userID string) ([]models.JournalEntry, error) {
		if userID != testUserID.String() {
			t.Errorf("userID = %q", userID)
		}
		return sampleEntries(), nil
	}}
	h := entryRouter(entries)

	rec := serve(h, http.MethodGet, "/api/entries?mood=happy", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	got := decode[ListEntriesResponse](t, rec)
	if !got.Success || got.FilteredCount != 2 || got.TotalCount != 3 {
		t.Fatalf("counts = %d/%d", got.FilteredCount, got.TotalCount)
	}
	if len(got.Groups) != 2 || got.Groups[0].Key != "2024-02" || got.Groups[1].Label != "January 2024" {
		t.Fatalf("groups = %+v", got.Groups)
	}
	first := got.Groups[0].Entries[0]
	if !strings.HasSuffix(first.Excerpt, "...") || len([]rune(first.Excerpt)) > 153 {
		t.Errorf("excerpt = %q", first.Excerpt)
	}
	if first.MoodLabel != "Happy" || first.Title != "Feb walk" {
		t.Errorf("item = %+v", first)
	}
	if strings.Join(got.AvailableMoods, ",") != "happy,sad" {
		t.Errorf("moods = %v", got.AvailableMoods)
	}
}

func TestJournalList_Timezone(t *testing.T) {
	entries := &fakeEntries{listFn: func(context.Context, string) ([]models.JournalEntry, error) {
		return sampleEntries(), nil
	}}
	h := entryRouter(entries)

	// 2024-01-31 23:30 UTC is already February in Tokyo.
	got := decode[ListEntriesResponse](t, serve(h, http.MethodGet, "/api/entries?month=02&year=2024&tz=Asia/Tokyo", nil))
	if got.FilteredCount != 2 {
		t.Errorf("February in Tokyo = %d entries, want 2", got.FilteredCount)
	}

	rec := serve(h, http.MethodGet, "/api/entries?tz=Mars/Olympus", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid tz status = %d", rec.Code)
	}
}

func TestJournal_RequiresUser(t *testing.T) {
	j := NewJournalHandler(&fakeEntries{}, time.UTC, zap.NewNop())
	rec := serve(http.HandlerFunc(j.List), http.MethodGet, "/api/entries", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestJournalCreate(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"created", `{"title":"Hi","content":"<p>x</p>","mood":"calm"}`, nil, http.StatusCreated, "Entry created successfully"},
		{"validation", `{"title":""}`, &utils.ValidationError{Field: "title", Message: "Title is required"}, http.StatusBadRequest, "Title is required"},
		{"bad json", `{`, nil, http.StatusBadRequest, "Invalid request body"},
		{"store failure", `{"title":"Hi"}`, errors.New("mongo down"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := &fakeEntries{createFn: func(_ context.Context, _ string, in services.EntryInput) (models.JournalEntry, error) {
				if tt.err != nil {
					return models.JournalEntry{}, tt.err
				}
				e := entryAt(in.Title, in.Mood, in.Content, time.Now())
				return e, nil
			}}
			rec := serve(entryRouter(entries), http.MethodPost, "/api/entries", []byte(tt.body))
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			got := decode[EntryResponse](t, rec)
			if got.Message != tt.wantMsg {
				t.Errorf("message = %q", got.Message)
			}
			if tt.wantStatus == http.StatusCreated && (got.Entry == nil || got.Entry.Mood != "calm") {
				t.Errorf("entry = %+v", got.Entry)
			}
		})
	}
}

func TestJournalGetUpdateDelete(t *testing.T) {
	existing := sampleEntries()[0]
	var deleted string
	entries := &fakeEntries{
		getFn: func(_ context.Context, _ string, id string) (models.JournalEntry, error) {
			if id != existing.ID.Hex() {
				return models.JournalEntry{}, services.ErrNotFound
			}
			return existing, nil
		},
		updateFn: func(_ context.Context, _ string, id string, in services.EntryInput) (models.JournalEntry, error) {
			e := existing
			e.Title = in.Title
			return e, nil
		},
		deleteFn: func(_ context.Context, _ string, id string) error {
			deleted = id
			return nil
		},
	}
	h := entryRouter(entries)

	if rec := serve(h, http.MethodGet, "/api/entries/"+existing.ID.Hex(), nil); rec.Code != http.StatusOK {
		t.Errorf("get = %d", rec.Code)
	}
	if rec := serve(h, http.MethodGet, "/api/entries/nope", nil); rec.Code != http.StatusNotFound {
		t.Errorf("missing get = %d", rec.Code)
	}

	rec := serve(h, http.MethodPut, "/api/entries/"+existing.ID.Hex(), []byte(`{"title":"Renamed","content":"x"}`))
	if got := decode[EntryResponse](t, rec); got.Entry == nil || got.Entry.Title != "Renamed" {
		t.Errorf("update = %+v", got)
	}

	if rec := serve(h, http.MethodDelete, "/api/entries/abc", nil); rec.Code != http.StatusOK || deleted != "abc" {
		t.Errorf("delete = %d, %q", rec.Code, deleted)
	}
}

func TestExportEntry(t *testing.T) {
	e := entryAt("Morning Pages", "happy", "<p><strong>Hello</strong> world</p>", time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC))
	e.ContentFormat = models.ContentFormatRich
	entries := &fakeEntries{getFn: func(context.Context, string, string) (models.JournalEntry, error) {
		return e, nil
	}}

	rec := serve(entryRouter(entries), http.MethodGet, "/api/entries/"+e.ID.Hex()+"/pdf", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q", ct)
	}
	want := `attachment; filename="journal_entry_2024-01-02_morning_pages.pdf"`
	if cd := rec.Header().Get("Content-Disposition"); cd != want {
		t.Errorf("Content-Disposition = %q, want %q", cd, want)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Error("body is not a PDF")
	}
}

func TestExportCollection(t *testing.T) {
	calls := 0
	entries := &fakeEntries{listFn: func(context.Context, string) ([]models.JournalEntry, error) {
		calls++
		return sampleEntries(), nil
	}}

	rec := serve(entryRouter(entries), http.MethodGet, "/api/entries/export?mood=happy&title=Happy+Days", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	want := `attachment; filename="happy_days_2024-01-05.pdf"`
	if cd := rec.Header().Get("Content-Disposition"); cd != want {
		t.Errorf("Content-Disposition = %q, want %q", cd, want)
	}
	if calls != 1 {
		t.Errorf("List called %d times", calls)
	}

	rec = serve(entryRouter(entries), http.MethodGet, "/api/entries/export?mood=angry", nil)
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="journal_entries_2024-01-05.pdf"` {
		t.Errorf("empty export Content-Disposition = %q", cd)
	}
}

func TestAnalyticsMonth(t *testing.T) {
	var gotMonth string
	entries := &fakeEntries{listMonthFn: func(_ context.Context, _ string, month string, _ *time.Location) ([]models.JournalEntry, error) {
		gotMonth = month
		if month == "bad" {
			return nil, &utils.ValidationError{Field: "month", Message: "Month must be yyyy-MM"}
		}
		return sampleEntries()[1:], nil
	}}
	h := entryRouter(entries)

	got := decode[AnalyticsResponse](t, serve(h, http.MethodGet, "/api/analytics", nil))
	if gotMonth != "2024-01" {
		t.Errorf("default month = %q", gotMonth)
	}
	if !got.Success || got.Report.TotalEntries != 2 || got.Report.Month != "2024-01" {
		t.Errorf("report = %+v", got.Report)
	}

	if rec := serve(h, http.MethodGet, "/api/analytics?month=bad", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad month status = %d", rec.Code)
	}
}

type fakeAccounts struct {
	signUpFn  func(ctx context.Context, email, password, fullName string) (models.User, string, error)
	signInFn  func(ctx context.Context, email, password string) (models.User, string, error)
	signOutFn func(ctx context.Context, token string) error
	meFn      func(ctx context.Context, id uuid.UUID) (models.User, error)
}

func (f *fakeAccounts) SignUp(ctx context.Context, email, password, fullName string) (models.User, string, error) {
	return f.signUpFn(ctx, email, password, fullName)
}

func (f *fakeAccounts) SignIn(ctx context.Context, email, password string) (models.User, string, error) {
	return f.signInFn(ctx, email, password)
}

func (f *fakeAccounts) SignOut(ctx context.Context, token string) error { return f.signOutFn(ctx, token) }

func (f *fakeAccounts) Me(ctx context.Context, id uuid.UUID) (models.User, error) { return f.meFn(ctx, id) }

func TestAuthHandlers(t *testing.T) {
	user := models.User{ID: testUserID, Email: "a@b.co", FullName: "Ada", PasswordHash: "secret-hash"}
	var signedOut string
	accounts := &fakeAccounts{
		signUpFn: func(_ context.Context, email, _, _ string) (models.User, string, error) {
			if email == "taken@b.co" {
				return models.User{}, "", services.ErrEmailTaken
			}
			return user, "tok", nil
		},
		signInFn: func(_ context.Context, _, password string) (models.User, string, error) {
			if password != "right" {
				return models.User{}, "", services.ErrInvalidCredentials
			}
			return user, "tok", nil
		},
		signOutFn: func(_ context.Context, token string) error { signedOut = token; return nil },
		meFn:      func(context.Context, uuid.UUID) (models.User, error) { return user, nil },
	}
	h := NewAuthHandler(accounts, zap.NewNop())

	rec := serve(http.HandlerFunc(h.SignUp), http.MethodPost, "/api/auth/signup", []byte(`{"email":"a@b.co","password":"secret1","full_name":"Ada"}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "secret-hash") {
		t.Error("password hash leaked")
	}
	if got := decode[AuthResponse](t, rec); got.Token != "tok" || got.User == nil || got.User.FullName != "Ada" {
		t.Errorf("signup body = %+v", got)
	}

	rec = serve(http.HandlerFunc(h.SignUp), http.MethodPost, "/api/auth/signup", []byte(`{"email":"taken@b.co","password":"secret1"}`))
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate signup = %d", rec.Code)
	}

	rec = serve(http.HandlerFunc(h.SignIn), http.MethodPost, "/api/auth/signin", []byte(`{"email":"a@b.co","password":"wrong"}`))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad signin = %d", rec.Code)
	}

	r := httptest.NewRequest(http.MethodPost, "/api/auth/signout", nil)
	r.Header.Set("Authorization", "Bearer tok")
	out := httptest.NewRecorder()
	h.SignOut(out, r)
	if out.Code != http.StatusOK || signedOut != "tok" {
		t.Errorf("signout = %d, token %q", out.Code, signedOut)
	}

	rec = serve(authed(http.HandlerFunc(h.Me)), http.MethodGet, "/api/auth/me", nil)
	if got := decode[AuthResponse](t, rec); got.User == nil || got.User.ID != testUserID {
		t.Errorf("me = %+v", got)
	}
}

type fakePrompts struct {
	listFn   func(ctx context.Context, mood string, all bool) ([]models.WritingPrompt, error)
	randomFn func(ctx context.Context, mood string, all bool) (models.WritingPrompt, error)
}

func (f *fakePrompts) List(ctx context.Context, mood string, all bool) ([]models.WritingPrompt, error) {
	return f.listFn(ctx, mood, all)
}

func (f *fakePrompts) Random(ctx context.Context, mood string, all bool) (models.WritingPrompt, error) {
	return f.randomFn(ctx, mood, all)
}

func TestPromptHandlers(t *testing.T) {
	var gotMood string
	var gotAll bool
	prompts := &fakePrompts{
		randomFn: func(_ context.Context, mood string, all bool) (models.WritingPrompt, error) {
			gotMood, gotAll = mood, all
			if mood == "bogus" {
				return models.WritingPrompt{}, &utils.ValidationError{Field: "mood", Message: "Unknown mood"}
			}
			return models.WritingPrompt{Prompt: "What made you smile?", Category: "happy"}, nil
		},
		listFn: func(context.Context, string, bool) ([]models.WritingPrompt, error) { return nil, nil },
	}
	h := NewPromptHandler(prompts, zap.NewNop())

	got := decode[PromptResponse](t, serve(http.HandlerFunc(h.Random), http.MethodGet, "/api/prompts/random?mood=happy&all=true", nil))
	if gotMood != "happy" || !gotAll {
		t.Errorf("query = %q %v", gotMood, gotAll)
	}
	if got.Block != "<p><strong>Prompt:</strong> What made you smile?</p><p><br></p>" {
		t.Errorf("block = %q", got.Block)
	}

	if rec := serve(http.HandlerFunc(h.Random), http.MethodGet, "/api/prompts/random?mood=bogus", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown mood = %d", rec.Code)
	}

	rec := serve(http.HandlerFunc(h.List), http.MethodGet, "/api/prompts", nil)
	if !strings.Contains(rec.Body.String(), `"success":true`) {
		t.Errorf("list body = %s", rec.Body)
	}
}

type fakeUploader struct {
	fn func(ctx context.Context, data []byte) (string, error)
}

func (f *fakeUploader) UploadImage(ctx context.Context, r io.Reader) (string, error) {
	var buf bytes.Buffer
	buf.ReadFrom(r)
	return f.fn(ctx, buf.Bytes())
}

func multipartRequest(t *testing.T, field, name string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, name)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(data)
	mw.Close()
	r := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return r
}

func TestUpload(t *testing.T) {
	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 600)...)
	var uploaded []byte
	up := &fakeUploader{fn: func(_ context.Context, data []byte) (string, error) {
		uploaded = data
		return "https://res.cloudinary.com/demo/image/upload/x.png", nil
	}}

	tests := []struct {
		name       string
		handler    *UploadHandler
		field      string
		data       []byte
		wantStatus int
	}{
		{"image", NewUploadHandler(up, zap.NewNop()), "file", png, http.StatusOK},
		{"not an image", NewUploadHandler(up, zap.NewNop()), "file", []byte("just some text"), http.StatusBadRequest},
		{"missing field", NewUploadHandler(up, zap.NewNop()), "other", png, http.StatusBadRequest},
		{"not configured", NewUploadHandler(nil, zap.NewNop()), "file", png, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uploaded = nil
			rec := httptest.NewRecorder()
			tt.handler.Upload(rec, multipartRequest(t, tt.field, "x.png", tt.data))
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body)
			}
			if tt.wantStatus == http.StatusOK && !bytes.Equal(uploaded, png) {
				t.Errorf("uploaded %d bytes, want %d", len(uploaded), len(png))
			}
		})
	}
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantMsg    string
	}{
		{&utils.ValidationError{Field: "title", Message: "Title is required"}, http.StatusBadRequest, "Title is required"},
		{fmt.Errorf("load: %w", services.ErrNotFound), http.StatusNotFound, "Not found"},
		{services.ErrUnauthorized, http.StatusUnauthorized, "Invalid or expired session"},
		{fmt.Errorf("%w: boom", pdfexport.ErrGenerate), http.StatusInternalServerError, "Failed to generate PDF"},
		{errors.New("connection reset by peer"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		core, logs := observer.New(zapcore.ErrorLevel)
		rec := httptest.NewRecorder()
		respondError(rec, zap.New(core), tt.err)

		if rec.Code != tt.wantStatus {
			t.Errorf("%v: status = %d, want %d", tt.err, rec.Code, tt.wantStatus)
		}
		if got := decode[Response](t, rec); got.Success || got.Message != tt.wantMsg {
			t.Errorf("%v: body = %+v", tt.err, got)
		}
		if tt.wantStatus == http.StatusInternalServerError && logs.Len() != 1 {
			t.Errorf("%v: expected the cause to be logged", tt.err)
		}
	}
}

func TestHealth(t *testing.T) {
	got := decode[HealthResponse](t, serve(Health(monitor.NewNoop()), http.MethodGet, "/health", nil))
	if !got.Success || got.Health.Status != monitor.StatusHealthy {
		t.Errorf("health = %+v", got)
	}
}
