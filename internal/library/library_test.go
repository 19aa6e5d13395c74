package library

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RichardBrown384/riscos-artworks-viewer/internal/auth"
	"github.com/RichardBrown384/riscos-artworks-viewer/internal/db"
	"github.com/RichardBrown384/riscos-artworks-viewer/internal/document"
	"github.com/RichardBrown384/riscos-artworks-viewer/internal/engine"
)

type memStore struct {
	mu   sync.Mutex
	docs map[string]db.Document
}

func newMemStore() *memStore {
	return &memStore{docs: map[string]db.Document{}}
}

func (m *memStore) CreateDocument(_ context.Context, arg db.CreateDocumentParams) (db.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	d := db.Document{
		ID: arg.ID, OwnerID: arg.OwnerID, Name: arg.Name, Source: arg.Source,
		Revision: 1, CreatedAt: now, UpdatedAt: now,
	}
	m.docs[d.ID] = d
	return d, nil
}

func (m *memStore) GetDocument(_ context.Context, id string) (db.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return db.Document{}, pgx.ErrNoRows
	}
	return d, nil
}

func (m *memStore) ListDocumentsByOwner(_ context.Context, ownerID string) ([]db.DocumentInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []db.DocumentInfo
	for _, d := range m.docs {
		if d.OwnerID == ownerID {
			out = append(out, db.DocumentInfo{
				ID: d.ID, OwnerID: d.OwnerID, Name: d.Name, Revision: d.Revision,
				CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt,
			})
		}
	}
	return out, nil
}

func (m *memStore) UpdateDocumentSource(_ context.Context, arg db.UpdateDocumentSourceParams) (db.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[arg.ID]
	if !ok {
		return db.Document{}, pgx.ErrNoRows
	}
	d.Source = arg.Source
	d.Revision++
	d.UpdatedAt = time.Now()
	m.docs[d.ID] = d
	return d, nil
}

func (m *memStore) DeleteDocument(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.docs, id)
	return nil
}

type published struct {
	documentID string
	revision   int32
	scene      *engine.Scene
}

type recordingPublisher struct {
	mu    sync.Mutex
	calls []published
}

func (p *recordingPublisher) Publish(documentID string, revision int32, scene *engine.Scene) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, published{documentID, revision, scene})
}

func sampleSource(t *testing.T) []byte {
	t.Helper()
	data, err := json.Marshal(document.NewSampleDocument())
	require.NoError(t, err)
	return data
}

const singlePath = `{"records":[{"type":2,"pointer":16,"path":[{"tag":"M","points":[{"x":10,"y":10}]},{"tag":"L","points":[{"x":20,"y":20}]}],"boundingBox":{"minX":10,"maxX":20,"minY":10,"maxY":20}}],"palette":{"colours":[]}}`

func newTestService() (*Service, *memStore, *recordingPublisher) {
	store := newMemStore()
	pub := &recordingPublisher{}
	return NewService(store, engine.New(0), pub), store, pub
}

func TestService_UploadAndGet(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestService()

	doc, err := s.Upload(ctx, "user_a", "sample", sampleSource(t))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(doc.ID, "doc_"))
	assert.Equal(t, int32(1), doc.Revision)
	assert.Equal(t, 4, doc.Stats["path"])

	got, err := s.Get(ctx, doc.ID, "user_a")
	require.NoError(t, err)
	assert.Equal(t, doc.Stats, got.Stats)

	_, err = s.Get(ctx, doc.ID, "user_b")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = s.Get(ctx, "doc_missing", "user_a")
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := s.List(ctx, "user_a")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].Stats)
}

func TestService_UploadRejectsLoadFailures(t *testing.T) {
	s, store, _ := newTestService()

	_, err := s.Upload(context.Background(), "user_a", "broken", []byte(`{"error":{"message":"bad header"}}`))
	require.ErrorIs(t, err, document.ErrLoadFailed)
	assert.EqualError(t, err, "bad header")

	_, err = s.Upload(context.Background(), "user_a", "garbage", []byte(`{`))
	assert.ErrorIs(t, err, document.ErrLoadFailed)

	assert.Empty(t, store.docs)
}

func TestService_ReplacePublishes(t *testing.T) {
	ctx := context.Background()
	s, _, pub := newTestService()

	doc, err := s.Upload(ctx, "user_a", "sample", sampleSource(t))
	require.NoError(t, err)

	_, err = s.Replace(ctx, doc.ID, "user_b", []byte(singlePath))
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := s.Replace(ctx, doc.ID, "user_a", []byte(singlePath))
	require.NoError(t, err)
	assert.Equal(t, int32(2), updated.Revision)

	require.Len(t, pub.calls, 1)
	call := pub.calls[0]
	assert.Equal(t, doc.ID, call.documentID)
	assert.Equal(t, int32(2), call.revision)
	require.Len(t, call.scene.Paths, 1)
	assert.Equal(t, "M 10,10 L 20,20", call.scene.Paths[0].D)
	assert.Equal(t, 16, call.scene.Paths[0].Pointer)
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestService()

	doc, err := s.Upload(ctx, "user_a", "sample", sampleSource(t))
	require.NoError(t, err)

	assert.ErrorIs(t, s.Delete(ctx, doc.ID, "user_b"), ErrForbidden)
	require.NoError(t, s.Delete(ctx, doc.ID, "user_a"))
	assert.ErrorIs(t, s.Delete(ctx, doc.ID, "user_a"), ErrNotFound)
}

func TestService_RenderMany(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestService()

	a, err := s.Upload(ctx, "user_a", "sample", sampleSource(t))
	require.NoError(t, err)
	b, err := s.Upload(ctx, "user_a", "single", []byte(singlePath))
	require.NoError(t, err)

	scenes, err := s.RenderMany(ctx, "user_a", []string{b.ID, a.ID}, engine.ModeOutline)
	require.NoError(t, err)
	require.Len(t, scenes, 2)
	assert.Len(t, scenes[0].(*engine.OutlineScene).Paths, 1)
	assert.Len(t, scenes[1].(*engine.OutlineScene).Paths, 4)

	_, err = s.RenderMany(ctx, "user_a", []string{a.ID, "doc_missing"}, engine.ModeShaded)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_Latest(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestService()

	doc, err := s.Upload(ctx, "user_a", "sample", sampleSource(t))
	require.NoError(t, err)
	_, err = s.Replace(ctx, doc.ID, "user_a", sampleSource(t))
	require.NoError(t, err)

	scene, revision, err := s.Latest(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(2), revision)
	assert.Len(t, scene.Paths, 4)

	_, _, err = s.Latest(ctx, "doc_missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func newTestRouter(s *Service, maxBytes int64) *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), r.Header.Get("X-User"))))
		})
	})
	NewHandler(s, maxBytes).Register(api, r)
	return r
}

func do(t *testing.T, h http.Handler, method, path, user string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if user != "" {
		req.Header.Set("X-User", user)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandler_DocumentLifecycle(t *testing.T) {
	s, _, _ := newTestService()
	r := newTestRouter(s, 1<<20)

	upload, err := json.Marshal(map[string]interface{}{
		"name":     "sample",
		"document": json.RawMessage(sampleSource(t)),
	})
	require.NoError(t, err)

	rec := do(t, r, http.MethodPost, "/api/documents", "user_a", upload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = do(t, r, http.MethodGet, "/api/documents", "user_a", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), created.ID)

	rec = do(t, r, http.MethodGet, "/api/documents/"+created.ID+"/shaded", "user_a", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var scene engine.Scene
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &scene))
	assert.Len(t, scene.Paths, 4)
	assert.Len(t, scene.LinearGradients, 1)
	assert.Len(t, scene.RadialGradients, 1)
	assert.Equal(t, float64(engine.DefaultViewportWidth), scene.Viewport.Width)

	rec = do(t, r, http.MethodGet, "/api/documents/"+created.ID+"/outline", "user_b", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	replace := []byte(`{"document":` + singlePath + `}`)
	rec = do(t, r, http.MethodPut, "/api/documents/"+created.ID, "user_a", replace)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, r, http.MethodPost, "/api/documents/render", "user_a", []byte(`{"ids":["`+created.ID+`"],"mode":"outline"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"M 10,10 L 20,20"`)

	rec = do(t, r, http.MethodPost, "/api/documents/render", "user_a", []byte(`{"ids":[],"mode":"wireframe"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodPost, "/api/documents/render", "user_a", []byte(`{"ids":["nope"]}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodGet, "/api/documents/nope", "user_a", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, r, http.MethodDelete, "/api/documents/"+created.ID, "user_a", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, r, http.MethodGet, "/api/documents/"+created.ID, "user_a", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_UploadValidation(t *testing.T) {
	s, _, _ := newTestService()
	r := newTestRouter(s, 256)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"bad json", `{`, http.StatusBadRequest},
		{"missing name", `{"document":{}}`, http.StatusBadRequest},
		{"load failure", `{"name":"x","document":{"error":{"message":"bad header"}}}`, http.StatusUnprocessableEntity},
		{"too large", `{"name":"` + strings.Repeat("x", 512) + `","document":{}}`, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, r, http.MethodPost, "/api/documents", "user_a", []byte(tt.body))
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestHandler_Extract(t *testing.T) {
	s, store, _ := newTestService()
	r := newTestRouter(s, 1<<20)

	rec := do(t, r, http.MethodPost, "/extract/outline", "", []byte(singlePath))
	require.Equal(t, http.StatusOK, rec.Code)
	var outline engine.OutlineScene
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &outline))
	assert.Equal(t, []string{"M 10,10 L 20,20"}, outline.Paths)
	assert.Equal(t, engine.OutlineStyle(), outline.Style)

	rec = do(t, r, http.MethodPost, "/extract/shaded", "", []byte(`{"error":{"message":"bad header"}}`))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "bad header")

	rec = do(t, r, http.MethodPost, "/extract/wireframe", "", []byte(singlePath))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Empty(t, store.docs)
}

func TestHandler_Sample(t *testing.T) {
	s, _, _ := newTestService()
	r := newTestRouter(s, 1<<20)

	rec := do(t, r, http.MethodGet, "/sample", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var scene engine.Scene
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &scene))
	assert.Equal(t, document.Box{MinX: 10000, MaxX: 82000, MinY: 10000, MaxY: 82000}, scene.BoundingBox)

	rec = do(t, r, http.MethodGet, "/sample?mode=bogus", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
