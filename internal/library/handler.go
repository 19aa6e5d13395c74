package library

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/RichardBrown384/riscos-artworks-viewer/internal/auth"
	"github.com/RichardBrown384/riscos-artworks-viewer/internal/document"
	"github.com/RichardBrown384/riscos-artworks-viewer/internal/engine"
	"github.com/RichardBrown384/riscos-artworks-viewer/internal/typeid"
)

type Handler struct {
	service  *Service
	maxBytes int64
}

// NewHandler creates a handler that rejects request bodies larger than
// maxBytes.
func NewHandler(service *Service, maxBytes int64) *Handler {
	return &Handler{service: service, maxBytes: maxBytes}
}

type uploadRequest struct {
	Name     string          `json:"name"`
	Document json.RawMessage `json:"document"`
}

type replaceRequest struct {
	Document json.RawMessage `json:"document"`
}

type renderRequest struct {
	IDs  []string `json:"ids"`
	Mode string   `json:"mode"`
}

type renderResponse struct {
	Scenes []interface{} `json:"scenes"`
}

// Register wires the protected document routes onto api and the public
// extraction routes onto public.
func (h *Handler) Register(api, public *mux.Router) {
	api.HandleFunc("/documents", h.List).Methods("GET")
	api.HandleFunc("/documents", h.Upload).Methods("POST")
	api.HandleFunc("/documents/render", h.RenderMany).Methods("POST")
	api.HandleFunc("/documents/{documentId}", h.Get).Methods("GET")
	api.HandleFunc("/documents/{documentId}", h.Replace).Methods("PUT")
	api.HandleFunc("/documents/{documentId}", h.Delete).Methods("DELETE")
	api.HandleFunc("/documents/{documentId}/{mode:shaded|outline}", h.Render).Methods("GET")

	public.HandleFunc("/extract/{mode:shaded|outline}", h.Extract).Methods("POST", "OPTIONS")
	public.HandleFunc("/sample", h.Sample).Methods("GET")
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var req uploadRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		handleBodyError(w, err)
		return
	}
	if req.Name == "" || len(req.Document) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name and document are required"})
		return
	}

	doc, err := h.service.Upload(r.Context(), userID, req.Name, req.Document)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, doc)
}

func (h *Handler) Replace(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	documentID, ok := documentIDFrom(w, r)
	if !ok {
		return
	}

	var req replaceRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		handleBodyError(w, err)
		return
	}
	if len(req.Document) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document is required"})
		return
	}

	doc, err := h.service.Replace(r.Context(), documentID, userID, req.Document)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	documentID, ok := documentIDFrom(w, r)
	if !ok {
		return
	}

	doc, err := h.service.Get(r.Context(), documentID, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	docs, err := h.service.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, docs)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	documentID, ok := documentIDFrom(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), documentID, userID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Render handles GET /documents/{documentId}/{mode}.
func (h *Handler) Render(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	documentID, ok := documentIDFrom(w, r)
	if !ok {
		return
	}

	mode, err := engine.ParseMode(mux.Vars(r)["mode"])
	if err != nil {
		handleServiceError(w, err)
		return
	}

	scene, err := h.service.Render(r.Context(), documentID, userID, mode)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, scene)
}

func (h *Handler) RenderMany(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var req renderRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		handleBodyError(w, err)
		return
	}
	if req.Mode == "" {
		req.Mode = string(engine.ModeShaded)
	}
	mode, err := engine.ParseMode(req.Mode)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	for _, id := range req.IDs {
		if !typeid.IsDocumentID(id) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid document id " + id})
			return
		}
	}

	scenes, err := h.service.RenderMany(r.Context(), userID, req.IDs, mode)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, renderResponse{Scenes: scenes})
}

// Extract handles POST /extract/{mode}: the body is loader output, the
// response its scene. Nothing is stored.
func (h *Handler) Extract(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	mode, err := engine.ParseMode(mux.Vars(r)["mode"])
	if err != nil {
		handleServiceError(w, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBytes))
	if err != nil {
		handleBodyError(w, err)
		return
	}

	scene, err := h.service.Extract(body, mode)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, scene)
}

// Sample handles GET /sample?mode=outline|shaded.
func (h *Handler) Sample(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("mode")
	if name == "" {
		name = string(engine.ModeShaded)
	}
	mode, err := engine.ParseMode(name)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	scene, err := h.service.Sample(mode)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, scene)
}

// documentIDFrom answers 404 itself for ids that cannot name a document.
func documentIDFrom(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := mux.Vars(r)["documentId"]
	if !typeid.IsDocumentID(id) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return "", false
	}
	return id, true
}

func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBytes)).Decode(v)
}

func handleBodyError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "request body too large"})
		return
	}
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, ErrForbidden):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
	case errors.Is(err, engine.ErrUnknownMode):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, document.ErrLoadFailed):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	default:
		slog.Error("service error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
