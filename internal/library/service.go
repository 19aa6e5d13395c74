package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"github.com/RichardBrown384/riscos-artworks-viewer/internal/db"
	"github.com/RichardBrown384/riscos-artworks-viewer/internal/document"
	"github.com/RichardBrown384/riscos-artworks-viewer/internal/engine"
	"github.com/RichardBrown384/riscos-artworks-viewer/internal/typeid"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrForbidden = errors.New("forbidden")
)

const timeLayout = "2006-01-02T15:04:05Z"

// Store is the slice of db.Queries the library needs.
type Store interface {
	CreateDocument(ctx context.Context, arg db.CreateDocumentParams) (db.Document, error)
	GetDocument(ctx context.Context, id string) (db.Document, error)
	ListDocumentsByOwner(ctx context.Context, ownerID string) ([]db.DocumentInfo, error)
	UpdateDocumentSource(ctx context.Context, arg db.UpdateDocumentSourceParams) (db.Document, error)
	DeleteDocument(ctx context.Context, id string) error
}

// Publisher pushes freshly rendered scenes to anyone watching a document.
type Publisher interface {
	Publish(documentID string, revision int32, scene *engine.Scene)
}

type Service struct {
	store     Store
	engine    *engine.Engine
	publisher Publisher
}

// NewService creates a library service. publisher may be nil.
func NewService(store Store, eng *engine.Engine, publisher Publisher) *Service {
	return &Service{store: store, engine: eng, publisher: publisher}
}

type Document struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	OwnerID   string         `json:"ownerId"`
	Revision  int32          `json:"revision"`
	CreatedAt string         `json:"createdAt"`
	UpdatedAt string         `json:"updatedAt"`
	Stats     map[string]int `json:"stats,omitempty"`
}

// Upload validates loader output and stores it as a new document. Sources
// the loader failed on are rejected with the loader's message.
func (s *Service) Upload(ctx context.Context, ownerID, name string, source []byte) (*Document, error) {
	doc, err := decode(source)
	if err != nil {
		return nil, err
	}

	dbDoc, err := s.store.CreateDocument(ctx, db.CreateDocumentParams{
		ID:      typeid.NewDocumentID(),
		OwnerID: ownerID,
		Name:    name,
		Source:  source,
	})
	if err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}

	slog.Info("document uploaded", "document", dbDoc.ID, "owner", ownerID, "records", len(doc.Records))
	return toDocument(dbDoc.ID, dbDoc.Name, dbDoc.OwnerID, dbDoc.Revision, dbDoc.CreatedAt, dbDoc.UpdatedAt, doc.Stats()), nil
}

// Replace stores a new revision of a document and publishes its shaded scene.
func (s *Service) Replace(ctx context.Context, documentID, ownerID string, source []byte) (*Document, error) {
	if _, err := s.owned(ctx, documentID, ownerID); err != nil {
		return nil, err
	}

	doc, err := decode(source)
	if err != nil {
		return nil, err
	}

	dbDoc, err := s.store.UpdateDocumentSource(ctx, db.UpdateDocumentSourceParams{
		ID:     documentID,
		Source: source,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update document: %w", err)
	}

	if s.publisher != nil {
		scene, err := s.engine.Shaded(doc)
		if err != nil {
			slog.Error("render published scene", "document", documentID, "error", err)
		} else {
			s.publisher.Publish(documentID, dbDoc.Revision, scene)
		}
	}

	return toDocument(dbDoc.ID, dbDoc.Name, dbDoc.OwnerID, dbDoc.Revision, dbDoc.CreatedAt, dbDoc.UpdatedAt, doc.Stats()), nil
}

func (s *Service) Get(ctx context.Context, documentID, ownerID string) (*Document, error) {
	dbDoc, err := s.owned(ctx, documentID, ownerID)
	if err != nil {
		return nil, err
	}

	var stats map[string]int
	if doc, err := document.Decode(dbDoc.Source); err == nil {
		stats = doc.Stats()
	}
	return toDocument(dbDoc.ID, dbDoc.Name, dbDoc.OwnerID, dbDoc.Revision, dbDoc.CreatedAt, dbDoc.UpdatedAt, stats), nil
}

func (s *Service) List(ctx context.Context, ownerID string) ([]Document, error) {
	infos, err := s.store.ListDocumentsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	docs := make([]Document, len(infos))
	for i, d := range infos {
		docs[i] = *toDocument(d.ID, d.Name, d.OwnerID, d.Revision, d.CreatedAt, d.UpdatedAt, nil)
	}
	return docs, nil
}

func (s *Service) Delete(ctx context.Context, documentID, ownerID string) error {
	if _, err := s.owned(ctx, documentID, ownerID); err != nil {
		return err
	}

	if err := s.store.DeleteDocument(ctx, documentID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// Render loads a stored document and renders it in the given mode.
func (s *Service) Render(ctx context.Context, documentID, ownerID string, mode engine.Mode) (interface{}, error) {
	dbDoc, err := s.owned(ctx, documentID, ownerID)
	if err != nil {
		return nil, err
	}

	doc, err := document.Decode(dbDoc.Source)
	if err != nil {
		return nil, err
	}
	return s.engine.Render(doc, mode)
}

// RenderMany renders several stored documents concurrently. The result is
// in the order of documentIDs; the first failure cancels the rest.
func (s *Service) RenderMany(ctx context.Context, ownerID string, documentIDs []string, mode engine.Mode) ([]interface{}, error) {
	scenes := make([]interface{}, len(documentIDs))

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range documentIDs {
		g.Go(func() error {
			scene, err := s.Render(gctx, id, ownerID, mode)
			if err != nil {
				return fmt.Errorf("render %s: %w", id, err)
			}
			scenes[i] = scene
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scenes, nil
}

// Latest renders the current revision of a document for live viewers.
// Callers are expected to have checked ownership already.
func (s *Service) Latest(ctx context.Context, documentID string) (*engine.Scene, int32, error) {
	dbDoc, err := s.store.GetDocument(ctx, documentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, fmt.Errorf("get document: %w", err)
	}

	doc, err := document.Decode(dbDoc.Source)
	if err != nil {
		return nil, 0, err
	}
	scene, err := s.engine.Shaded(doc)
	if err != nil {
		return nil, 0, err
	}
	return scene, dbDoc.Revision, nil
}

// Extract renders loader output without storing it.
func (s *Service) Extract(source []byte, mode engine.Mode) (interface{}, error) {
	doc, err := document.Decode(source)
	if err != nil {
		return nil, err
	}
	return s.engine.Render(doc, mode)
}

// Sample renders the built-in sample document.
func (s *Service) Sample(mode engine.Mode) (interface{}, error) {
	return s.engine.Render(document.NewSampleDocument(), mode)
}

func (s *Service) owned(ctx context.Context, documentID, ownerID string) (db.Document, error) {
	dbDoc, err := s.store.GetDocument(ctx, documentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return db.Document{}, ErrNotFound
		}
		return db.Document{}, fmt.Errorf("get document: %w", err)
	}
	if dbDoc.OwnerID != ownerID {
		return db.Document{}, ErrForbidden
	}
	return dbDoc, nil
}

func decode(source []byte) (*document.Document, error) {
	doc, err := document.Decode(source)
	if err != nil {
		return nil, err
	}
	if err := doc.Err(); err != nil {
		return nil, err
	}
	return doc, nil
}

func toDocument(id, name, ownerID string, revision int32, created, updated time.Time, stats map[string]int) *Document {
	return &Document{
		ID:        id,
		Name:      name,
		OwnerID:   ownerID,
		Revision:  revision,
		CreatedAt: created.UTC().Format(timeLayout),
		UpdatedAt: updated.UTC().Format(timeLayout),
		Stats:     stats,
	}
}
