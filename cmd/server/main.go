package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/gorilla/mux"

	"github.com/RichardBrown384/riscos-artworks-viewer/internal/auth"
	"github.com/RichardBrown384/riscos-artworks-viewer/internal/config"
	"github.com/RichardBrown384/riscos-artworks-viewer/internal/db"
	"github.com/RichardBrown384/riscos-artworks-viewer/internal/engine"
	"github.com/RichardBrown384/riscos-artworks-viewer/internal/library"
	"github.com/RichardBrown384/riscos-artworks-viewer/internal/live"
	mw "github.com/RichardBrown384/riscos-artworks-viewer/internal/middleware"
	"github.com/RichardBrown384/riscos-artworks-viewer/internal/typeid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		slog.Error("migrate database", "error", err)
		os.Exit(1)
	}

	queries := db.New(pool)
	eng := engine.New(cfg.ViewportWidth)

	authService := auth.NewService(queries, cfg.JWTSecret)
	authHandler := auth.NewHandler(authService)

	// The hub loads scenes through the library, and the library publishes
	// through the hub.
	var libraryService *library.Service
	hub := live.NewHub(func(documentID string) (*engine.Scene, int32, error) {
		// Called outside any request context.
		return libraryService.Latest(context.Background(), documentID)
	})
	libraryService = library.NewService(queries, eng, hub)
	libraryHandler := library.NewHandler(libraryService, cfg.MaxUploadBytes)

	go hub.Run()

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.Origins()))

	// Auth routes (public)
	r.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Protected API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.AuthMiddleware)

	libraryHandler.Register(api, r)

	// WebSocket endpoint
	r.HandleFunc("/ws/documents/{documentId}", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, hub, authService, libraryService, cfg.Origins())
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr, "viewport_width", eng.ViewportWidth())
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, hub *live.Hub, authSvc *auth.Service, lib *library.Service, origins []string) {
	documentID := mux.Vars(r)["documentId"]

	// Browsers cannot set headers on websocket requests, so the token
	// travels as a query parameter.
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	userID, err := authSvc.ValidateToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	if _, err := lib.Get(r.Context(), documentID, userID); err != nil {
		switch {
		case errors.Is(err, library.ErrNotFound):
			http.Error(w, "document not found", http.StatusNotFound)
		case errors.Is(err, library.ErrForbidden):
			http.Error(w, "forbidden", http.StatusForbidden)
		default:
			slog.Error("websocket document lookup", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: origins,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	client := live.NewClient(hub, conn, userID, documentID, typeid.NewViewerID())
	hub.Register(client)

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}
