package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/studyforge/courserag/internal/config"
	"github.com/studyforge/courserag/internal/handler"
	aiservice "github.com/studyforge/courserag/internal/service/ai"
	"github.com/studyforge/courserag/internal/service/docproc"
	ragservice "github.com/studyforge/courserag/internal/service/rag"
	sessionservice "github.com/studyforge/courserag/internal/service/session"
	"github.com/studyforge/courserag/internal/service/tools"
	"github.com/studyforge/courserag/internal/service/vectorstore"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	store := vectorstore.NewMemoryStore()
	sessions := sessionservice.NewService(cfg.RAG.MaxHistory)
	processor := docproc.NewProcessor(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	toolManager := tools.NewManager(
		tools.NewCourseSearchTool(store, cfg.RAG.MaxResults),
		tools.NewCourseOutlineTool(store),
	)

	var aiSvc *aiservice.Service
	var generator ragservice.Generator
	if cfg.AI.Enabled() {
		aiSvc, err = aiservice.NewService(ctx, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize AI service: %v", err)
			log.Println("continuing without AI functionality - check the Ark environment variables")
		} else {
			generator = aiSvc
			log.Println("AI service initialized successfully")
		}
	} else {
		log.Println("Ark credentials not configured, query answering disabled")
	}

	ragSvc := ragservice.NewService(processor, store, generator, sessions, toolManager)

	loadStartupDocuments(ctx, ragSvc, cfg.RAG.DocsPath)

	router := handler.NewRouter(ragSvc, sessions, aiSvc, toolManager)

	startServer(ctx, cfg.Server, router)
}

// loadStartupDocuments bulk-loads the docs folder when it exists. A
// failed load is logged and the server still starts.
func loadStartupDocuments(ctx context.Context, ragSvc *ragservice.Service, docsPath string) {
	if info, err := os.Stat(docsPath); err != nil || !info.IsDir() {
		log.Printf("docs folder %s not found, starting with an empty catalog", docsPath)
		return
	}

	courses, chunks, err := ragSvc.AddCourseFolder(ctx, docsPath, false)
	if err != nil {
		log.Printf("warning: failed to load docs folder %s: %v", docsPath, err)
		return
	}
	log.Printf("loaded %d courses (%d chunks) from %s", courses, chunks, docsPath)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Course RAG backend listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
