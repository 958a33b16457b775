// Package app wires configuration, the Gemini client, storage and the HTTP
// surface into one runnable service.
package app

import (
	"context"
	"fmt"
	"log"

	"campuslens/internal/chat"
	"campuslens/internal/config"
	"campuslens/internal/ingest"
	"campuslens/internal/llm"
	"campuslens/internal/pipeline"
	"campuslens/internal/retrieval"
	"campuslens/internal/risk"
	"campuslens/internal/server"
	"campuslens/internal/session"
	"campuslens/internal/simulate"
)

const embedCacheSize = 2048

type App struct {
	cfg     *config.Config
	server  *server.Server
	llm     llm.Client
	indexer *ingest.Indexer
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	gemini, err := llm.NewGeminiClient(ctx, cfg.Gemini.Model, cfg.Gemini.EmbedModel)
	if err != nil {
		return nil, err
	}
	client := llm.Chain(gemini,
		llm.WithLogging(nil),
		llm.WithTimeout(cfg.Run.CallTimeout),
	)

	embedder, err := retrieval.NewCachedEmbedder(gemini, embedCacheSize)
	if err != nil {
		return nil, err
	}

	// Stores: Postgres when DATABASE_URL is set, in-process otherwise.
	var (
		sessions session.Store
		vectors  retrieval.VectorStore
	)
	if cfg.DatabaseURL != "" {
		pgSessions, err := session.NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		sessions = pgSessions
		vectors = retrieval.NewPostgresStoreFromDB(pgSessions.DB())
	} else {
		log.Println("DATABASE_URL not set, using in-memory stores")
		sessions = session.NewMemoryStore()
		vectors = retrieval.NewMemoryStore()
	}

	var objects *session.ObjectStore
	if cfg.Object.Enabled {
		objects, err = session.NewObjectStore(session.ObjectConfig{
			Endpoint:  cfg.Object.Endpoint,
			Region:    cfg.Object.Region,
			AccessKey: cfg.Object.AccessKey,
			SecretKey: cfg.Object.SecretKey,
			Bucket:    cfg.Object.Bucket,
			UseSSL:    cfg.Object.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("init object store: %w", err)
		}
	}

	catalog, err := simulate.LoadCatalog(cfg.ScenarioYAMLPath)
	if err != nil {
		return nil, err
	}

	retriever := retrieval.NewRetriever(embedder, vectors)
	indexer := ingest.NewIndexer(embedder, vectors)
	graph := pipeline.NewGraph(pipeline.Options{
		LLM:         client,
		Retriever:   retriever,
		Strategy:    risk.ForName(cfg.Risk.Strategy),
		RunDeadline: cfg.Run.RunDeadline,
	})

	handlers := &server.Handlers{
		Sessions:  sessions,
		Objects:   objects,
		Indexer:   indexer,
		Graph:     graph,
		Chat:      &chat.Service{LLM: client, Sessions: sessions, Retriever: retriever},
		Engine:    simulate.NewEngine(catalog, client),
		Retriever: retriever,
		LLM:       client,
	}

	return &App{
		cfg:     cfg,
		server:  server.New(cfg.Port, server.NewMux(handlers)),
		llm:     client,
		indexer: indexer,
	}, nil
}

func (a *App) Config() *config.Config { return a.cfg }

// SeedResources loads the campus-resource seed file (or the builtin set) and
// indexes it if the collection is empty.
func (a *App) SeedResources(ctx context.Context) error {
	resources, err := ingest.LoadResources(a.cfg.ResourceSeedPath)
	if err != nil {
		return err
	}
	return a.indexer.SeedResources(ctx, resources)
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	defer func() {
		_ = a.llm.Close()
	}()
	return a.server.Shutdown(ctx)
}
