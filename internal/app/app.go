package app

import (
	"context"
	"log"

	"knowledgescout/internal/config"
	"knowledgescout/internal/core"
	db "knowledgescout/internal/core/database"
	"knowledgescout/internal/core/extract"
	"knowledgescout/internal/core/ingest"
	"knowledgescout/internal/core/llm"
	objectclient "knowledgescout/internal/core/object-client"
	"knowledgescout/internal/core/responder"
	"knowledgescout/internal/services"
)

type App struct {
	DBClient     core.DbClient
	ObjectClient core.ObjectClient
	Ingestor     *ingest.DocumentIngestor
	Server       *Server
}

// NewApp wires the dependency graph: store, file storage, AI responder,
// ingestion pipeline, services and the HTTP server. Every collaborator is an
// explicit constructor argument somewhere below; there is no global state.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	var (
		dbClient core.DbClient
		err      error
	)
	if cfg.DatabaseURL != "" {
		dbClient, err = db.NewDatabaseClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		log.Println("Database initialized and ready.")
	} else {
		dbClient = db.NewMemoryClient()
		log.Println("DATABASE_URL not set; using in-memory store (data is not persisted).")
	}

	var objClient core.ObjectClient
	if cfg.AwsAccessKey != "" && cfg.AwsSecretKey != "" {
		objClient, err = objectclient.NewS3Client(ctx, cfg)
		if err != nil {
			return nil, err
		}
	} else {
		objClient, err = objectclient.NewLocalClient(cfg.UploadDir)
		if err != nil {
			return nil, err
		}
		log.Printf("AWS credentials not set; storing uploads under %s", cfg.UploadDir)
	}

	var provider core.LLMProvider
	if cfg.AIAPIKey != "" {
		gemini, err := llm.NewGeminiLLM(ctx, cfg.AIAPIKey, cfg.GenModel)
		if err != nil {
			return nil, err
		}
		provider = gemini
	} else {
		log.Println("GEMINI_API_KEY not set; AI features are disabled.")
	}
	ai := responder.New(provider)

	extractor := extract.NewDocconvExtractor()
	ingestor := ingest.NewDocumentIngestor(dbClient, objClient, extractor, ai, cfg.BucketName)
	ingestor.Start(ctx, cfg.IngestWorkers)
	if err := ingestor.Resume(ctx); err != nil {
		log.Printf("WARN: resume pending ingest jobs: %v", err)
	}

	users := services.NewUserService(dbClient)
	docs := services.NewDocumentService(dbClient, objClient, ai, cfg.BucketName)
	conversations := services.NewConversationService(dbClient, ai)

	server := NewServer(cfg, users, docs, conversations, ingestor)

	return &App{
		DBClient:     dbClient,
		ObjectClient: objClient,
		Ingestor:     ingestor,
		Server:       server,
	}, nil
}

func (a *App) Close() {
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}
