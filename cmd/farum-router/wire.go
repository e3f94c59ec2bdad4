package main

import (
	"context"
	"fmt"

	"github.com/PabloGalante/farum-router/internal/adapters/llm"
	firestorestore "github.com/PabloGalante/farum-router/internal/adapters/storage/firestore"
	memstore "github.com/PabloGalante/farum-router/internal/adapters/storage/memory"
	pgstore "github.com/PabloGalante/farum-router/internal/adapters/storage/postgres"
	"github.com/PabloGalante/farum-router/internal/app/classification"
	"github.com/PabloGalante/farum-router/internal/config"
	"github.com/PabloGalante/farum-router/internal/domain"
	"github.com/PabloGalante/farum-router/internal/observability"
)

// app holds the wired service and whatever needs closing on exit.
type app struct {
	svc     *classification.Service
	closers []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			observability.Logger().Warn("error closing resource", "error", err)
		}
	}
}

func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}

	llmClient, err := newLLMClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	utterances, err := newUtteranceLog(ctx, cfg, a)
	if err != nil {
		a.Close()
		return nil, err
	}

	gateway := classification.NewGateway(llmClient, classification.GatewayConfig{
		Model:       cfg.ModelName,
		Temperature: cfg.Temperature,
		Timeout:     cfg.RequestTimeout,
		Preamble:    llm.Preamble(),
		History:     llm.FewShotHistory(),
	})

	a.svc = classification.NewService(gateway, domain.DefaultVocabulary(), classification.Options{
		MaxAttempts: cfg.MaxAttempts,
		Utterances:  utterances,
	})
	return a, nil
}

func newLLMClient(ctx context.Context, cfg *config.Config) (domain.LLMClient, error) {
	log := observability.Logger()

	switch cfg.Provider {
	case config.ProviderMock:
		log.Info("using mock llm client")
		return llm.NewMockLLM(), nil

	case config.ProviderVertex, config.ProviderGemini:
		log.Info("using genai llm client",
			"backend", cfg.Provider,
			"model", cfg.ModelName,
			"project", cfg.GCPProjectID,
			"location", cfg.GCPLocation)

		client, err := llm.NewVertexClient(ctx, llm.VertexConfig{
			Backend:   cfg.Provider,
			ProjectID: cfg.GCPProjectID,
			Location:  cfg.GCPLocation,
			APIKey:    cfg.APIKey,
		})
		if err != nil {
			return nil, fmt.Errorf("initializing llm client: %w", err)
		}
		return client, nil

	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// newUtteranceLog returns nil when the log is disabled.
func newUtteranceLog(ctx context.Context, cfg *config.Config, a *app) (domain.UtteranceLog, error) {
	log := observability.Logger()

	switch cfg.StorageBackend {
	case config.StorageNone:
		log.Info("utterance log disabled")
		return nil, nil

	case config.StorageFirestore:
		log.Info("using firestore utterance log", "project", cfg.GCPProjectID)
		store, err := firestorestore.NewStore(ctx, cfg.GCPProjectID)
		if err != nil {
			return nil, fmt.Errorf("initializing firestore store: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		return store, nil

	case config.StoragePostgres:
		log.Info("using postgres utterance log")
		db, err := pgstore.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("initializing postgres store: %w", err)
		}
		store := pgstore.New(db)
		a.closers = append(a.closers, store.Close)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return store, nil

	default:
		log.Info("using in-memory utterance log", "capacity", cfg.LogCapacity)
		return memstore.NewUtteranceLog(cfg.LogCapacity), nil
	}
}
