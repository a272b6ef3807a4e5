package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/killallgit/persona-api/internal/database"
	"github.com/killallgit/persona-api/internal/services/creators"
	"github.com/killallgit/persona-api/internal/services/documents"
	"github.com/killallgit/persona-api/internal/services/embedding"
	"github.com/killallgit/persona-api/internal/services/entitlement"
	"github.com/killallgit/persona-api/internal/services/ingestion"
	"github.com/killallgit/persona-api/internal/services/jobs"
	"github.com/killallgit/persona-api/internal/services/kvstore"
	"github.com/killallgit/persona-api/internal/services/search"
	"github.com/killallgit/persona-api/internal/services/vectors"
	"github.com/killallgit/persona-api/internal/services/videosource"
	"github.com/killallgit/persona-api/pkg/config"
	"github.com/killallgit/persona-api/pkg/retry"
)

// app holds the services shared by serve, ingest and search
type app struct {
	cfg          *config.Config
	db           *database.DB
	kv           kvstore.Store
	pgPool       *pgxpool.Pool
	keywords     *documents.KeywordIndex
	embedder     *embedding.Service
	vectors      *vectors.Store
	documents    *documents.Service
	search       *search.Engine
	jobs         jobs.Service
	creators     creators.CreatorRepository
	orchestrator *ingestion.Orchestrator
}

// appOptions adjusts how much of the stack is built
type appOptions struct {
	// skipEntitlement disables the entitlement check for this process
	skipEntitlement bool
	// forceMemoryStore keeps job state in process even when Redis is configured
	forceMemoryStore bool
}

// newApp opens every store named in cfg and wires the services over them
func newApp(ctx context.Context, cfg *config.Config, opts appOptions) (_ *app, err error) {
	a := &app{cfg: cfg}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	if a.db, err = database.InitializeWithMigrations(cfg.Database.Path, cfg.Database.LogQueries); err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if a.kv, err = openKVStore(ctx, cfg.Redis, opts.forceMemoryStore); err != nil {
		return nil, err
	}

	provider, err := embedding.NewProvider(cfg.Embedding)
	if err != nil {
		return nil, fmt.Errorf("creating embedding provider: %w", err)
	}
	a.embedder = embedding.NewService(provider, embedding.Options{
		Timeout:   cfg.Embedding.Timeout,
		Policy:    policy(cfg.Embedding.MaxAttempts, cfg.Embedding.InitialDelay, cfg.Embedding.MaxDelay),
		RateLimit: cfg.Embedding.RateLimit,
	})
	log.Printf("[INFO] Embedding provider: %s (%d dimensions)", provider.Name(), provider.Dimensions())

	indexProvider, err := a.openVectorProvider(ctx, cfg.VectorStore)
	if err != nil {
		return nil, err
	}
	a.vectors = vectors.NewStore(indexProvider, vectors.Options{
		IndexName:      cfg.VectorStore.IndexName,
		Dimensions:     provider.Dimensions(),
		BatchSize:      cfg.VectorStore.BatchSize,
		BatchDelay:     cfg.VectorStore.BatchDelay,
		MinScore:       cfg.VectorStore.MinScore,
		MaxStoredChars: cfg.VectorStore.MaxStoredChars,
		Policy:         retry.DefaultPolicy(),
	})
	if err = a.vectors.EnsureIndex(ctx); err != nil {
		return nil, fmt.Errorf("preparing vector index: %w", err)
	}

	if a.keywords, err = documents.OpenKeywordIndex(cfg.KeywordIndex.Path); err != nil {
		return nil, err
	}
	a.documents = documents.NewService(documents.NewRepository(a.db.DB), a.keywords)
	if err = a.syncKeywordIndex(ctx); err != nil {
		return nil, err
	}

	var queryEmbedder search.Embedder = a.embedder
	if cfg.Search.QueryCacheTTL > 0 {
		namespace := fmt.Sprintf("%s-%s-%d", provider.Name(), cfg.Embedding.Model, provider.Dimensions())
		queryEmbedder = embedding.NewCachedEmbedder(a.embedder, a.kv, namespace, cfg.Search.QueryCacheTTL)
	}
	a.search = search.NewEngine(queryEmbedder, a.vectors, a.documents, search.Options{
		SemanticWeight: cfg.Search.SemanticWeight,
		KeywordWeight:  cfg.Search.KeywordWeight,
		OverlapBoost:   cfg.Search.OverlapBoost,
		DefaultLimit:   cfg.Search.DefaultLimit,
		UseRawQuery:    cfg.Search.UseRawQuery,
	})

	a.jobs = jobs.NewService(jobs.NewRepository(a.kv, cfg.Jobs.Retention))

	ingestOpts := ingestion.OptionsFromConfig(cfg.Ingestion, cfg.VideoSource)
	if opts.skipEntitlement {
		ingestOpts.RequireEntitlement = false
	}
	var checker entitlement.Checker = entitlement.AllowAll{}
	if ingestOpts.RequireEntitlement {
		checker = entitlement.NewRepository(a.db.DB)
	}

	a.creators = creators.NewRepository(a.db.DB)
	a.orchestrator = ingestion.New(ingestion.Dependencies{
		Jobs:         a.jobs,
		Lock:         jobs.NewChannelLock(a.kv, cfg.Jobs.Retention),
		Source:       newVideoSource(cfg.VideoSource),
		Embedder:     a.embedder,
		Vectors:      a.vectors,
		Documents:    a.documents,
		Entitlements: checker,
		Creators:     a.creators,
	}, ingestOpts)

	return a, nil
}

// Close releases every store the app opened
func (a *app) Close() {
	if a.keywords != nil {
		if err := a.keywords.Close(); err != nil {
			log.Printf("[WARN] Closing keyword index: %v", err)
		}
	}
	if a.pgPool != nil {
		a.pgPool.Close()
	}
	if a.kv != nil {
		if err := a.kv.Close(); err != nil {
			log.Printf("[WARN] Closing key-value store: %v", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			log.Printf("[WARN] Closing database: %v", err)
		}
	}
}

func openKVStore(ctx context.Context, cfg config.RedisConfig, forceMemory bool) (kvstore.Store, error) {
	if cfg.Addr == "" || forceMemory {
		log.Printf("[INFO] Using in-process job store")
		return kvstore.NewMemoryStore(), nil
	}
	store, err := kvstore.NewRedisStore(ctx, kvstore.RedisOptions{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		Prefix:   "persona:",
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Addr, err)
	}
	log.Printf("[INFO] Using redis job store at %s", cfg.Addr)
	return store, nil
}

func (a *app) openVectorProvider(ctx context.Context, cfg config.VectorStoreConfig) (vectors.IndexProvider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "local":
		return vectors.NewLocalProvider(a.db.DB), nil
	case "qdrant":
		return vectors.NewQdrantProvider(cfg.QdrantURL, cfg.QdrantAPIKey, 30*time.Second), nil
	case "pgvector":
		pool, err := vectors.NewPgvectorPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		a.pgPool = pool
		return vectors.NewPgvectorProvider(pool), nil
	default:
		return nil, fmt.Errorf("unknown vector store provider %q", cfg.Provider)
	}
}

// syncKeywordIndex rebuilds the keyword index when it holds fewer chunks
// than the metadata store, as happens with an in-memory index after restart
func (a *app) syncKeywordIndex(ctx context.Context) error {
	stale, err := a.documents.NeedsReindex(ctx)
	if err != nil {
		return err
	}
	if !stale {
		return nil
	}
	_, err = a.documents.Reindex(ctx)
	return err
}

func newVideoSource(cfg config.VideoSourceConfig) videosource.Source {
	return videosource.NewYouTubeClient(videosource.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		CaptionURL: cfg.CaptionURL,
		Timeout:    cfg.Timeout,
		UserAgent:  cfg.UserAgent,
		Policy:     policy(cfg.MaxAttempts, 0, 0),
	})
}

// policy overlays configured retry limits on the default policy
func policy(maxAttempts int, initialDelay, maxDelay time.Duration) retry.Policy {
	p := retry.DefaultPolicy()
	if maxAttempts > 0 {
		p.MaxAttempts = maxAttempts
	}
	if initialDelay > 0 {
		p.InitialDelay = initialDelay
	}
	if maxDelay > 0 {
		p.MaxDelay = maxDelay
	}
	return p
}
