package cmd

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/tmc/langchaingo/textsplitter"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"docsearch/src/core/document"
	"docsearch/src/core/enrichment"
	"docsearch/src/core/feedback"
	"docsearch/src/core/knowledgebase"
	"docsearch/src/core/search"
	"docsearch/src/core/system"
	"docsearch/src/fsutil"
	"docsearch/src/infrastructure/integrations/llm"
	"docsearch/src/infrastructure/integrations/ollama"
	"docsearch/src/log"
	"docsearch/src/storage/chroma"
	"docsearch/src/storage/minioctrl"
	"docsearch/src/storage/postgres/feedbackctrl"
	"docsearch/src/storage/qdrant"
	"docsearch/src/storage/weaviate"
)

// app holds everything built from configuration. Close releases the
// connections opened along the way.
type app struct {
	models   *llm.Models
	store    *knowledgebase.Guarded
	splitter textsplitter.TextSplitter
	db       *gorm.DB
	checkers []system.Checker
	closers  []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Error(err, "Failed to close resource")
		}
	}
}

func newApp(ctx context.Context) (*app, error) {
	a := &app{}

	llmCfg := llm.Config{
		Provider:       viper.GetString("llm.provider"),
		Model:          viper.GetString("llm.model"),
		EmbeddingModel: viper.GetString("llm.embedding_model"),
		BaseURL:        llmBaseURL(),
		APIKey:         viper.GetString("openai.api_key"),
	}
	models, err := llm.New(llmCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize language model: %w", err)
	}
	a.models = models

	if strings.EqualFold(viper.GetString("llm.provider"), "ollama") {
		chatModel, embeddingModel := llmCfg.ModelNames()
		client, err := ollama.NewClient(viper.GetString("ollama.url"), &http.Client{Timeout: 10 * time.Second}, chatModel, embeddingModel)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize ollama client: %w", err)
		}
		a.checkers = append(a.checkers, client)
	}

	store, err := a.newVectorStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.store = knowledgebase.NewGuarded(store)

	a.splitter = document.NewSplitter(document.SplitConfig{
		ChunkSize:    viper.GetInt("chunk.size"),
		ChunkOverlap: viper.GetInt("chunk.overlap"),
	})

	return a, nil
}

func llmBaseURL() string {
	if strings.EqualFold(viper.GetString("llm.provider"), "ollama") {
		return viper.GetString("ollama.url")
	}
	return viper.GetString("openai.base_url")
}

func (a *app) newVectorStore(ctx context.Context) (knowledgebase.Store, error) {
	backend := strings.ToLower(viper.GetString("vectorstore.backend"))
	log.Info("Connecting to vector store", "backend", backend)

	switch backend {
	case "", "weaviate":
		host, scheme, err := splitURL(viper.GetString("weaviate.url"))
		if err != nil {
			return nil, fmt.Errorf("invalid weaviate url: %w", err)
		}
		client, err := weaviate.NewClient(host, scheme)
		if err != nil {
			return nil, err
		}
		store, err := weaviate.NewStore(ctx, weaviate.NewSDK(client), a.models.Embedder, viper.GetString("weaviate.class"))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize weaviate store: %w", err)
		}
		a.checkers = append(a.checkers, system.CheckFunc{Component: "vector_store", Fn: store.Ping})
		return store, nil

	case "chroma":
		store, err := chroma.New(ctx, viper.GetString("chroma.url"), viper.GetString("chroma.collection"), a.models.Embedder)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize chroma store: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		a.checkers = append(a.checkers, countCheck(store))
		return store, nil

	case "qdrant":
		store, err := qdrant.New(viper.GetString("qdrant.addr"), viper.GetString("qdrant.collection"), a.models.Embedder)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize qdrant store: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		a.checkers = append(a.checkers, countCheck(store))
		return store, nil
	}

	return nil, fmt.Errorf("unknown vector store backend %q", backend)
}

func countCheck(store knowledgebase.Store) system.Checker {
	return system.CheckFunc{
		Component: "vector_store",
		Fn: func(ctx context.Context) error {
			_, err := store.Count(ctx)
			return err
		},
	}
}

func splitURL(raw string) (host, scheme string, err error) {
	if !strings.Contains(raw, "://") {
		return raw, "http", nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", err
	}
	return u.Host, u.Scheme, nil
}

// newSearchService builds the question answering pipeline, with Wikipedia
// enrichment when search.auto_enrich is set.
func (a *app) newSearchService() *search.Service {
	opts := []search.Option{
		search.WithTopK(viper.GetInt("search.top_k")),
		search.WithGapPolicy(search.GapPolicy{Threshold: viper.GetFloat64("search.gap_threshold")}),
	}

	if viper.GetBool("search.auto_enrich") {
		wiki := enrichment.NewWikipedia(enrichment.WikipediaConfig{
			UserAgent:   viper.GetString("enrichment.user_agent"),
			TopK:        viper.GetInt("enrichment.top_k"),
			Language:    viper.GetString("enrichment.language"),
			DocMaxChars: viper.GetInt("enrichment.doc_max_chars"),
		})
		fetcher := enrichment.NewFetcher(wiki, a.store, a.splitter,
			enrichment.WithRateLimit(viper.GetFloat64("enrichment.rate"), viper.GetInt("enrichment.burst")),
			enrichment.WithLogger(log.WithName("enrichment")),
		)
		opts = append(opts, search.WithEnricher(fetcher))
	}

	return search.NewService(a.store, a.models.Chat, opts...)
}

// openPostgres connects with the postgres.* settings.
func openPostgres() (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		viper.GetString("postgres.host"),
		viper.GetString("postgres.user"),
		viper.GetString("postgres.password"),
		viper.GetString("postgres.db"),
		viper.GetString("postgres.port"),
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// postgresDB opens the database once per app and registers its cleanup.
func (a *app) postgresDB() (*gorm.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := openPostgres()
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying *sql.DB: %w", err)
	}
	a.closers = append(a.closers, sqlDB.Close)
	a.checkers = append(a.checkers, system.CheckFunc{Component: "postgres", Fn: sqlDB.PingContext})
	a.db = db
	return db, nil
}

func (a *app) newArchive(ctx context.Context) (fsutil.Archive, error) {
	switch strings.ToLower(viper.GetString("upload.archive")) {
	case "", "local":
		return fsutil.NewLocalFileStore(viper.GetString("upload.dir"))
	case "minio":
		svc, err := minioctrl.NewMinioService(
			viper.GetString("minio.endpoint"),
			viper.GetString("minio.access_key"),
			viper.GetString("minio.secret_key"),
			viper.GetBool("minio.use_ssl"),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize minio service: %w", err)
		}
		archive, err := minioctrl.NewBucketArchive(ctx, svc, viper.GetString("minio.bucket"))
		if err != nil {
			return nil, err
		}
		a.checkers = append(a.checkers, system.CheckFunc{Component: "archive", Fn: archive.Ping})
		return archive, nil
	}
	return nil, fmt.Errorf("unknown upload archive %q", viper.GetString("upload.archive"))
}

func (a *app) newFeedbackLogger(ctx context.Context) (feedback.Logger, error) {
	switch strings.ToLower(viper.GetString("feedback.backend")) {
	case "", "csv":
		return feedback.NewCSVLogger(viper.GetString("feedback.path"))
	case "postgres":
		db, err := a.postgresDB()
		if err != nil {
			return nil, err
		}
		svc, err := feedbackctrl.NewFeedbackService(db)
		if err != nil {
			return nil, err
		}
		if err := svc.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("failed to migrate feedback table: %w", err)
		}
		return svc, nil
	}
	return nil, fmt.Errorf("unknown feedback backend %q", viper.GetString("feedback.backend"))
}
