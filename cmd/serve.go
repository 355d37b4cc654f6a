package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-amqp/pkg/amqp"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	handler "docsearch/handler/http"
	"docsearch/src/core/indexing"
	"docsearch/src/core/system"
	"docsearch/src/fsutil"
	jobctrl "docsearch/src/infrastructure/job"
	"docsearch/src/log"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	archive, err := a.newArchive(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize upload archive: %w", err)
	}

	keys, err := fsutil.NewKeyGenerator(viper.GetInt64("upload.node_id"))
	if err != nil {
		return fmt.Errorf("failed to initialize key generator: %w", err)
	}

	feedbackLog, err := a.newFeedbackLogger(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize feedback log: %w", err)
	}

	indexer := indexing.NewIndexer(a.store, a.splitter)
	searcher := a.newSearchService()

	var opts []handler.Option
	opts = append(opts, handler.WithMaxFileSize(viper.GetInt64("upload.max_file_size")))

	if viper.GetBool("indexing.async") {
		jobs, err := newJobQueue(ctx, a, archive, indexer)
		if err != nil {
			return err
		}
		opts = append(opts, handler.WithJobQueue(jobs))
		log.Info("Uploads are indexed by the background worker")
	}

	health := system.NewService(a.checkers...)
	h := handler.NewHandler(indexer, searcher, feedbackLog, archive, keys, health, opts...)

	if !viper.GetBool("log.development") {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(handler.RequestLogger(), gin.Recovery(), handler.CORS(strings.Split(viper.GetString("server.allowed_origins"), ",")))
	h.RegisterRoutes(r)

	srv := &http.Server{
		Addr:    ":" + viper.GetString("server.port"),
		Handler: tracedHandler(r, viper.GetString("server.service_name")),
	}

	go func() {
		log.Info("Starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(err, "Failed to start server")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownTimeout, err := time.ParseDuration(viper.GetString("server.shutdown_timeout"))
	if err != nil {
		shutdownTimeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server exited")
	return nil
}

// newJobQueue publishes index jobs to RabbitMQ and records them in postgres.
func newJobQueue(ctx context.Context, a *app, archive fsutil.Archive, indexer *indexing.Indexer) (*jobctrl.JobService, error) {
	db, err := a.postgresDB()
	if err != nil {
		return nil, err
	}
	repo := jobctrl.NewPostgresJobRepository(db)
	if err := repo.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to migrate jobs table: %w", err)
	}

	logger := watermill.NewStdLogger(false, false)
	publisher, err := amqp.NewPublisher(amqp.NewDurableQueueConfig(viper.GetString("amqp.url")), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize amqp publisher: %w", err)
	}
	a.closers = append(a.closers, publisher.Close)

	return jobctrl.NewJobService(publisher, repo, logger, jobctrl.NewIndexTask(archive, indexer)), nil
}
