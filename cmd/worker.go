package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-amqp/pkg/amqp"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"docsearch/src/core/indexing"
	jobctrl "docsearch/src/infrastructure/job"
	"docsearch/src/log"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start the background indexing worker",
	Long:  `The worker consumes index jobs queued by "serve" when indexing.async is enabled.`,
	RunE:  runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, args []string) error {
	logger := watermill.NewStdLogger(false, false)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	db, err := a.postgresDB()
	if err != nil {
		return err
	}

	archive, err := a.newArchive(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize upload archive: %w", err)
	}

	// Initialize AMQP publisher
	amqpPublisher, err := amqp.NewPublisher(
		amqp.NewDurableQueueConfig(viper.GetString("amqp.url")),
		logger,
	)
	if err != nil {
		return err
	}
	defer amqpPublisher.Close()

	// Initialize AMQP subscriber
	subscriberConfig := amqp.NewDurableQueueConfig(viper.GetString("amqp.url"))
	subscriberConfig.Consume.NoRequeueOnNack = true
	amqpSubscriber, err := amqp.NewSubscriber(subscriberConfig, logger)
	if err != nil {
		return err
	}
	defer amqpSubscriber.Close()

	router, err := message.NewRouter(message.RouterConfig{}, logger)
	if err != nil {
		return err
	}
	router.AddMiddleware(
		middleware.Recoverer,
		middleware.CorrelationID,
		middleware.Retry{
			MaxRetries:      3,
			InitialInterval: time.Second,
			Logger:          logger,
		}.Middleware,
	)

	jobRepo := jobctrl.NewPostgresJobRepository(db)
	if err := jobRepo.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate jobs table: %w", err)
	}
	indexTask := jobctrl.NewIndexTask(archive, indexing.NewIndexer(a.store, a.splitter))
	jobService := jobctrl.NewJobService(amqpPublisher, jobRepo, logger, indexTask)

	router.AddNoPublisherHandler(
		"job_processor",
		jobctrl.Topic,
		amqpSubscriber,
		jobService.ProcessJobMessage,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- router.Run(ctx)
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-c:
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("router stopped: %w", err)
		}
		return nil
	}

	log.Info("Shutting down worker...")
	cancel()
	<-router.Running()
	log.Info("Router stopped")

	return nil
}
