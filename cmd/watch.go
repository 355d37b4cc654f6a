package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"docsearch/src/core/indexing"
	"docsearch/src/log"
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Index files as they are added to a directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dir := args[0]
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	watcher := indexing.NewWatcher(indexing.NewIndexer(a.store, a.splitter))
	log.Info("Watching directory", "dir", dir)
	if err := watcher.Watch(ctx, dir); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("Watcher stopped")
	return nil
}
