package cmd

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"docsearch/src/core/document"
	"docsearch/src/core/indexing"
	"docsearch/src/log"
)

var indexCmd = &cobra.Command{
	Use:   "index <file|dir>...",
	Short: "Index files into the vector store",
	Long: `Index loads, splits and stores the given files. Directories are walked
recursively and only .pdf, .txt and .md files are picked up.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	files, err := collectFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		log.Info("No supported files found")
		return nil
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	indexer := indexing.NewIndexer(a.store, a.splitter)
	bar := progressbar.Default(int64(len(files)), "indexing")

	var failed int
	for _, path := range files {
		bar.Describe(filepath.Base(path))
		report, err := indexer.IndexFile(ctx, path)
		if err != nil {
			failed++
			log.Error(err, "Failed to index file", "path", path)
		} else {
			log.Debug("Indexed file", "path", path, "documents", report.Documents, "chunks", report.Chunks)
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to index", failed, len(files))
	}
	return nil
}

// collectFiles expands directories into the supported files they contain.
// Paths given explicitly are kept whatever their extension.
func collectFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && document.IsAllowed(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}
