package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/synaptica-ai/cvdrisk/pkg/common/config"
	"github.com/synaptica-ai/cvdrisk/pkg/common/database"
	"github.com/synaptica-ai/cvdrisk/pkg/common/models"
	"github.com/synaptica-ai/cvdrisk/pkg/risk"
	"github.com/synaptica-ai/cvdrisk/pkg/scoring"
)

type batchOptions struct {
	catalogPath string
	inputPath   string
	models      []string
	workers     int
	sqlitePath  string
}

func newBatchCmd() *cobra.Command {
	var opts batchOptions
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Score a JSON lines file of records with a model catalog",
		Long: `Each input line is an object with "patient_id" and "record" keys. One
result line is written per input line, in input order.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.catalogPath, "catalog", "", "YAML model catalog (default: every model)")
	cmd.Flags().StringVar(&opts.inputPath, "input", "-", "JSON lines input, - for stdin")
	cmd.Flags().StringSliceVar(&opts.models, "models", nil, "catalog entries to score (default: all)")
	cmd.Flags().IntVar(&opts.workers, "workers", 8, "concurrent scoring workers")
	cmd.Flags().StringVar(&opts.sqlitePath, "sqlite", "", "record score logs in this sqlite database")
	return cmd
}

func runBatch(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, opts batchOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	catalog, err := risk.LoadCatalog(opts.catalogPath)
	if err != nil {
		return err
	}
	served, err := catalog.Build()
	if err != nil {
		return err
	}

	items, err := readItems(stdin, opts.inputPath)
	if err != nil {
		return err
	}

	var repo *scoring.Repository
	if opts.sqlitePath != "" {
		db, err := database.Open(&config.Config{DatabaseDriver: "sqlite", SQLitePath: opts.sqlitePath})
		if err != nil {
			return err
		}
		defer database.Close(db)
		repo = scoring.NewRepository(db)
		if err := repo.AutoMigrate(); err != nil {
			return fmt.Errorf("migrate score logs: %w", err)
		}
	}

	service := scoring.NewService(served, repo, nil, nil, scoring.Settings{
		Workers: opts.workers,
		Source:  "riskctl",
	})
	resp, err := service.ScoreBatch(ctx, models.BatchScoreRequest{Models: opts.models, Items: items})
	if err != nil {
		return err
	}

	if err := writeItems(stdout, resp.Items); err != nil {
		return err
	}
	fmt.Fprintf(stderr, "scored %d, failed %d in %s\n", resp.Scored, resp.Failed, resp.Latency)
	return nil
}

// writeItems writes one JSON line per item. Nothing is written unless every
// item encodes.
func writeItems(w io.Writer, items []models.BatchScoreItem) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, item := range items {
		if err := enc.Encode(item); err != nil {
			return fmt.Errorf("encode item %d: %w", item.Index, err)
		}
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// readItems decodes a stream of JSON objects, one score request each.
func readItems(stdin io.Reader, path string) ([]models.ScoreRequest, error) {
	r := stdin
	if path != "-" && path != "" {
		f, err := os.Open(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	dec := json.NewDecoder(r)
	dec.UseNumber()
	var items []models.ScoreRequest
	for line := 1; ; line++ {
		var item models.ScoreRequest
		err := dec.Decode(&item)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("input item %d: %w", line, err)
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil, errors.New("no input records")
	}
	return items, nil
}
