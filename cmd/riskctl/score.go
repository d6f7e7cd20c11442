package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/synaptica-ai/cvdrisk/pkg/risk"
)

func newScoreCmd() *cobra.Command {
	var (
		flags      modelFlags
		recordPath string
		explain    bool
	)
	cmd := &cobra.Command{
		Use:   "score <model>",
		Short: "Score one clinical record with a model",
		Example: `  riskctl score pce --record patient.json --horizon 10
  riskctl score score --record patient.json --low-risk=false
  cat patient.json | riskctl score advance --record -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := risk.New(args[0], flags.options())
			if err != nil {
				return err
			}
			rec, err := readRecord(cmd.InOrStdin(), recordPath)
			if err != nil {
				return err
			}

			p, err := m.Score(rec)
			if err != nil {
				return err
			}
			out := map[string]interface{}{
				"model": m.Name(),
				"risk":  p,
			}
			if explain {
				features, err := m.Explain(rec)
				if err != nil {
					return err
				}
				out["features"] = features
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&recordPath, "record", "", "JSON record file, - for stdin")
	cmd.Flags().BoolVar(&explain, "explain", false, "include the evaluated feature vector")
	_ = cmd.MarkFlagRequired("record")
	return cmd
}

// readRecord decodes a single JSON object, keeping numbers exact.
func readRecord(stdin io.Reader, path string) (risk.Record, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("open record: %w", err)
		}
		defer f.Close()
		r = f
	}

	dec := json.NewDecoder(r)
	dec.UseNumber()
	var rec risk.Record
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	if len(rec) == 0 {
		return nil, fmt.Errorf("record %s is empty", path)
	}
	return rec, nil
}
