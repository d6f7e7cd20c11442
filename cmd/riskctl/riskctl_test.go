package main

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synaptica-ai/cvdrisk/pkg/common/config"
	"github.com/synaptica-ai/cvdrisk/pkg/common/database"
	"github.com/synaptica-ai/cvdrisk/pkg/common/models"
	"github.com/synaptica-ai/cvdrisk/pkg/risk"
	"github.com/synaptica-ai/cvdrisk/pkg/scoring"
)

const advanceJSON = `{"diab_age": 50, "female": false, "diab_dur": 3, "pp": 50, "retinopathy": true,
 "afib": true, "hba1c": 7, "albumin_creat": 50, "nonhdl_mmol": 3.3, "htn_treat": true}`

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestModelsCommand(t *testing.T) {
	out, _, err := run(t, "", "models")
	require.NoError(t, err)
	lines := strings.Fields(out)
	assert.Equal(t, risk.Names(), lines)
	assert.Len(t, lines, 22)
}

func TestFeaturesCommand(t *testing.T) {
	out, _, err := run(t, "", "features", "recode", "--target", "stroke")
	require.NoError(t, err)

	var got struct {
		Model            string   `json:"model"`
		RequiredFeatures []string `json:"required_features"`
		FeatureKeys      []string `json:"feature_keys"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "recode", got.Model)
	assert.Contains(t, got.RequiredFeatures, "index_age")
	assert.GreaterOrEqual(t, len(got.FeatureKeys), len(got.RequiredFeatures))

	_, _, err = run(t, "", "features", "recode", "--target", "afib")
	assert.ErrorIs(t, err, risk.ErrUnsupportedParameter)
}

func TestScoreCommand(t *testing.T) {
	path := writeFile(t, "advance.json", advanceJSON)

	out, _, err := run(t, "", "score", "advance", "--record", path)
	require.NoError(t, err)
	var got struct {
		Model    string             `json:"model"`
		Risk     float64            `json:"risk"`
		Features map[string]float64 `json:"features"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "advance", got.Model)
	assert.InDelta(t, 0.061833, got.Risk, 1e-4)
	assert.Empty(t, got.Features)

	out, _, err = run(t, advanceJSON, "score", "advance", "--record", "-", "--explain")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.InDelta(t, 0.061833, got.Risk, 1e-4)
	assert.NotEmpty(t, got.Features)
}

func TestScoreCommandErrors(t *testing.T) {
	path := writeFile(t, "advance.json", advanceJSON)
	partial := writeFile(t, "partial.json", `{"diab_age": 50, "female": false}`)
	empty := writeFile(t, "empty.json", `{}`)

	_, _, err := run(t, "", "score", "qrisk3", "--record", path)
	assert.ErrorIs(t, err, risk.ErrUnknownModel)

	_, _, err = run(t, "", "score", "advance", "--record", partial)
	assert.ErrorIs(t, err, risk.ErrMissingField)

	_, _, err = run(t, "", "score", "qdiabetes", "--record", path, "--horizon", "20")
	assert.ErrorIs(t, err, risk.ErrUnsupportedParameter)

	_, _, err = run(t, "", "score", "advance", "--record", empty)
	assert.Error(t, err)

	_, _, err = run(t, "", "score", "advance", "--record", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, _, err = run(t, "", "score", "advance")
	assert.Error(t, err)
}

func TestBatchCommand(t *testing.T) {
	input := writeFile(t, "records.jsonl", strings.Join([]string{
		`{"patient_id": "p1", "record": ` + strings.ReplaceAll(advanceJSON, "\n", "") + `}`,
		`{"patient_id": "p2", "record": {"diab_age": 61, "female": true}}`,
	}, "\n"))
	dbPath := filepath.Join(t.TempDir(), "scores.db")

	out, stderr, err := run(t, "", "batch", "--input", input, "--models", "advance", "--workers", "2", "--sqlite", dbPath)
	require.NoError(t, err)
	assert.Contains(t, stderr, "scored 1, failed 1")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	var first, second models.BatchScoreItem
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "p1", first.PatientID)
	assert.InDelta(t, 0.061833, first.Scores["advance"], 1e-4)
	assert.Equal(t, "p2", second.PatientID)
	assert.Contains(t, second.Errors, "advance")

	db, err := database.Open(&config.Config{DatabaseDriver: "sqlite", SQLitePath: dbPath})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	logs, err := scoring.NewRepository(db).ForPatient(context.Background(), "p1", 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, scoring.SourceBatch, logs[0].Source)
}

func TestBatchCommandNonFiniteInput(t *testing.T) {
	good := strings.ReplaceAll(advanceJSON, "\n", "")
	bad := strings.Replace(good, `"hba1c": 7`, `"hba1c": "NaN"`, 1)
	require.NotEqual(t, good, bad)

	out, stderr, err := run(t, `{"patient_id": "p1", "record": `+good+`}
{"patient_id": "p2", "record": `+bad+`}`, "batch", "--models", "advance")
	require.NoError(t, err)
	assert.Contains(t, stderr, "scored 1, failed 1")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	var first, second models.BatchScoreItem
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.InDelta(t, 0.061833, first.Scores["advance"], 1e-4)
	assert.Empty(t, second.Scores)
	assert.Contains(t, second.Errors["advance"], "hba1c")
}

func TestWriteItemsIsAllOrNothing(t *testing.T) {
	var out bytes.Buffer
	err := writeItems(&out, []models.BatchScoreItem{
		{Index: 0, Scores: map[string]float64{"advance": 0.1}},
		{Index: 1, Scores: map[string]float64{"advance": math.NaN()}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "item 1")
	assert.Zero(t, out.Len())

	require.NoError(t, writeItems(&out, []models.BatchScoreItem{{Index: 0, Scores: map[string]float64{"advance": 0.1}}}))
	assert.Equal(t, 1, strings.Count(out.String(), "\n"))
}

func TestBatchCommandCatalog(t *testing.T) {
	catalog := writeFile(t, "catalog.yaml", `
models:
  - name: advance_default
    model: advance
`)
	out, _, err := run(t, `{"record": `+strings.ReplaceAll(advanceJSON, "\n", "")+`}`, "batch", "--catalog", catalog)
	require.NoError(t, err)

	var item models.BatchScoreItem
	require.NoError(t, json.Unmarshal([]byte(out), &item))
	assert.Contains(t, item.Scores, "advance_default")

	_, _, err = run(t, "", "batch", "--catalog", catalog)
	assert.Error(t, err)

	_, _, err = run(t, "{", "batch")
	assert.Error(t, err)

	_, _, err = run(t, `{"record": {"diab_age": 50}}`, "batch", "--models", "qrisk3")
	assert.ErrorIs(t, err, risk.ErrUnknownModel)
}
