package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synaptica-ai/cvdrisk/pkg/common/kafka"
	"github.com/synaptica-ai/cvdrisk/pkg/common/models"
	"github.com/synaptica-ai/cvdrisk/pkg/risk"
	"github.com/synaptica-ai/cvdrisk/pkg/scoring"
)

type stubStore struct {
	err error
}

func (s stubStore) Get(context.Context, string) (risk.Record, error) { return nil, s.err }

func (s stubStore) Merge(_ context.Context, _ string, fields risk.Record) (risk.Record, error) {
	return fields, s.err
}

func newService(t *testing.T, store scoring.RecordStore) *scoring.Service {
	t.Helper()
	served, err := risk.Catalog{Models: []risk.CatalogEntry{{Model: "advance"}}}.Build()
	require.NoError(t, err)
	return scoring.NewService(served, nil, store, nil, scoring.Settings{})
}

func TestRecordHandler(t *testing.T) {
	record := map[string]interface{}{
		"diab_age": 52.0, "female": false, "diab_dur": 8.0, "pp": 58.0,
		"retinopathy": false, "afib": false, "hba1c": 7.5, "albumin_creat": 20.0,
		"nonhdl_mmol": 3.6, "htn_treat": true,
	}

	t.Run("scores record events", func(t *testing.T) {
		handle := recordHandler(newService(t, stubStore{}))
		err := handle(context.Background(), models.Event{
			ID:   "e1",
			Type: models.EventClinicalRecord,
			Data: map[string]interface{}{"patient_id": "p1", "record": record},
		})
		assert.NoError(t, err)
	})

	t.Run("unexpected type is poison", func(t *testing.T) {
		handle := recordHandler(newService(t, stubStore{}))
		err := handle(context.Background(), models.Event{ID: "e2", Type: models.EventRiskScore})
		assert.ErrorIs(t, err, kafka.ErrPoison)
	})

	t.Run("malformed event is poison", func(t *testing.T) {
		handle := recordHandler(newService(t, stubStore{}))
		err := handle(context.Background(), models.Event{
			ID:   "e3",
			Type: models.EventClinicalRecord,
			Data: map[string]interface{}{"record": record},
		})
		assert.ErrorIs(t, err, kafka.ErrPoison)
	})

	t.Run("store failure is retried", func(t *testing.T) {
		storeErr := errors.New("redis down")
		handle := recordHandler(newService(t, stubStore{err: storeErr}))
		err := handle(context.Background(), models.Event{
			ID:   "e4",
			Type: models.EventClinicalRecord,
			Data: map[string]interface{}{"patient_id": "p1", "record": record},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, storeErr)
		assert.NotErrorIs(t, err, kafka.ErrPoison)
	})
}

func TestHealthCheck(t *testing.T) {
	rec := httptest.NewRecorder()
	healthCheck(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}
