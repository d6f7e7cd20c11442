package scoring

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/synaptica-ai/cvdrisk/pkg/common/kafka"
	"github.com/synaptica-ai/cvdrisk/pkg/common/logger"
	"github.com/synaptica-ai/cvdrisk/pkg/common/models"
	"github.com/synaptica-ai/cvdrisk/pkg/observability/metrics"
	"github.com/synaptica-ai/cvdrisk/pkg/risk"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
)

var ErrRecordStoreDisabled = errors.New("record store not configured")

// RecordStore is the patient record store the service reads and merges into.
type RecordStore interface {
	Get(ctx context.Context, patientID string) (risk.Record, error)
	Merge(ctx context.Context, patientID string, fields risk.Record) (risk.Record, error)
}

// Publisher emits score events.
type Publisher interface {
	PublishEvent(ctx context.Context, key string, event models.Event) error
}

type Settings struct {
	Workers  int
	MaxBatch int
	Source   string // event source name
}

type Service struct {
	models    map[string]risk.Model
	names     []string
	repo      *Repository
	records   RecordStore
	publisher Publisher
	settings  Settings
}

// NewService serves the given models by name. repo, records and publisher
// are optional.
func NewService(catalog map[string]risk.Model, repo *Repository, records RecordStore, publisher Publisher, settings Settings) *Service {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)

	if settings.Workers <= 0 {
		settings.Workers = 1
	}
	if settings.Source == "" {
		settings.Source = "scoring-service"
	}

	return &Service{
		models:    catalog,
		names:     names,
		repo:      repo,
		records:   records,
		publisher: publisher,
		settings:  settings,
	}
}

func (s *Service) Models() []models.ModelInfo {
	out := make([]models.ModelInfo, 0, len(s.names))
	for _, name := range s.names {
		out = append(out, describe(name, s.models[name]))
	}
	return out
}

func (s *Service) Model(name string) (models.ModelInfo, error) {
	m, err := s.lookup(name)
	if err != nil {
		return models.ModelInfo{}, err
	}
	return describe(name, m), nil
}

func describe(name string, m risk.Model) models.ModelInfo {
	return models.ModelInfo{
		Name:             name,
		Equation:         m.Name(),
		RequiredFeatures: m.RequiredFeatures(),
		FeatureKeys:      m.FeatureKeys(),
	}
}

func (s *Service) lookup(name string) (risk.Model, error) {
	m, ok := s.models[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", risk.ErrUnknownModel, name)
	}
	return m, nil
}

// Score evaluates one model on the request's record.
func (s *Service) Score(ctx context.Context, name string, req models.ScoreRequest) (*models.ScoreResponse, error) {
	return s.score(ctx, name, req, false)
}

// Explain is Score plus the evaluated feature vector.
func (s *Service) Explain(ctx context.Context, name string, req models.ScoreRequest) (*models.ScoreResponse, error) {
	return s.score(ctx, name, req, true)
}

func (s *Service) score(ctx context.Context, name string, req models.ScoreRequest, explain bool) (*models.ScoreResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	m, err := s.lookup(name)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rec := risk.Record(req.Record)
	p, err := evaluate(name, m, rec)
	if err != nil {
		return nil, err
	}

	resp := &models.ScoreResponse{
		ID:        uuid.New().String(),
		PatientID: req.PatientID,
		Model:     name,
		Risk:      p,
		Timestamp: time.Now().UTC(),
	}
	if explain {
		if resp.Features, err = m.Explain(rec); err != nil {
			return nil, err
		}
	}
	resp.Latency = time.Since(start)

	logs := s.logsFor(SourceHTTP, req.PatientID, rec, map[string]float64{name: p}, resp.Latency)
	if explain {
		for _, l := range logs {
			l.Features = featureMap(resp.Features)
		}
	}
	s.save(ctx, logs)
	s.publish(ctx, req.PatientID, map[string]float64{name: p}, nil)

	logger.Log.WithFields(map[string]interface{}{
		"model":      name,
		"patient_id": req.PatientID,
		"latency_us": resp.Latency.Microseconds(),
	}).Debug("Score completed")

	return resp, nil
}

// ScoreBatch scores every item with every requested model (all models when
// none are named). Item failures are reported per model, not returned.
func (s *Service) ScoreBatch(ctx context.Context, req models.BatchScoreRequest) (*models.BatchScoreResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if s.settings.MaxBatch > 0 && len(req.Items) > s.settings.MaxBatch {
		return nil, ValidationError{reason: fmt.Errorf("batch of %d exceeds limit %d", len(req.Items), s.settings.MaxBatch)}
	}
	names, err := s.resolve(req.Models)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	items := make([]models.BatchScoreItem, len(req.Items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.settings.Workers)
	for i := range req.Items {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			item := req.Items[i]
			scores, errs := s.scoreAll(names, risk.Record(item.Record))
			items[i] = models.BatchScoreItem{
				Index:     i,
				PatientID: item.PatientID,
				Scores:    scores,
				Errors:    errs,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp := &models.BatchScoreResponse{Items: items, Timestamp: time.Now().UTC()}
	var logs []*ScoreLog
	for i, item := range items {
		if len(item.Errors) > 0 {
			resp.Failed++
		} else {
			resp.Scored++
		}
		logs = append(logs, s.logsFor(SourceBatch, item.PatientID, risk.Record(req.Items[i].Record), item.Scores, 0)...)
	}
	resp.Latency = time.Since(start)

	metrics.ObserveBatch(len(req.Items))
	s.save(ctx, logs)

	logger.Log.WithFields(map[string]interface{}{
		"items":      len(items),
		"models":     len(names),
		"failed":     resp.Failed,
		"latency_ms": resp.Latency.Milliseconds(),
	}).Info("Batch scored")

	return resp, nil
}

// ScorePatient scores the stored record for patientID.
func (s *Service) ScorePatient(ctx context.Context, patientID string, req models.PatientScoreRequest) (*models.PatientScoreResponse, error) {
	if s.records == nil {
		return nil, ErrRecordStoreDisabled
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	names, err := s.resolve(req.Models)
	if err != nil {
		return nil, err
	}
	rec, err := s.records.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return s.scoreRecord(ctx, SourceHTTP, patientID, names, rec), nil
}

// UpdateRecord merges fields into the patient's stored record.
func (s *Service) UpdateRecord(ctx context.Context, patientID string, fields map[string]interface{}) (risk.Record, error) {
	if s.records == nil {
		return nil, ErrRecordStoreDisabled
	}
	if len(fields) == 0 {
		return nil, ValidationError{reason: errEmptyRecord}
	}
	return s.records.Merge(ctx, patientID, risk.Record(fields))
}

// History returns persisted scores for a patient.
func (s *Service) History(ctx context.Context, patientID string, limit int) ([]ScoreLog, error) {
	if s.repo == nil {
		return nil, nil
	}
	return s.repo.ForPatient(ctx, patientID, limit)
}

// HandleRecordEvent consumes a clinical-record event: the record fields are
// merged into the store when one is configured, then scored and published.
// Malformed events return a ValidationError.
func (s *Service) HandleRecordEvent(ctx context.Context, event models.Event) error {
	patientID, _ := event.Data["patient_id"].(string)
	if patientID == "" {
		return ValidationError{reason: fmt.Errorf("event %s: patient_id required", event.ID)}
	}
	fields, _ := event.Data["record"].(map[string]interface{})
	if len(fields) == 0 {
		return ValidationError{reason: fmt.Errorf("event %s: %w", event.ID, errEmptyRecord)}
	}
	var requested []string
	if raw, ok := event.Data["models"].([]interface{}); ok {
		for _, v := range raw {
			if name, ok := v.(string); ok {
				requested = append(requested, name)
			}
		}
	}
	names, err := s.resolve(requested)
	if err != nil {
		return ValidationError{reason: err}
	}

	rec := risk.Record(fields)
	if s.records != nil {
		if rec, err = s.records.Merge(ctx, patientID, rec); err != nil {
			return fmt.Errorf("merging record: %w", err)
		}
	}

	s.scoreRecord(ctx, SourceEvent, patientID, names, rec)
	return nil
}

func (s *Service) scoreRecord(ctx context.Context, source, patientID string, names []string, rec risk.Record) *models.PatientScoreResponse {
	start := time.Now()
	scores, errs := s.scoreAll(names, rec)
	latency := time.Since(start)

	s.persist(ctx, source, patientID, rec, scores, latency)
	s.publish(ctx, patientID, scores, errs)

	return &models.PatientScoreResponse{
		PatientID: patientID,
		Scores:    scores,
		Errors:    errs,
		Timestamp: time.Now().UTC(),
	}
}

// resolve returns the requested model names, or every served model.
func (s *Service) resolve(requested []string) ([]string, error) {
	if len(requested) == 0 {
		return s.names, nil
	}
	for _, name := range requested {
		if _, err := s.lookup(name); err != nil {
			return nil, err
		}
	}
	return requested, nil
}

func (s *Service) scoreAll(names []string, rec risk.Record) (map[string]float64, map[string]string) {
	scores := make(map[string]float64, len(names))
	var errs map[string]string
	for _, name := range names {
		p, err := evaluate(name, s.models[name], rec)
		if err != nil {
			if errs == nil {
				errs = make(map[string]string)
			}
			errs[name] = err.Error()
			continue
		}
		scores[name] = p
	}
	return scores, errs
}

func evaluate(name string, m risk.Model, rec risk.Record) (float64, error) {
	start := time.Now()
	p, err := m.Score(rec)
	if err == nil && (math.IsNaN(p) || math.IsInf(p, 0)) {
		err = fmt.Errorf("%s: %w: %v", name, risk.ErrNonFiniteRisk, p)
		p = 0
	}
	status := metrics.StatusOK
	switch {
	case err == nil:
	case isClientError(err):
		status = metrics.StatusInvalid
	default:
		status = metrics.StatusError
	}
	metrics.ObserveScore(name, status, p, time.Since(start))
	return p, err
}

func isClientError(err error) bool {
	return IsValidationError(err) ||
		errors.Is(err, risk.ErrMissingField) ||
		errors.Is(err, risk.ErrInvalidField) ||
		errors.Is(err, risk.ErrUnsupportedParameter)
}

func (s *Service) logsFor(source, patientID string, rec risk.Record, scores map[string]float64, latency time.Duration) []*ScoreLog {
	if s.repo == nil || len(scores) == 0 {
		return nil
	}
	logs := make([]*ScoreLog, 0, len(scores))
	for name, p := range scores {
		logs = append(logs, &ScoreLog{
			PatientID: patientID,
			Model:     name,
			Risk:      p,
			Record:    datatypes.JSONMap(rec),
			Source:    source,
			LatencyMs: float64(latency.Microseconds()) / 1000.0,
		})
	}
	return logs
}

func (s *Service) persist(ctx context.Context, source, patientID string, rec risk.Record, scores map[string]float64, latency time.Duration) {
	s.save(ctx, s.logsFor(source, patientID, rec, scores, latency))
}

// save is best effort: a failed audit write never fails a score.
func (s *Service) save(ctx context.Context, logs []*ScoreLog) {
	if len(logs) == 0 {
		return
	}
	if err := s.repo.Create(ctx, logs...); err != nil {
		logger.Log.WithError(err).WithField("logs", len(logs)).Error("Failed to persist score logs")
	}
}

func (s *Service) publish(ctx context.Context, patientID string, scores map[string]float64, errs map[string]string) {
	if s.publisher == nil || (len(scores) == 0 && len(errs) == 0) {
		return
	}
	data := map[string]interface{}{
		"patient_id": patientID,
		"scores":     scores,
	}
	eventType := models.EventRiskScore
	if len(errs) > 0 {
		data["errors"] = errs
		if len(scores) == 0 {
			eventType = models.EventScoreFailed
		}
	}
	event := kafka.NewEvent(eventType, s.settings.Source, data)
	if err := s.publisher.PublishEvent(ctx, patientID, event); err != nil {
		logger.Log.WithError(err).WithField("patient_id", patientID).Error("Failed to publish score event")
	}
}

func featureMap(features map[string]float64) datatypes.JSONMap {
	out := make(datatypes.JSONMap, len(features))
	for k, v := range features {
		out[k] = v
	}
	return out
}
