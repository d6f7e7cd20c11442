package scoring

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Score log sources.
const (
	SourceHTTP  = "http"
	SourceBatch = "batch"
	SourceEvent = "event"
)

// ScoreLog is the persistence model for audited risk scores.
type ScoreLog struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey;column:id" json:"id"`
	PatientID string            `gorm:"column:patient_id;index" json:"patient_id"`
	Model     string            `gorm:"column:model;index" json:"model"`
	Risk      float64           `gorm:"column:risk" json:"risk"`
	Record    datatypes.JSONMap `gorm:"column:record" json:"record"`
	Features  datatypes.JSONMap `gorm:"column:features" json:"features,omitempty"`
	Source    string            `gorm:"column:source" json:"source"`
	LatencyMs float64           `gorm:"column:latency_ms" json:"latency_ms"`
	CreatedAt time.Time         `gorm:"column:created_at;index" json:"created_at"`
}

// TableName overrides gorm naming.
func (ScoreLog) TableName() string {
	return "score_logs"
}

// Repository handles score log persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&ScoreLog{})
}

func (r *Repository) Create(ctx context.Context, logs ...*ScoreLog) error {
	if len(logs) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for _, l := range logs {
		if l.ID == uuid.Nil {
			l.ID = uuid.New()
		}
		if l.CreatedAt.IsZero() {
			l.CreatedAt = now
		}
	}
	return r.db.WithContext(ctx).CreateInBatches(logs, 100).Error
}

// Recent returns the most recent score logs up to limit.
func (r *Repository) Recent(ctx context.Context, limit int) ([]ScoreLog, error) {
	return r.find(ctx, r.db, limit)
}

// ForPatient returns a patient's score history, newest first.
func (r *Repository) ForPatient(ctx context.Context, patientID string, limit int) ([]ScoreLog, error) {
	return r.find(ctx, r.db.Where("patient_id = ?", patientID), limit)
}

func (r *Repository) find(ctx context.Context, q *gorm.DB, limit int) ([]ScoreLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var logs []ScoreLog
	err := q.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
