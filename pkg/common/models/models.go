package models

import (
	"time"
)

// Event Bus models
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"` // clinical-record, risk-score
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}

const (
	EventClinicalRecord = "clinical-record"
	EventRiskScore      = "risk-score"
	EventScoreFailed    = "risk-score-failed"
)

// Scoring
type ScoreRequest struct {
	PatientID string                 `json:"patient_id,omitempty"`
	Model     string                 `json:"model,omitempty" validate:"omitempty,max=64"`
	Record    map[string]interface{} `json:"record" validate:"required,min=1"`
}

type ScoreResponse struct {
	ID        string             `json:"id"`
	PatientID string             `json:"patient_id,omitempty"`
	Model     string             `json:"model"`
	Risk      float64            `json:"risk"`
	Features  map[string]float64 `json:"features,omitempty"`
	Latency   time.Duration      `json:"latency"`
	Timestamp time.Time          `json:"timestamp"`
}

type BatchScoreRequest struct {
	Models []string       `json:"models,omitempty" validate:"omitempty,dive,required"`
	Items  []ScoreRequest `json:"items" validate:"required,min=1,dive"`
}

// BatchScoreItem carries either a result or the error that prevented one.
type BatchScoreItem struct {
	Index     int                `json:"index"`
	PatientID string             `json:"patient_id,omitempty"`
	Scores    map[string]float64 `json:"scores,omitempty"`
	Errors    map[string]string  `json:"errors,omitempty"`
}

type BatchScoreResponse struct {
	Items     []BatchScoreItem `json:"items"`
	Scored    int              `json:"scored"`
	Failed    int              `json:"failed"`
	Latency   time.Duration    `json:"latency"`
	Timestamp time.Time        `json:"timestamp"`
}

// PatientScoreRequest scores a stored record with one or more models.
type PatientScoreRequest struct {
	Models []string `json:"models,omitempty" validate:"omitempty,dive,required"`
}

type PatientScoreResponse struct {
	PatientID string             `json:"patient_id"`
	Scores    map[string]float64 `json:"scores"`
	Errors    map[string]string  `json:"errors,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

// ModelInfo describes a configured model instance.
type ModelInfo struct {
	Name             string   `json:"name"`
	Equation         string   `json:"equation"`
	RequiredFeatures []string `json:"required_features"`
	FeatureKeys      []string `json:"feature_keys"`
}
