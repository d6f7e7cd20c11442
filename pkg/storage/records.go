package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/synaptica-ai/cvdrisk/pkg/common/logger"
	"github.com/synaptica-ai/cvdrisk/pkg/risk"
)

var (
	ErrRecordNotFound = errors.New("clinical record not found")
	ErrEmptyPatientID = errors.New("patient id required")
)

const maxMergeRetries = 5

// RecordStore keeps the latest clinical record per patient in Redis so a
// patient can be rescored without resending the record.
type RecordStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRecordStore(client redis.UniversalClient, prefix string, ttl time.Duration) *RecordStore {
	return &RecordStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RecordStore) key(patientID string) string {
	return s.prefix + patientID
}

// Put replaces the stored record.
func (s *RecordStore) Put(ctx context.Context, patientID string, rec risk.Record) error {
	if patientID == "" {
		return ErrEmptyPatientID
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	if err := s.client.Set(ctx, s.key(patientID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("storing record: %w", err)
	}
	logger.Log.WithFields(map[string]interface{}{
		"patient_id": patientID,
		"fields":     len(rec),
	}).Debug("Stored clinical record")
	return nil
}

func (s *RecordStore) Get(ctx context.Context, patientID string) (risk.Record, error) {
	if patientID == "" {
		return nil, ErrEmptyPatientID
	}
	data, err := s.client.Get(ctx, s.key(patientID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading record: %w", err)
	}
	return decodeRecord(data)
}

// Merge overlays fields onto the stored record, creating it when absent, and
// returns the result. Concurrent merges for one patient are serialised with
// an optimistic WATCH transaction.
func (s *RecordStore) Merge(ctx context.Context, patientID string, fields risk.Record) (risk.Record, error) {
	if patientID == "" {
		return nil, ErrEmptyPatientID
	}
	key := s.key(patientID)

	var merged risk.Record
	txf := func(tx *redis.Tx) error {
		merged = risk.Record{}
		data, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		default:
			if merged, err = decodeRecord(data); err != nil {
				return err
			}
		}
		for k, v := range fields {
			merged[k] = v
		}
		encoded, err := json.Marshal(merged)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, s.ttl)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxMergeRetries; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return merged, nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return nil, fmt.Errorf("merging record: %w", err)
		}
	}
	return nil, fmt.Errorf("merging record for %s: %w", patientID, redis.TxFailedErr)
}

func (s *RecordStore) Delete(ctx context.Context, patientID string) error {
	if patientID == "" {
		return ErrEmptyPatientID
	}
	return s.client.Del(ctx, s.key(patientID)).Err()
}

// decodeRecord keeps numbers as json.Number so integers survive unchanged.
func decodeRecord(data []byte) (risk.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var rec risk.Record
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("decoding record: %w", err)
	}
	if rec == nil {
		rec = risk.Record{}
	}
	return rec, nil
}
