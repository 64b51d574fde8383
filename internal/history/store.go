// Package history persists analysis results. The store is optional: when no
// backend is configured every call fails with ErrNotConfigured before any
// network or disk I/O happens.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/binaryshrey/HungrAI/internal/ai"
)

// ErrNotConfigured is returned when persistence was requested but no
// datastore backend was configured at startup.
var ErrNotConfigured = errors.New("prediction history store is not configured")

// Record is one saved analysis plus caller-supplied identity and metadata.
type Record struct {
	ID             string          `json:"id,omitempty"`
	UserID         string          `json:"user_id,omitempty"`
	UserEmail      string          `json:"user_email,omitempty"`
	Predictions    []ai.Prediction `json:"predictions"`
	Ingredients    []string        `json:"ingredients"`
	Recipes        []ai.Recipe     `json:"recipes"`
	CandidateCount int             `json:"candidate_count"`
	Metadata       map[string]any  `json:"metadata,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

type Store interface {
	// Save stamps the record with the current UTC time, inserts it, and
	// returns the stored record's ID and timestamp. No retries.
	Save(ctx context.Context, rec *Record) (string, time.Time, error)

	// List returns the most recent records, newest first, optionally
	// filtered by user ID.
	List(ctx context.Context, userID string, limit int) ([]Record, error)
}
