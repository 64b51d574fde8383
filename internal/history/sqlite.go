package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/binaryshrey/HungrAI/internal/ai"
)

// SQLiteStore is a local development backend with the same contract as the
// hosted datastore. Nested fields are stored as JSON text columns.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.createTable(); err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) createTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS prediction_history (
		id TEXT PRIMARY KEY,
		user_id TEXT,
		user_email TEXT,
		predictions TEXT NOT NULL,
		ingredients TEXT NOT NULL,
		recipes TEXT NOT NULL,
		candidate_count INTEGER NOT NULL,
		metadata TEXT,
		created_at DATETIME NOT NULL
	);
	`

	_, err := s.db.Exec(query)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Save(ctx context.Context, rec *Record) (string, time.Time, error) {
	rec.ID = uuid.New().String()
	rec.CreatedAt = time.Now().UTC()

	predictions, err := json.Marshal(rec.Predictions)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to marshal predictions: %w", err)
	}
	ingredients, err := json.Marshal(rec.Ingredients)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to marshal ingredients: %w", err)
	}
	recipes, err := json.Marshal(rec.Recipes)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to marshal recipes: %w", err)
	}
	metadata, err := json.Marshal(rec.Metadata)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	query := `
		INSERT INTO prediction_history (
			id, user_id, user_email, predictions, ingredients,
			recipes, candidate_count, metadata, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		rec.ID,
		rec.UserID,
		rec.UserEmail,
		string(predictions),
		string(ingredients),
		string(recipes),
		rec.CandidateCount,
		string(metadata),
		rec.CreatedAt,
	)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to insert record: %w", err)
	}

	return rec.ID, rec.CreatedAt, nil
}

func (s *SQLiteStore) List(ctx context.Context, userID string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, user_id, user_email, predictions, ingredients,
			   recipes, candidate_count, metadata, created_at
		FROM prediction_history`

	args := []any{}
	if userID != "" {
		query += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var predictions, ingredients, recipes, metadata string

		err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.UserEmail,
			&predictions,
			&ingredients,
			&recipes,
			&rec.CandidateCount,
			&metadata,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}

		if err := json.Unmarshal([]byte(predictions), &rec.Predictions); err != nil {
			rec.Predictions = []ai.Prediction{}
		}
		if err := json.Unmarshal([]byte(ingredients), &rec.Ingredients); err != nil {
			rec.Ingredients = []string{}
		}
		if err := json.Unmarshal([]byte(recipes), &rec.Recipes); err != nil {
			rec.Recipes = []ai.Recipe{}
		}
		if metadata != "" && metadata != "null" {
			if err := json.Unmarshal([]byte(metadata), &rec.Metadata); err != nil {
				rec.Metadata = nil
			}
		}

		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}

	return records, nil
}
