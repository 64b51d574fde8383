package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/binaryshrey/HungrAI/internal/ai"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history_test.db"))
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func sampleRecord() *Record {
	return &Record{
		UserID:    "user-1",
		UserEmail: "user@example.com",
		Predictions: []ai.Prediction{
			{Filename: "tomato.jpg", Label: "tomato", Confidence: 0.93},
		},
		Ingredients: []string{"tomato", "basil"},
		Recipes: []ai.Recipe{
			{
				ID:           1,
				Title:        "Tomato Soup",
				Score:        0.9,
				Matched:      []string{"tomato"},
				Missing:      []string{"cream"},
				Instructions: []string{"Simmer", "Blend"},
			},
		},
		CandidateCount: 1,
		Metadata:       map[string]any{"file_count": float64(1)},
	}
}

func TestSQLiteStoreSave(t *testing.T) {
	store := setupTestStore(t)

	rec := sampleRecord()
	id, createdAt, err := store.Save(context.Background(), rec)
	if err != nil {
		t.Fatalf("failed to save record: %v", err)
	}

	if id == "" {
		t.Error("expected non-empty record ID")
	}
	if createdAt.IsZero() {
		t.Error("expected created_at to be stamped")
	}
	if createdAt.Location() != time.UTC {
		t.Errorf("expected UTC timestamp, got %v", createdAt.Location())
	}
}

func TestSQLiteStoreSaveAndList(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	rec := sampleRecord()
	id, _, err := store.Save(ctx, rec)
	if err != nil {
		t.Fatalf("failed to save record: %v", err)
	}

	records, err := store.List(ctx, "", 10)
	if err != nil {
		t.Fatalf("failed to list records: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	got := records[0]
	if got.ID != id {
		t.Errorf("expected ID %s, got %s", id, got.ID)
	}
	if got.UserEmail != rec.UserEmail {
		t.Errorf("expected email %s, got %s", rec.UserEmail, got.UserEmail)
	}
	if len(got.Predictions) != 1 || got.Predictions[0].Label != "tomato" {
		t.Errorf("predictions not round-tripped: %+v", got.Predictions)
	}
	if len(got.Recipes) != 1 || got.Recipes[0].Title != "Tomato Soup" {
		t.Errorf("recipes not round-tripped: %+v", got.Recipes)
	}
	if got.Metadata["file_count"] != float64(1) {
		t.Errorf("metadata not round-tripped: %+v", got.Metadata)
	}
}

func TestSQLiteStoreListFiltersByUser(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	recA := sampleRecord()
	recA.UserID = "alice"
	if _, _, err := store.Save(ctx, recA); err != nil {
		t.Fatalf("failed to save record: %v", err)
	}

	recB := sampleRecord()
	recB.UserID = "bob"
	if _, _, err := store.Save(ctx, recB); err != nil {
		t.Fatalf("failed to save record: %v", err)
	}

	records, err := store.List(ctx, "alice", 10)
	if err != nil {
		t.Fatalf("failed to list records: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record for alice, got %d", len(records))
	}
	if records[0].UserID != "alice" {
		t.Errorf("expected alice's record, got %s", records[0].UserID)
	}
}

func TestSQLiteStoreListNewestFirst(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	first := sampleRecord()
	if _, _, err := store.Save(ctx, first); err != nil {
		t.Fatalf("failed to save record: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	second := sampleRecord()
	secondID, _, err := store.Save(ctx, second)
	if err != nil {
		t.Fatalf("failed to save record: %v", err)
	}

	records, err := store.List(ctx, "", 10)
	if err != nil {
		t.Fatalf("failed to list records: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != secondID {
		t.Errorf("expected most recent record first, got %s", records[0].ID)
	}
}
