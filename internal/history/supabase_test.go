package history

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSupabaseStoreSave(t *testing.T) {
	var gotPath, gotAPIKey, gotPrefer string
	var gotBody Record

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAPIKey = r.Header.Get("apikey")
		gotPrefer = r.Header.Get("Prefer")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode insert body: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`[{"id": "rec-123"}]`))
	}))
	defer server.Close()

	store := NewSupabaseStore(server.URL, "service-key")

	rec := sampleRecord()
	id, createdAt, err := store.Save(context.Background(), rec)
	if err != nil {
		t.Fatalf("failed to save record: %v", err)
	}

	if id != "rec-123" {
		t.Errorf("expected id rec-123, got %q", id)
	}
	if createdAt.IsZero() {
		t.Error("expected created_at to be stamped")
	}
	if gotPath != "/rest/v1/prediction_history" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotAPIKey != "service-key" {
		t.Errorf("expected apikey header, got %q", gotAPIKey)
	}
	if gotPrefer != "return=representation" {
		t.Errorf("expected Prefer return=representation, got %q", gotPrefer)
	}
	if gotBody.CreatedAt.IsZero() {
		t.Error("insert body should carry the stamped timestamp")
	}
	if len(gotBody.Predictions) != 1 {
		t.Errorf("insert body should carry predictions, got %+v", gotBody.Predictions)
	}
}

func TestSupabaseStoreSaveNumericID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`[{"id": 42}]`))
	}))
	defer server.Close()

	store := NewSupabaseStore(server.URL, "key")

	id, _, err := store.Save(context.Background(), sampleRecord())
	if err != nil {
		t.Fatalf("failed to save record: %v", err)
	}
	if id != "42" {
		t.Errorf("expected id 42, got %q", id)
	}
}

func TestSupabaseStoreSaveFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message": "invalid API key"}`))
	}))
	defer server.Close()

	store := NewSupabaseStore(server.URL, "bad-key")

	_, _, err := store.Save(context.Background(), sampleRecord())
	if err == nil {
		t.Fatal("expected error on insert failure")
	}
	if !strings.Contains(err.Error(), "invalid API key") {
		t.Errorf("error should carry the datastore message, got %q", err.Error())
	}
}

func TestSupabaseStoreList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("user_id") != "eq.alice" {
			t.Errorf("expected user_id=eq.alice filter, got %q", q.Get("user_id"))
		}
		if q.Get("order") != "created_at.desc" {
			t.Errorf("expected order=created_at.desc, got %q", q.Get("order"))
		}
		if q.Get("limit") != "5" {
			t.Errorf("expected limit=5, got %q", q.Get("limit"))
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id": "rec-1", "user_id": "alice", "predictions": [], "ingredients": [], "recipes": [], "candidate_count": 0, "created_at": "2025-01-02T03:04:05Z"}]`))
	}))
	defer server.Close()

	store := NewSupabaseStore(server.URL, "key")

	records, err := store.List(context.Background(), "alice", 5)
	if err != nil {
		t.Fatalf("failed to list records: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].ID != "rec-1" || records[0].UserID != "alice" {
		t.Errorf("unexpected record %+v", records[0])
	}
}
