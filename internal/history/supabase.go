package history

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const historyTable = "prediction_history"

// SupabaseStore writes records through the datastore's REST gateway using
// the project URL and service key from the environment.
type SupabaseStore struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewSupabaseStore(baseURL, apiKey string) *SupabaseStore {
	return &SupabaseStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (s *SupabaseStore) setHeaders(req *http.Request) {
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")
}

func (s *SupabaseStore) Save(ctx context.Context, rec *Record) (string, time.Time, error) {
	rec.CreatedAt = time.Now().UTC()

	jsonData, err := json.Marshal(rec)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to marshal record: %w", err)
	}

	endpoint := fmt.Sprintf("%s/rest/v1/%s", s.baseURL, historyTable)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to create request: %w", err)
	}
	s.setHeaders(req)
	req.Header.Set("Prefer", "return=representation")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to call datastore: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", time.Time{}, fmt.Errorf("datastore insert failed with status %d: %s", resp.StatusCode, string(body))
	}

	var rows []struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to unmarshal inserted row: %w", err)
	}
	if len(rows) == 0 {
		return "", time.Time{}, fmt.Errorf("datastore returned no inserted row")
	}

	id := strings.Trim(string(rows[0].ID), `"`)
	rec.ID = id

	return id, rec.CreatedAt, nil
}

func (s *SupabaseStore) List(ctx context.Context, userID string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}

	query := url.Values{}
	query.Set("select", "*")
	query.Set("order", "created_at.desc")
	query.Set("limit", fmt.Sprintf("%d", limit))
	if userID != "" {
		query.Set("user_id", "eq."+userID)
	}

	endpoint := fmt.Sprintf("%s/rest/v1/%s?%s", s.baseURL, historyTable, query.Encode())
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	s.setHeaders(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call datastore: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("datastore query failed with status %d: %s", resp.StatusCode, string(body))
	}

	var records []Record
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal records: %w", err)
	}

	return records, nil
}
