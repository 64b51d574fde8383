package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/binaryshrey/HungrAI/internal/ai"
	"github.com/binaryshrey/HungrAI/internal/history"
	"github.com/binaryshrey/HungrAI/internal/upload"
)

// App holds the request handlers' collaborators. Everything is constructed
// once at startup and injected; History may be nil when no datastore is
// configured.
type App struct {
	Analyzer      ai.RecipeAnalyzer
	History       history.Store
	MaxUploadSize int64
}

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readImages parses the multipart form and validates the "files" batch.
// A nil return means the response has already been written.
func (app *App) readImages(w http.ResponseWriter, r *http.Request) []ai.Image {
	r.Body = http.MaxBytesReader(w, r.Body, app.MaxUploadSize)

	if err := r.ParseMultipartForm(app.MaxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return nil
	}

	images, err := upload.ReadBatch(r.MultipartForm.File["files"])
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return nil
	}

	return images
}

func (app *App) PredictHandler(w http.ResponseWriter, r *http.Request) {
	images := app.readImages(w, r)
	if images == nil {
		return
	}

	result, err := app.Analyzer.Analyze(r.Context(), images)
	if err != nil {
		log.Printf("Model invocation failed: %v", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, result)
}

type saveRequest struct {
	UserID         string          `json:"user_id"`
	UserEmail      string          `json:"user_email"`
	Predictions    []ai.Prediction `json:"predictions"`
	Ingredients    []string        `json:"ingredients"`
	Recipes        []ai.Recipe     `json:"recipes"`
	CandidateCount int             `json:"candidate_count"`
	Metadata       map[string]any  `json:"metadata"`
}

type saveResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	RecordID  string `json:"record_id"`
	Timestamp string `json:"timestamp"`
}

func (app *App) SavePredictionHandler(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if app.History == nil {
		respondError(w, http.StatusServiceUnavailable, history.ErrNotConfigured.Error())
		return
	}

	rec := &history.Record{
		UserID:         req.UserID,
		UserEmail:      req.UserEmail,
		Predictions:    req.Predictions,
		Ingredients:    req.Ingredients,
		Recipes:        req.Recipes,
		CandidateCount: req.CandidateCount,
		Metadata:       req.Metadata,
	}

	id, createdAt, err := app.History.Save(r.Context(), rec)
	if err != nil {
		if errors.Is(err, history.ErrNotConfigured) {
			respondError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		log.Printf("Failed to save prediction: %v", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, saveResponse{
		Success:   true,
		Message:   "prediction saved",
		RecordID:  id,
		Timestamp: createdAt.Format(time.RFC3339),
	})
}

type predictAndSaveResponse struct {
	*ai.AnalysisResult
	Saved     bool   `json:"saved"`
	RecordID  string `json:"record_id,omitempty"`
	SavedAt   string `json:"saved_at,omitempty"`
	SaveError string `json:"save_error,omitempty"`
}

// PredictAndSaveHandler computes the primary result, then attempts the
// persistence side-call. A failed save never discards the analysis; its
// outcome is reported in the same body.
func (app *App) PredictAndSaveHandler(w http.ResponseWriter, r *http.Request) {
	images := app.readImages(w, r)
	if images == nil {
		return
	}

	result, err := app.Analyzer.Analyze(r.Context(), images)
	if err != nil {
		log.Printf("Model invocation failed: %v", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := predictAndSaveResponse{AnalysisResult: result}

	filenames := make([]string, len(images))
	for i, img := range images {
		filenames[i] = img.Filename
	}

	rec := &history.Record{
		UserID:         formOrQuery(r, "user_id"),
		UserEmail:      formOrQuery(r, "user_email"),
		Predictions:    result.Predictions,
		Ingredients:    result.Ingredients,
		Recipes:        result.Recipes,
		CandidateCount: result.CandidateCount,
		Metadata: map[string]any{
			"file_count": len(images),
			"filenames":  filenames,
		},
	}

	if app.History == nil {
		resp.SaveError = history.ErrNotConfigured.Error()
		respondJSON(w, http.StatusOK, resp)
		return
	}

	id, createdAt, err := app.History.Save(r.Context(), rec)
	if err != nil {
		log.Printf("Failed to save prediction: %v", err)
		resp.SaveError = err.Error()
		respondJSON(w, http.StatusOK, resp)
		return
	}

	resp.Saved = true
	resp.RecordID = id
	resp.SavedAt = createdAt.Format(time.RFC3339)
	respondJSON(w, http.StatusOK, resp)
}

type historyResponse struct {
	Records []history.Record `json:"records"`
}

func (app *App) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	if app.History == nil {
		respondError(w, http.StatusServiceUnavailable, history.ErrNotConfigured.Error())
		return
	}

	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	records, err := app.History.List(r.Context(), r.URL.Query().Get("user_id"), limit)
	if err != nil {
		log.Printf("Failed to list history: %v", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if records == nil {
		records = []history.Record{}
	}
	respondJSON(w, http.StatusOK, historyResponse{Records: records})
}

// formOrQuery reads a value from the multipart form, falling back to the
// query string.
func formOrQuery(r *http.Request, key string) string {
	if v := r.FormValue(key); v != "" {
		return v
	}
	return r.URL.Query().Get(key)
}
