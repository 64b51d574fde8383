package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", HealthHandler)
	r.Post("/predict", app.PredictHandler)
	r.Post("/save-prediction", app.SavePredictionHandler)
	r.Post("/predict-and-save", app.PredictAndSaveHandler)
	r.Get("/history", app.HistoryHandler)

	return r
}
