package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/binaryshrey/HungrAI/internal/ai"
	"github.com/binaryshrey/HungrAI/internal/api"
	"github.com/binaryshrey/HungrAI/internal/history"
)

func main() {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	maxUploadSize := int64(50 << 20)
	if sizeStr := os.Getenv("MAX_UPLOAD_SIZE"); sizeStr != "" {
		size, err := strconv.ParseInt(sizeStr, 10, 64)
		if err != nil {
			log.Fatal("Invalid MAX_UPLOAD_SIZE:", err)
		}
		maxUploadSize = size
	}

	project := os.Getenv("GOOGLE_CLOUD_PROJECT")
	if project == "" {
		log.Fatal("GOOGLE_CLOUD_PROJECT is not set")
	}

	location := os.Getenv("GOOGLE_CLOUD_LOCATION")
	if location == "" {
		log.Fatal("GOOGLE_CLOUD_LOCATION is not set")
	}

	model := os.Getenv("GEMINI_MODEL")

	geminiClient, err := ai.NewGeminiClient(context.Background(), project, location, model)
	if err != nil {
		log.Fatal("Failed to initialize Gemini client:", err)
	}

	// Persistence is optional: prefer the hosted datastore, fall back to a
	// local SQLite file, otherwise run with history disabled.
	var store history.Store
	supabaseURL := os.Getenv("SUPABASE_URL")
	supabaseKey := os.Getenv("SUPABASE_KEY")
	sqlitePath := os.Getenv("HISTORY_DB_PATH")

	switch {
	case supabaseURL != "" && supabaseKey != "":
		store = history.NewSupabaseStore(supabaseURL, supabaseKey)
		log.Printf("Prediction history enabled (datastore: %s)", supabaseURL)
	case sqlitePath != "":
		sqliteStore, err := history.NewSQLiteStore(sqlitePath)
		if err != nil {
			log.Fatal("Failed to initialize history database:", err)
		}
		defer sqliteStore.Close()
		store = sqliteStore
		log.Printf("Prediction history enabled (sqlite: %s)", sqlitePath)
	default:
		log.Println("Prediction history disabled. Set SUPABASE_URL and SUPABASE_KEY, or HISTORY_DB_PATH")
	}

	app := &api.App{
		Analyzer:      ai.NewRecipeService(geminiClient),
		History:       store,
		MaxUploadSize: maxUploadSize,
	}

	router := api.NewRouter(app)

	log.Printf("Server starting on port %s", port)
	log.Printf("Model: project %s, location %s", project, location)
	log.Printf("Max upload size: %d bytes", maxUploadSize)

	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatal(err)
	}
}
