package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/feldcast/feldcast/internal/db"
	"github.com/feldcast/feldcast/internal/handlers"
	"github.com/feldcast/feldcast/internal/scoring"
	"github.com/feldcast/feldcast/internal/venue"
	"github.com/feldcast/feldcast/internal/weather"
)

// Tempelhofer Feld.
const (
	venueLat = 52.4732
	venueLon = 13.4053
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Scoring configuration is validated once here; a broken profile file
	// or calendar is a startup failure, not a runtime condition.
	calendar, err := venue.DefaultCalendar()
	if err != nil {
		log.Fatal(err)
	}
	profiles, err := scoring.LoadProfiles(os.Getenv("FELDCAST_PROFILES"))
	if err != nil {
		log.Fatal(err)
	}
	engine, err := scoring.NewEngine(profiles, calendar)
	if err != nil {
		log.Fatal(err)
	}

	// The persistent cache tier is optional; without it the service still
	// runs on the in-memory tier alone.
	var store *db.DB
	database, err := db.NewDB()
	if err != nil {
		log.Printf("Warning: cache store unavailable: %v", err)
		log.Println("Continuing with in-memory cache only...")
	} else {
		defer database.Close()
		store = database
		log.Println("Cache store opened successfully")
	}

	var weatherStore weather.Store
	var pinger handlers.Pinger
	if store != nil {
		weatherStore = store
		pinger = store
	}
	wService := weather.NewService(weatherStore, calendar.Location)

	h := handlers.New(wService, engine, pinger, venueLat, venueLon)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.HandleHealth)
	mux.HandleFunc("/api/forecast", h.HandleForecast)
	mux.HandleFunc("/api/venue", h.HandleVenue)

	addr := fmt.Sprintf(":%s", port)
	log.Printf("Server starting on http://localhost%s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal(err)
	}
}
