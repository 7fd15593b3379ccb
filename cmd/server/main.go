package main

import (
	"flag"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/formula-evergreen/grandstand/internal/app"
	"github.com/formula-evergreen/grandstand/internal/handlers"
)

func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	flag.Parse()

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to start service: %v", err)
	}
	defer service.Close()

	authHandler := handlers.NewAuthHandler(service)
	settingsHandler := handlers.NewSettingsHandler(service)
	leaderboardHandler := handlers.NewLeaderboardHandler(service)

	http.HandleFunc("GET /auth/google", authHandler.HandleGoogleLogin)
	http.HandleFunc("GET /auth/google/callback", authHandler.HandleGoogleCallback)
	http.HandleFunc("POST /auth/logout", authHandler.HandleLogout)
	http.HandleFunc("GET /auth/user", authHandler.HandleCurrentUser)

	http.HandleFunc("GET /race-settings", handlers.Instrument("/race-settings", settingsHandler.HandleGet))
	http.HandleFunc("PUT /race-settings", handlers.Instrument("/race-settings", settingsHandler.HandleUpdate))
	http.HandleFunc("POST /race-settings/circuit-image", handlers.Instrument("/race-settings/circuit-image", settingsHandler.HandleUploadCircuitImage))
	http.HandleFunc("DELETE /race-settings/circuit-image", handlers.Instrument("/race-settings/circuit-image", settingsHandler.HandleDeleteCircuitImage))
	http.HandleFunc("POST /race-settings/clear-next-race", handlers.Instrument("/race-settings/clear-next-race", settingsHandler.HandleClearNextRace))

	http.HandleFunc("GET /leaderboard", handlers.Instrument("/leaderboard", leaderboardHandler.HandleList))
	http.HandleFunc("POST /leaderboard", handlers.Instrument("/leaderboard", leaderboardHandler.HandleCreate))
	http.HandleFunc("PUT /leaderboard/{id}", handlers.Instrument("/leaderboard/{id}", leaderboardHandler.HandleUpdate))
	http.HandleFunc("DELETE /leaderboard/{id}", handlers.Instrument("/leaderboard/{id}", leaderboardHandler.HandleDelete))
	http.HandleFunc("POST /leaderboard/{id}/profile-picture", handlers.Instrument("/leaderboard/{id}/profile-picture", leaderboardHandler.HandleUploadProfilePicture))
	http.HandleFunc("DELETE /leaderboard/{id}/profile-picture", handlers.Instrument("/leaderboard/{id}/profile-picture", leaderboardHandler.HandleDeleteProfilePicture))

	http.Handle("GET /", http.FileServer(http.Dir(service.Config.Server.PublicDir)))
	http.Handle("/metrics", promhttp.Handler())

	logger.Info.Printf("Starting grandstand server on %s", service.Config.Server.Port)
	if err := http.ListenAndServe(service.Config.Server.Port, nil); err != nil {
		logger.Error.Fatalf("Grandstand server failed: %v", err)
	}
}
