package main

import (
	"flag"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/rollcall/internal/app"
	"github.com/shrimpsizemoose/rollcall/internal/handlers"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to config file")
	flag.Parse()

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}
	defer service.Close()

	if err := service.Config.RequireServer(); err != nil {
		logger.Error.Fatalf("Invalid server config: %v", err)
	}

	mux := http.NewServeMux()
	handlers.NewAttendanceHandler(service).Register(mux)
	mux.Handle("/metrics", promhttp.Handler())

	logger.Info.Printf("Starting rollcall server on %s", service.Config.Server.Port)
	logger.Debug.Printf("Auth enabled: %v, storage: %s", service.Config.Server.EnableAuth, service.Config.Storage.Name)
	if err := http.ListenAndServe(service.Config.Server.Port, mux); err != nil {
		logger.Error.Fatalf("Rollcall server failed: %v", err)
	}
}
