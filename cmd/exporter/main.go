package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/rollcall/internal/app"
	"github.com/shrimpsizemoose/rollcall/internal/export"
)

func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	flag.Parse()

	config, err := app.LoadConfig(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}

	store, err := app.NewStore(config.Storage.DSN)
	if err != nil {
		logger.Error.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	exporter, err := export.NewGSheetExporter(config, store)
	if err != nil {
		logger.Error.Fatalf("Failed to initialize Google Sheets exporter: %v", err)
	}
	defer exporter.Stop()

	logger.Info.Printf("Exporting %s on schedule %q", config.Storage.Name, config.GSheet.Schedule)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info.Println("Exporter stopped")
}
