package main

import (
	"flag"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/rollcall/internal/app"
	"github.com/shrimpsizemoose/rollcall/internal/bot"
)

func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	flag.Parse()

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}
	defer service.Close()

	b, err := bot.New(service.Config, service.Tracker)
	if err != nil {
		logger.Error.Fatalf("Failed to create bot: %v", err)
	}

	logger.Info.Printf("Bot initialized, %d admins configured", len(service.Config.Bot.AdminIDs))
	if err := b.Start(); err != nil {
		logger.Error.Fatalf("Bot error: %v", err)
	}
}
