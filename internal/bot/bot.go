package bot

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/rollcall/internal/app"
	"github.com/shrimpsizemoose/rollcall/internal/tracker"
)

type Bot struct {
	config  *app.Config
	tracker *tracker.Tracker
	api     *tgbotapi.BotAPI
	admins  map[int64]bool
}

func New(config *app.Config, tracker *tracker.Tracker) (*Bot, error) {
	if config.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is not specified in config")
	}

	api, err := tgbotapi.NewBotAPI(config.Bot.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	admins := make(map[int64]bool)
	for _, id := range config.Bot.AdminIDs {
		admins[id] = true
	}

	return &Bot{
		config:  config,
		tracker: tracker,
		api:     api,
		admins:  admins,
	}, nil
}

func (b *Bot) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case update := <-updates:
			switch {
			case update.Message != nil:
				go b.handleMessage(update.Message)
			case update.CallbackQuery != nil:
				go b.handleCallback(update.CallbackQuery)
			}

		case <-sigChan:
			logger.Info.Println("Shutting down bot...")
			b.api.StopReceivingUpdates()
			return nil
		}
	}
}

func (b *Bot) requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), b.config.APITimeout())
}
