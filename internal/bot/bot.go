package bot

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/teachteam/internal/app"
	"github.com/shrimpsizemoose/teachteam/internal/models"
)

type messenger interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
}

// LinkStore maps telegram users to lecturers and issues their API tokens.
// app.TokenManager is the production implementation.
type LinkStore interface {
	FetchOrCreateLecturerToken(ctx context.Context, lecturer string) (*models.TokenInfo, bool, error)
	SaveTelegramLink(ctx context.Context, link *models.TelegramLink) error
	FetchTelegramLink(ctx context.Context, username string) (*models.TelegramLink, error)
}

type Bot struct {
	config  *Config
	service *app.Service
	links   LinkStore
	api     messenger
	admins  map[int64]bool
}

func New(config *Config, service *app.Service, links LinkStore) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(config.Bot.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}
	logger.Info.Printf("Authorized on account %s", api.Self.UserName)

	return newBot(config, service, links, api), nil
}

func newBot(config *Config, service *app.Service, links LinkStore, api messenger) *Bot {
	admins := make(map[int64]bool)
	for _, id := range config.Bot.AdminIDs {
		admins[id] = true
	}

	return &Bot{
		config:  config,
		service: service,
		links:   links,
		api:     api,
		admins:  admins,
	}
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
			if update.Message == nil {
				continue
			}

			go b.handleMessage(update.Message)

		case <-sigChan:
			logger.Info.Println("Shutting down bot...")
			return nil
		}
	}
}
