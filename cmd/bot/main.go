package main

import (
	"flag"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/teachteam/internal/app"
	"github.com/shrimpsizemoose/teachteam/internal/bot"
)

func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	flag.Parse()

	cfg, err := bot.ReadConfig(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to read bot config: %v", err)
	}

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to create service: %v", err)
	}
	defer service.Close()

	redis, err := app.NewRedisClient(service.Config.Auth.RedisURL)
	if err != nil {
		logger.Error.Fatalf("Failed to connect to redis: %v", err)
	}
	tokens := app.NewTokenManager(redis)
	defer tokens.Close()

	b, err := bot.New(cfg, service, tokens)
	if err != nil {
		logger.Error.Fatalf("Failed to create bot: %v", err)
	}

	logger.Info.Println("Bot initialized successfully")
	if err := b.Start(); err != nil {
		logger.Error.Fatalf("Bot error: %v", err)
	}
}
