package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/teachteam/internal/app"
	"github.com/shrimpsizemoose/teachteam/internal/handlers"
)

func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	flag.Parse()

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}
	defer service.Close()

	c := cors.New(cors.Options{
		AllowedOrigins: service.Config.Server.AllowedOrigins,
		AllowedHeaders: []string{
			"Content-Type",
			service.Config.API.LecturerHeader,
			service.Config.Auth.TokenHeader,
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:         service.Config.Server.Port,
		Handler:      c.Handler(handlers.NewRouter(service)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info.Printf("Starting teachteam server on %s", service.Config.Server.Port)
		logger.Debug.Printf("Auth enabled: %v, lecturer header: %s", service.Auth.Enabled(), service.Config.API.LecturerHeader)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error.Fatalf("Teachteam server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error.Printf("Server forced shutdown: %v", err)
	}
}
