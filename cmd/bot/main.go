package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"tebex-support-bot/internal/bot"
	"tebex-support-bot/internal/client"
	"tebex-support-bot/internal/config"
	"tebex-support-bot/internal/logger"
	"tebex-support-bot/internal/repository"
	"tebex-support-bot/internal/server"
	"tebex-support-bot/internal/service"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(&cfg.Log)

	db, err := client.InitDB(cfg.DatabaseURL)
	if err != nil {
		log.Error("unable to initialize database", "error", err)
		os.Exit(1)
	}

	session, err := discordgo.New("Bot " + cfg.Discord.BotToken)
	if err != nil {
		log.Error("unable to create discord session", "error", err)
		os.Exit(1)
	}

	settingRepo := repository.NewSettingRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	ticketRepo := repository.NewTicketRepository(db)

	tebexClient := client.NewTebexClient(&cfg.Tebex)
	guild := bot.NewGuildClient(session, cfg.Discord.MainGuildID)

	settings := service.NewSettingsService(settingRepo, log)
	purchases := service.NewPurchaseService(customerRepo, transactionRepo, tebexClient, settings, guild, log)
	tickets := service.NewTicketService(ticketRepo, tebexClient, guild, log)

	ctx := context.Background()
	settings.Initialize(ctx)

	b := bot.New(session, &cfg.Discord, log, settings, purchases, tickets, tebexClient)
	if err := b.Start(); err != nil {
		log.Error("unable to start bot", "error", err)
		os.Exit(1)
	}

	if err := tickets.Reload(ctx, b.BotProfile()); err != nil {
		log.Error("unable to reload open tickets", "error", err)
	}

	var srv *server.Server
	if cfg.HTTP.Port != "" {
		srv = server.NewServer(purchases, cfg.Tebex.WebhookSecret, log)
		addr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

		log.Info("starting http server", "addr", addr)
		go func() {
			if err := srv.Start(addr); err != nil && err != http.ErrServerClosed {
				log.Error("http server error", "error", err)
				os.Exit(1)
			}
		}()
	}

	log.Info("bot is running", "environment", cfg.Environment.Name)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Info("signal received, starting graceful shutdown")

	_, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if srv != nil {
		if err := srv.Shutdown(); err != nil {
			log.Error("http server shutdown error", "error", err)
		}
	}

	if err := b.Close(); err != nil {
		log.Error("discord session close error", "error", err)
	}
}
