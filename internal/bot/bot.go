package bot

import (
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"tebex-support-bot/internal/client"
	"tebex-support-bot/internal/config"
	"tebex-support-bot/internal/service"
)

type Bot struct {
	session   *discordgo.Session
	cfg       *config.Discord
	logger    *slog.Logger
	settings  service.SettingsService
	purchases service.PurchaseService
	tickets   service.TicketService
	tebex     client.TebexClient
	ready     chan struct{}
}

// New wires the handlers onto an existing session. The session is created
// separately so the guild client can be built from it before the services
// that depend on it exist.
func New(
	session *discordgo.Session,
	cfg *config.Discord,
	logger *slog.Logger,
	settings service.SettingsService,
	purchases service.PurchaseService,
	tickets service.TicketService,
	tebex client.TebexClient,
) *Bot {
	b := &Bot{
		session:   session,
		cfg:       cfg,
		logger:    logger.With("component", "bot"),
		settings:  settings,
		purchases: purchases,
		tickets:   tickets,
		tebex:     tebex,
		ready:     make(chan struct{}, 1),
	}

	session.AddHandler(b.onReady)
	session.AddHandler(b.onMessageCreate)
	session.AddHandler(b.onInteractionCreate)

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent

	return b
}

// Start opens the gateway connection, waits for the ready event and
// registers the guild's slash commands.
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open gateway connection: %w", err)
	}

	<-b.ready

	if err := b.registerCommands(); err != nil {
		return fmt.Errorf("register commands: %w", err)
	}

	return nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

// BotProfile is the application user's identity, used for synthetic archive rows.
func (b *Bot) BotProfile() service.UserProfile {
	user := b.session.State.User
	return service.UserProfile{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.Username,
		AvatarURL:   user.AvatarURL("128"),
	}
}

func (b *Bot) onReady(s *discordgo.Session, event *discordgo.Ready) {
	b.logger.Info("connected to discord", "user", s.State.User.Username)

	select {
	case b.ready <- struct{}{}:
	default:
	}
}

func (b *Bot) registerCommands() error {
	_, err := b.session.ApplicationCommandBulkOverwrite(
		b.session.State.User.ID,
		b.cfg.MainGuildID,
		commandDefinitions(),
	)
	if err != nil {
		return err
	}

	b.logger.Info("slash commands registered", "guild_id", b.cfg.MainGuildID)
	return nil
}
