package bot

import (
	"context"
	"encoding/json"

	"github.com/bwmarrin/discordgo"

	"tebex-support-bot/internal/service"
)

// onMessageCreate feeds two consumers: the ticket archive, which records
// every message posted inside an active ticket channel, and the purchase
// pipeline, which watches the configured payment log channel for storefront
// notifications.
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil {
		return
	}

	ctx := context.Background()

	if ticket := b.tickets.Get(m.ChannelID); ticket != nil {
		b.archiveTicketMessage(ctx, m)
		return
	}

	if m.ChannelID == b.settings.Text("payment_log_channel") &&
		m.Author.ID == b.settings.Text("notifying_discord_id") {
		b.handlePaymentLogMessage(ctx, m)
	}
}

func (b *Bot) archiveTicketMessage(ctx context.Context, m *discordgo.MessageCreate) {
	embeds := make([]string, 0, len(m.Embeds))
	for _, embed := range m.Embeds {
		raw, err := json.Marshal(embed)
		if err != nil {
			b.logger.Warn("unable to serialize embed", "message_id", m.ID, "error", err)
			continue
		}
		embeds = append(embeds, string(raw))
	}

	author := service.UserProfile{
		ID:          m.Author.ID,
		Username:    m.Author.Username,
		DisplayName: m.Author.GlobalName,
		AvatarURL:   m.Author.AvatarURL("128"),
	}
	if author.DisplayName == "" {
		author.DisplayName = m.Author.Username
	}

	if err := b.tickets.ArchiveMessage(ctx, m.ChannelID, author, m.Content, embeds); err != nil {
		b.logger.Error("unable to archive ticket message", "channel_id", m.ChannelID, "error", err)
	}
}

func (b *Bot) handlePaymentLogMessage(ctx context.Context, m *discordgo.MessageCreate) {
	payload := b.tebex.ParsePurchasePayload(m.Content)
	if payload == nil {
		b.logger.Warn("unparseable message in payment log channel", "message_id", m.ID)
		return
	}

	b.purchases.HandleNotification(ctx, payload)
}
