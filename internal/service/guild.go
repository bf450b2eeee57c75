package service

import "context"

// GuildClient is the capability surface the services use to mutate the guild.
// The discordgo-backed implementation lives in the bot package; tests use
// fakes. Services never inspect guild state beyond these calls.
type GuildClient interface {
	RoleExists(ctx context.Context, roleID string) bool
	HasRole(ctx context.Context, userID, roleID string) bool
	AddRole(ctx context.Context, userID, roleID, reason string) error
	RemoveRole(ctx context.Context, userID, roleID, reason string) error

	ChannelExists(ctx context.Context, channelID string) bool
	CreateTicketChannel(ctx context.Context, name, parentID, openerID, reason string) (string, error)
	DeleteChannel(ctx context.Context, channelID, reason string) error
	SetViewPermission(ctx context.Context, channelID, userID string, allow bool) error
}
