package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"tebex-support-bot/internal/service"
)

// guildClient backs service.GuildClient with the discordgo session. All
// mutations target the configured main guild.
type guildClient struct {
	session *discordgo.Session
	guildID string
}

func NewGuildClient(session *discordgo.Session, guildID string) service.GuildClient {
	return &guildClient{session: session, guildID: guildID}
}

func (g *guildClient) RoleExists(ctx context.Context, roleID string) bool {
	if role, err := g.session.State.Role(g.guildID, roleID); err == nil && role != nil {
		return true
	}

	roles, err := g.session.GuildRoles(g.guildID, discordgo.WithContext(ctx))
	if err != nil {
		return false
	}
	for _, role := range roles {
		if role.ID == roleID {
			return true
		}
	}
	return false
}

func (g *guildClient) HasRole(ctx context.Context, userID, roleID string) bool {
	member, err := g.session.GuildMember(g.guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return false
	}
	for _, id := range member.Roles {
		if id == roleID {
			return true
		}
	}
	return false
}

func (g *guildClient) AddRole(ctx context.Context, userID, roleID, reason string) error {
	return g.session.GuildMemberRoleAdd(g.guildID, userID, roleID,
		discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
}

func (g *guildClient) RemoveRole(ctx context.Context, userID, roleID, reason string) error {
	return g.session.GuildMemberRoleRemove(g.guildID, userID, roleID,
		discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
}

func (g *guildClient) ChannelExists(ctx context.Context, channelID string) bool {
	if channel, err := g.session.State.Channel(channelID); err == nil && channel != nil {
		return true
	}

	_, err := g.session.Channel(channelID, discordgo.WithContext(ctx))
	return err == nil
}

func (g *guildClient) CreateTicketChannel(ctx context.Context, name, parentID, openerID, reason string) (string, error) {
	channel, err := g.session.GuildChannelCreateComplex(g.guildID, discordgo.GuildChannelCreateData{
		Name:     name,
		Type:     discordgo.ChannelTypeGuildText,
		ParentID: parentID,
		PermissionOverwrites: []*discordgo.PermissionOverwrite{{
			ID:    openerID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: discordgo.PermissionViewChannel,
		}},
	}, discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
	if err != nil {
		return "", fmt.Errorf("create channel under %s: %w", parentID, err)
	}

	return channel.ID, nil
}

func (g *guildClient) DeleteChannel(ctx context.Context, channelID, reason string) error {
	_, err := g.session.ChannelDelete(channelID,
		discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
	return err
}

func (g *guildClient) SetViewPermission(ctx context.Context, channelID, userID string, allow bool) error {
	if allow {
		return g.session.ChannelPermissionSet(channelID, userID,
			discordgo.PermissionOverwriteTypeMember, discordgo.PermissionViewChannel, 0,
			discordgo.WithContext(ctx))
	}
	return g.session.ChannelPermissionSet(channelID, userID,
		discordgo.PermissionOverwriteTypeMember, 0, discordgo.PermissionViewChannel,
		discordgo.WithContext(ctx))
}
