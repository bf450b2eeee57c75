package bot

import "github.com/bwmarrin/discordgo"

var (
	staffPermission = int64(discordgo.PermissionKickMembers)
	adminPermission = int64(discordgo.PermissionAdministrator)
)

func commandDefinitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "claimrole",
			Description: "Claim your customer role to access support channels.",
			Options: []*discordgo.ApplicationCommandOption{{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "transactionid",
				Description: "Transaction ID provided by the purchase",
				Required:    true,
				MinLength:   intPtr(20),
				MaxLength:   45,
			}},
		},
		{
			Name:        "transferpurchase",
			Description: "Transfer one of your purchases to a new account.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "member",
					Description: "Account that receives the purchase",
					Required:    true,
				},
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         "purchase",
					Description:  "Purchase to transfer",
					Required:     true,
					Autocomplete: true,
				},
			},
		},
		{
			Name:        "adddeveloper",
			Description: "Add a developer to also gain access to support channels.",
			Options: []*discordgo.ApplicationCommandOption{{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "member",
				Description: "Member to add the developer role",
				Required:    true,
			}},
		},
		{
			Name:        "removedeveloper",
			Description: "Remove a developer that is linked to your purchase.",
			Options: []*discordgo.ApplicationCommandOption{{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "member",
				Description: "Member to remove the developer role from",
				Required:    true,
			}},
		},
		{
			Name:        "viewdevelopers",
			Description: "View the developers linked to your purchase.",
		},
		{
			Name:                     "view-purchase",
			Description:              "View the purchases claimed by a user",
			DefaultMemberPermissions: &staffPermission,
			Options: []*discordgo.ApplicationCommandOption{{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "user",
				Description: "User you want to see their purchases",
				Required:    true,
			}},
		},
		{
			Name:                     "verify",
			Description:              "Verify a transaction ID",
			DefaultMemberPermissions: &staffPermission,
			Options: []*discordgo.ApplicationCommandOption{{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "transactionid",
				Description: "Transaction id of the purchase",
				Required:    true,
			}},
		},
		{
			Name:                     "settings",
			Description:              "Manage bot settings.",
			DefaultMemberPermissions: &adminPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "get",
					Description: "Get the current value of a specific setting.",
					Options: []*discordgo.ApplicationCommandOption{{
						Type:         discordgo.ApplicationCommandOptionString,
						Name:         "key",
						Description:  "The name of the setting to retrieve.",
						Required:     true,
						Autocomplete: true,
					}},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "set",
					Description: "Set a new value for a specific setting.",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "key",
							Description: "The name of the setting to set.",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "value",
							Description: "The new value for the setting.",
							Required:    true,
						},
					},
				},
			},
		},
		{
			Name:        "ticket",
			Description: "Support ticket actions.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "open",
					Description: "Open a new support ticket.",
					Options: []*discordgo.ApplicationCommandOption{{
						Type:         discordgo.ApplicationCommandOptionInteger,
						Name:         "category",
						Description:  "Ticket category",
						Required:     true,
						Autocomplete: true,
					}},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "close",
					Description: "Close this ticket.",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "add",
					Description: "Add a user to the ticket.",
					Options: []*discordgo.ApplicationCommandOption{{
						Type:        discordgo.ApplicationCommandOptionUser,
						Name:        "user",
						Description: "User to add to the ticket",
						Required:    true,
					}},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove",
					Description: "Remove a user from the ticket.",
					Options: []*discordgo.ApplicationCommandOption{{
						Type:        discordgo.ApplicationCommandOptionUser,
						Name:        "user",
						Description: "User to remove from the ticket",
						Required:    true,
					}},
				},
			},
		},
	}
}

func intPtr(v int) *int {
	return &v
}
