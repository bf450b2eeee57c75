package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"tebex-support-bot/internal/client"
	"tebex-support-bot/internal/repository"
	"tebex-support-bot/internal/service"
)

const embedColor = 0x5865F2

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.dispatchCommand(ctx, i)
	case discordgo.InteractionApplicationCommandAutocomplete:
		b.dispatchAutocomplete(ctx, i)
	case discordgo.InteractionMessageComponent:
		b.dispatchComponent(ctx, i)
	case discordgo.InteractionModalSubmit:
		b.dispatchModal(ctx, i)
	}
}

func (b *Bot) dispatchCommand(ctx context.Context, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()

	switch data.Name {
	case "claimrole":
		b.handleClaimRole(ctx, i, data)
	case "transferpurchase":
		b.handleTransferPurchase(ctx, i, data)
	case "adddeveloper":
		b.handleAddDeveloper(ctx, i, data)
	case "removedeveloper":
		b.handleRemoveDeveloper(ctx, i, data)
	case "viewdevelopers":
		b.handleViewDevelopers(ctx, i)
	case "view-purchase":
		b.handleViewPurchase(ctx, i, data)
	case "verify":
		b.handleVerify(ctx, i, data)
	case "settings":
		b.handleSettings(ctx, i, data)
	case "ticket":
		b.handleTicket(ctx, i, data)
	default:
		b.logger.Warn("unhandled command", "name", data.Name)
	}
}

func (b *Bot) dispatchAutocomplete(ctx context.Context, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()

	switch data.Name {
	case "transferpurchase":
		b.autocompletePurchases(ctx, i, data)
	case "settings":
		b.autocompleteSettingKeys(i, data)
	case "ticket":
		b.autocompleteTicketCategories(ctx, i, data)
	}
}

func (b *Bot) dispatchComponent(ctx context.Context, i *discordgo.InteractionCreate) {
	if i.MessageComponentData().CustomID == "close-ticket" {
		b.promptTicketClose(i)
	}
}

func (b *Bot) dispatchModal(ctx context.Context, i *discordgo.InteractionCreate) {
	data := i.ModalSubmitData()

	switch {
	case strings.HasPrefix(data.CustomID, "ticket-open:"):
		b.handleTicketOpenModal(ctx, i, data)
	case strings.HasPrefix(data.CustomID, "ticket-close:"):
		b.handleTicketCloseModal(ctx, i, data)
	}
}

// --- purchase commands ---

func (b *Bot) handleClaimRole(ctx context.Context, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	tbxID := strings.TrimSpace(data.Options[0].StringValue())

	if err := b.purchases.Claim(ctx, interactionUser(i).ID, tbxID); err != nil {
		b.replyError(i, err)
		return
	}

	b.replyEphemeral(i, "Your purchase has been verified and the customer role was added. Welcome!")
}

func (b *Bot) handleTransferPurchase(ctx context.Context, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	opts := optionMap(data.Options)
	target := opts["member"].UserValue(b.session)
	tbxID := strings.TrimSpace(opts["purchase"].StringValue())

	if target.Bot {
		b.replyEphemeral(i, "Bots cannot own purchases.")
		return
	}

	if err := b.purchases.Transfer(ctx, tbxID, interactionUser(i).ID, target.ID); err != nil {
		b.replyError(i, err)
		return
	}

	b.replyEphemeral(i, fmt.Sprintf("Purchase `%s` was transferred to %s.", tbxID, target.Mention()))
}

func (b *Bot) handleAddDeveloper(ctx context.Context, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	target := data.Options[0].UserValue(b.session)
	caller := interactionUser(i)

	if target.Bot || target.ID == caller.ID {
		b.replyEphemeral(i, "You cannot add that account as a developer.")
		return
	}

	grant, err := b.purchases.AddDeveloper(ctx, caller.ID, target.ID)
	if err != nil {
		b.replyError(i, err)
		return
	}

	switch grant {
	case service.DeveloperAlreadyListed:
		b.replyEphemeral(i, fmt.Sprintf("%s is already listed as one of your developers.", target.Mention()))
	case service.DeveloperRoleRestored:
		b.replyEphemeral(i, fmt.Sprintf("%s was already one of your developers; their role has been restored.", target.Mention()))
	default:
		b.replyEphemeral(i, fmt.Sprintf("%s was added as a developer and can now access support channels.", target.Mention()))
	}
}

func (b *Bot) handleRemoveDeveloper(ctx context.Context, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	target := data.Options[0].UserValue(b.session)

	if err := b.purchases.RemoveDeveloper(ctx, interactionUser(i).ID, target.ID); err != nil {
		b.replyError(i, err)
		return
	}

	b.replyEphemeral(i, fmt.Sprintf("%s is no longer listed as one of your developers.", target.Mention()))
}

func (b *Bot) handleViewDevelopers(ctx context.Context, i *discordgo.InteractionCreate) {
	developers, limit, err := b.purchases.Developers(ctx, interactionUser(i).ID)
	if err != nil {
		b.replyError(i, err)
		return
	}

	description := "You have no developers linked to your purchase."
	if len(developers) > 0 {
		mentions := make([]string, len(developers))
		for idx, id := range developers {
			mentions[idx] = fmt.Sprintf("<@%s>", id)
		}
		description = strings.Join(mentions, "\n")
	}

	b.replyEmbed(i, &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Your developers (%d/%d)", len(developers), limit),
		Description: description,
		Color:       embedColor,
	})
}

func (b *Bot) handleViewPurchase(ctx context.Context, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	target := data.Options[0].UserValue(b.session)

	customerID, err := b.purchases.CustomerID(ctx, target.ID, true)
	if err != nil {
		if errors.Is(err, service.ErrNoCustomer) {
			b.replyEphemeral(i, fmt.Sprintf("%s has not claimed any purchases.", target.Mention()))
			return
		}
		b.replyError(i, err)
		return
	}

	purchases, err := b.purchases.Purchases(ctx, customerID)
	if err != nil {
		b.replyError(i, err)
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Purchases claimed by %s", target.Username),
		Color: embedColor,
	}
	for _, purchase := range purchases {
		status := "active"
		if purchase.Refund {
			status = "refunded"
		}
		if purchase.Chargeback {
			status = "charged back"
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: purchase.TbxID,
			Value: fmt.Sprintf("Packages: %s\nStatus: %s\nClaimed: <t:%d:R>",
				strings.Join(purchase.Packages, ", "), status, purchase.ClaimedAt),
		})
	}
	if len(purchases) == 0 {
		embed.Description = "No purchases on record."
	}

	b.replyEmbed(i, embed)
}

func (b *Bot) handleVerify(ctx context.Context, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	tbxID := strings.TrimSpace(data.Options[0].StringValue())

	verified, err := b.purchases.VerifyTransaction(ctx, tbxID)
	if err != nil {
		b.replyError(i, err)
		return
	}

	payment := verified.Payment
	packages := make([]string, len(payment.Packages))
	for idx, pkg := range payment.Packages {
		packages[idx] = pkg.Name
	}

	claimed := "Not claimed"
	if verified.ClaimedBy != "" {
		claimed = fmt.Sprintf("<@%s>", verified.ClaimedBy)
	}

	b.replyEmbed(i, &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Transaction %s", tbxID),
		Color: embedColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Status", Value: payment.Status, Inline: true},
			{Name: "Amount", Value: fmt.Sprintf("%s %s", payment.Amount, payment.Currency.ISO4217), Inline: true},
			{Name: "Date", Value: payment.Date, Inline: true},
			{Name: "Player", Value: payment.Player.Name, Inline: true},
			{Name: "Email", Value: payment.Email, Inline: true},
			{Name: "Claimed by", Value: claimed, Inline: true},
			{Name: "Packages", Value: strings.Join(packages, ", ")},
		},
	})
}

// --- settings ---

func (b *Bot) handleSettings(ctx context.Context, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	sub := data.Options[0]
	opts := optionMap(sub.Options)

	switch sub.Name {
	case "get":
		key := opts["key"].StringValue()
		value := b.settings.Get(key)
		if value == nil {
			b.replyEphemeral(i, fmt.Sprintf("There is no setting named `%s`.", key))
			return
		}
		b.replyEphemeral(i, fmt.Sprintf("`%s` (%s) = %s", key, b.settings.DataType(key), renderSetting(value)))
	case "set":
		key := opts["key"].StringValue()
		raw := opts["value"].StringValue()
		if err := b.settings.Set(ctx, key, raw); err != nil {
			b.replyEphemeral(i, fmt.Sprintf("Unable to update `%s`: %v", key, err))
			return
		}
		b.replyEphemeral(i, fmt.Sprintf("Setting `%s` updated.", key))
	}
}

func renderSetting(value *service.SettingValue) string {
	switch value.Kind {
	case service.KindNumber:
		return strconv.Itoa(value.Num)
	case service.KindJSON:
		return fmt.Sprintf("```json\n%s\n```", value.JSON)
	case service.KindChannelRef:
		return fmt.Sprintf("<#%s>", value.Ref())
	case service.KindRoleRef:
		return fmt.Sprintf("<@&%s>", value.Ref())
	case service.KindUserRef:
		return fmt.Sprintf("<@%s>", value.Ref())
	default:
		return value.Text
	}
}

// --- tickets ---

func (b *Bot) handleTicket(ctx context.Context, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	sub := data.Options[0]

	switch sub.Name {
	case "open":
		b.promptTicketOpen(ctx, i, uint(sub.Options[0].IntValue()))
	case "close":
		b.promptTicketClose(i)
	case "add":
		b.handleTicketAdd(ctx, i, sub)
	case "remove":
		b.handleTicketRemove(ctx, i, sub)
	}
}

// promptTicketOpen shows the category's modal. Field custom ids carry the
// database id so the submit handler can map answers back to their labels.
func (b *Bot) promptTicketOpen(ctx context.Context, i *discordgo.InteractionCreate, categoryID uint) {
	category, err := b.tickets.CategoryData(ctx, categoryID)
	if err != nil {
		b.replyError(i, err)
		return
	}

	var rows []discordgo.MessageComponent
	if category.RequireTbxID {
		rows = append(rows, discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.TextInput{
				CustomID:    "tbxid",
				Label:       "Transaction ID",
				Style:       discordgo.TextInputShort,
				Placeholder: "tbx-0000000000000-000000",
				Required:    true,
				MinLength:   20,
				MaxLength:   45,
			},
		}})
	}
	for _, field := range category.Fields {
		style := discordgo.TextInputParagraph
		if field.ShortField {
			style = discordgo.TextInputShort
		}
		input := discordgo.TextInput{
			CustomID:    fmt.Sprintf("field:%d", field.ID),
			Label:       field.Label,
			Style:       style,
			Placeholder: field.Placeholder,
			Required:    field.Required,
			MaxLength:   1024,
		}
		if field.MinLength != nil {
			input.MinLength = *field.MinLength
		}
		if field.MaxLength != nil {
			input.MaxLength = *field.MaxLength
		}
		rows = append(rows, discordgo.ActionsRow{Components: []discordgo.MessageComponent{input}})
	}

	err = b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID:   fmt.Sprintf("ticket-open:%d", categoryID),
			Title:      category.Name,
			Components: rows,
		},
	})
	if err != nil {
		b.logger.Error("unable to open ticket modal", "error", err)
	}
}

func (b *Bot) promptTicketClose(i *discordgo.InteractionCreate) {
	if b.tickets.Get(i.ChannelID) == nil {
		b.replyEphemeral(i, "This channel is not an active ticket.")
		return
	}

	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: fmt.Sprintf("ticket-close:%s", i.ChannelID),
			Title:    "Close ticket",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    "reason",
						Label:       "Reason",
						Style:       discordgo.TextInputParagraph,
						Placeholder: "Why is this ticket being closed?",
						Required:    false,
						MaxLength:   1024,
					},
				}},
			},
		},
	})
	if err != nil {
		b.logger.Error("unable to open close modal", "error", err)
	}
}

func (b *Bot) handleTicketAdd(ctx context.Context, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	target := sub.Options[0].UserValue(b.session)

	if err := b.tickets.AddParticipant(ctx, i.ChannelID, target.ID, interactionUser(i).ID); err != nil {
		b.replyError(i, err)
		return
	}

	b.reply(i, fmt.Sprintf("%s was added to the ticket.", target.Mention()))
}

func (b *Bot) handleTicketRemove(ctx context.Context, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	target := sub.Options[0].UserValue(b.session)

	if err := b.tickets.RemoveParticipant(ctx, i.ChannelID, target.ID); err != nil {
		b.replyError(i, err)
		return
	}

	b.reply(i, fmt.Sprintf("%s was removed from the ticket.", target.Mention()))
}

func (b *Bot) handleTicketOpenModal(ctx context.Context, i *discordgo.InteractionCreate, data discordgo.ModalSubmitInteractionData) {
	rawID := strings.TrimPrefix(data.CustomID, "ticket-open:")
	categoryID, err := strconv.ParseUint(rawID, 10, 32)
	if err != nil {
		b.replyEphemeral(i, "This ticket form is no longer valid.")
		return
	}

	category, err := b.tickets.CategoryData(ctx, uint(categoryID))
	if err != nil {
		b.replyError(i, err)
		return
	}

	labels := make(map[string]string, len(category.Fields))
	for _, field := range category.Fields {
		labels[fmt.Sprintf("field:%d", field.ID)] = field.Label
	}

	var tbxID string
	var answers []service.FieldAnswer
	for _, row := range data.Components {
		actionsRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, component := range actionsRow.Components {
			input, ok := component.(*discordgo.TextInput)
			if !ok {
				continue
			}
			if input.CustomID == "tbxid" {
				tbxID = strings.TrimSpace(input.Value)
				continue
			}
			answers = append(answers, service.FieldAnswer{
				Label: labels[input.CustomID],
				Value: input.Value,
			})
		}
	}

	opener := profileOf(interactionUser(i))
	ticket, err := b.tickets.Create(ctx, uint(categoryID), opener, tbxID, answers)
	if err != nil {
		b.replyError(i, err)
		return
	}

	b.replyEphemeral(i, fmt.Sprintf("Your ticket has been opened: <#%s>", ticket.ChannelID))
	b.postOpeningMessage(ticket, category.Name, answers)
}

// postOpeningMessage is the first message in a fresh ticket channel: a
// mention for the opener, the submitted answers and the close button.
func (b *Bot) postOpeningMessage(ticket *service.TicketRef, categoryName string, answers []service.FieldAnswer) {
	embed := &discordgo.MessageEmbed{
		Title:       categoryName,
		Description: "Support will be with you shortly. Use the button below to close the ticket.",
		Color:       embedColor,
	}
	for _, answer := range answers {
		value := answer.Value
		if value == "" {
			value = "*not provided*"
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  answer.Label,
			Value: value,
		})
	}

	_, err := b.session.ChannelMessageSendComplex(ticket.ChannelID, &discordgo.MessageSend{
		Content: fmt.Sprintf("<@%s>", ticket.OpenerID),
		Embeds:  []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{
					CustomID: "close-ticket",
					Label:    "Close",
					Style:    discordgo.DangerButton,
					Emoji:    &discordgo.ComponentEmoji{Name: "🔒"},
				},
			}},
		},
	})
	if err != nil {
		b.logger.Error("unable to post opening message", "channel_id", ticket.ChannelID, "error", err)
	}
}

func (b *Bot) handleTicketCloseModal(ctx context.Context, i *discordgo.InteractionCreate, data discordgo.ModalSubmitInteractionData) {
	channelID := strings.TrimPrefix(data.CustomID, "ticket-close:")

	reason := "No reason given"
	if row, ok := data.Components[0].(*discordgo.ActionsRow); ok {
		if input, ok := row.Components[0].(*discordgo.TextInput); ok && input.Value != "" {
			reason = input.Value
		}
	}

	closer := profileOf(interactionUser(i))
	ticket, err := b.tickets.Close(ctx, channelID, closer, reason)
	if err != nil {
		b.replyError(i, err)
		return
	}

	b.replyEphemeral(i, "Ticket closed. The channel will be removed shortly.")

	if ticket.OpenerID != closer.ID {
		b.notifyTicketClosed(ticket, closer, reason)
	}
}

// notifyTicketClosed DMs the opener when somebody else closed their ticket.
// Closed DMs are common and not worth more than a debug line.
func (b *Bot) notifyTicketClosed(ticket *service.TicketRef, closer service.UserProfile, reason string) {
	dm, err := b.session.UserChannelCreate(ticket.OpenerID)
	if err != nil {
		b.logger.Debug("unable to open dm channel", "user_id", ticket.OpenerID, "error", err)
		return
	}

	_, err = b.session.ChannelMessageSendEmbed(dm.ID, &discordgo.MessageEmbed{
		Title:       "Your ticket was closed",
		Description: fmt.Sprintf("**%s** closed your ticket `%s`.\n\n**Reason:** %s", closer.Username, ticket.Name, reason),
		Color:       embedColor,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		b.logger.Debug("unable to dm ticket opener", "user_id", ticket.OpenerID, "error", err)
	}
}

// --- autocomplete ---

func (b *Bot) autocompletePurchases(ctx context.Context, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	var query string
	for _, opt := range data.Options {
		if opt.Name == "purchase" && opt.Focused {
			query = opt.StringValue()
		}
	}

	claimed, err := b.purchases.SearchClaimed(ctx, interactionUser(i).ID, query)
	if err != nil {
		b.logger.Error("unable to search claimed purchases", "error", err)
		claimed = nil
	}

	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(claimed))
	for _, purchase := range claimed {
		if len(choices) == 25 {
			break
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  choiceLabel(purchase),
			Value: purchase.TbxID,
		})
	}

	b.respondChoices(i, choices)
}

func choiceLabel(purchase repository.ClaimedPurchase) string {
	label := fmt.Sprintf("%s: %s", purchase.TbxID, strings.Join(purchase.Packages, " - "))
	if len(label) > 100 {
		label = label[:97] + "..."
	}
	return label
}

func (b *Bot) autocompleteSettingKeys(i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	var query string
	for _, opt := range data.Options[0].Options {
		if opt.Name == "key" && opt.Focused {
			query = strings.ToLower(opt.StringValue())
		}
	}

	var choices []*discordgo.ApplicationCommandOptionChoice
	for _, key := range b.settings.Keys() {
		if query != "" && !strings.Contains(key, query) {
			continue
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: key, Value: key})
	}

	b.respondChoices(i, choices)
}

func (b *Bot) autocompleteTicketCategories(ctx context.Context, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	categories, err := b.tickets.Categories(ctx)
	if err != nil {
		b.logger.Error("unable to load ticket categories", "error", err)
		categories = nil
	}

	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(categories))
	for _, category := range categories {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  category.Name,
			Value: int(category.ID),
		})
	}

	b.respondChoices(i, choices)
}

func (b *Bot) respondChoices(i *discordgo.InteractionCreate, choices []*discordgo.ApplicationCommandOptionChoice) {
	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	})
	if err != nil {
		b.logger.Debug("unable to send autocomplete choices", "error", err)
	}
}

// --- reply helpers ---

func (b *Bot) reply(i *discordgo.InteractionCreate, content string) {
	b.respond(i, &discordgo.InteractionResponseData{Content: content})
}

func (b *Bot) replyEphemeral(i *discordgo.InteractionCreate, content string) {
	b.respond(i, &discordgo.InteractionResponseData{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
}

func (b *Bot) replyEmbed(i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	b.respond(i, &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
		Flags:  discordgo.MessageFlagsEphemeral,
	})
}

func (b *Bot) respond(i *discordgo.InteractionCreate, data *discordgo.InteractionResponseData) {
	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		b.logger.Error("unable to respond to interaction", "error", err)
	}
}

// replyError turns service errors into user-facing messages. Anything
// without a mapping is logged and reported generically.
func (b *Bot) replyError(i *discordgo.InteractionCreate, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidTransactionID):
		b.replyEphemeral(i, "That does not look like a valid transaction id. It should look like `tbx-0000000000000-000000`.")
	case errors.Is(err, client.ErrPaymentNotFound):
		b.replyEphemeral(i, "No purchase was found for that transaction id.")
	case errors.Is(err, service.ErrTransactionNotClaimable):
		b.replyEphemeral(i, "That transaction was refunded or charged back and cannot be claimed.")
	case errors.Is(err, service.ErrAlreadyClaimed):
		b.replyEphemeral(i, "That transaction has already been claimed by another member.")
	case errors.Is(err, service.ErrNoCustomer), errors.Is(err, service.ErrNoActivePurchases):
		b.replyEphemeral(i, "You have no active purchases on record.")
	case errors.Is(err, service.ErrDeveloperLimit):
		b.replyEphemeral(i, "You have reached the maximum number of developers for your purchase.")
	case errors.Is(err, service.ErrDeveloperNotListed):
		b.replyEphemeral(i, "That member is not listed as one of your developers.")
	case errors.Is(err, service.ErrNotATicket):
		b.replyEphemeral(i, "This channel is not an active ticket.")
	case errors.Is(err, service.ErrCategoryUnavailable):
		b.replyEphemeral(i, "That ticket category is not available right now. Please let staff know.")
	case errors.Is(err, service.ErrRoleNotConfigured):
		b.replyEphemeral(i, "The bot is missing a role configuration. Please let staff know.")
	case errors.Is(err, repository.ErrNotFound):
		b.replyEphemeral(i, "Nothing was found matching your request.")
	default:
		b.logger.Error("interaction failed", "error", err)
		b.replyEphemeral(i, "Something went wrong while handling your request. Please try again later.")
	}
}

func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

// interactionUser works for both guild and dm interactions.
func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil {
		return i.Member.User
	}
	return i.User
}

func profileOf(user *discordgo.User) service.UserProfile {
	displayName := user.GlobalName
	if displayName == "" {
		displayName = user.Username
	}
	return service.UserProfile{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: displayName,
		AvatarURL:   user.AvatarURL("128"),
	}
}
