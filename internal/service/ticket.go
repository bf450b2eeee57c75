package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"tebex-support-bot/internal/client"
	"tebex-support-bot/internal/model"
	"tebex-support-bot/internal/repository"
)

var (
	// ErrNotATicket means the channel has no active ticket.
	ErrNotATicket = errors.New("channel is not an active ticket")
	// ErrCategoryUnavailable is a configuration error: the ticket category or
	// its target Discord category channel is gone.
	ErrCategoryUnavailable = errors.New("ticket category unavailable")
)

// UserProfile carries the identity fields archived with ticket activity.
type UserProfile struct {
	ID          string
	Username    string
	DisplayName string
	AvatarURL   string
}

// TicketRef is the in-memory registration of an open ticket channel.
type TicketRef struct {
	ID        uint
	ChannelID string
	OpenerID  string
	Name      string
}

// CategoryData is a ticket category with its modal field definitions.
type CategoryData struct {
	model.TicketCategory
	Fields []model.TicketCategoryField
}

// FieldAnswer is one submitted modal field, rendered into the opening embed.
type FieldAnswer struct {
	Label string
	Value string
}

type TicketService interface {
	Reload(ctx context.Context, botUser UserProfile) error
	Categories(ctx context.Context) ([]model.TicketCategory, error)
	CategoryData(ctx context.Context, categoryID uint) (*CategoryData, error)
	Create(ctx context.Context, categoryID uint, opener UserProfile, tbxID string, answers []FieldAnswer) (*TicketRef, error)
	Get(channelID string) *TicketRef
	Close(ctx context.Context, channelID string, closer UserProfile, reason string) (*TicketRef, error)
	AddParticipant(ctx context.Context, channelID, userID, addedBy string) error
	RemoveParticipant(ctx context.Context, channelID, userID string) error
	ArchiveMessage(ctx context.Context, channelID string, author UserProfile, content string, embedJSON []string) error
	OpenCount() int
}

type ticketServiceImpl struct {
	repo     repository.TicketRepository
	verifier client.PurchaseVerifier
	guild    GuildClient
	logger   *slog.Logger

	// Gateway events arrive on multiple goroutines; the registry needs the
	// lock even though the original runtime never did.
	mu     sync.RWMutex
	active map[string]*TicketRef
}

func NewTicketService(
	repo repository.TicketRepository,
	verifier client.PurchaseVerifier,
	guild GuildClient,
	logger *slog.Logger,
) TicketService {
	return &ticketServiceImpl{
		repo:     repo,
		verifier: verifier,
		guild:    guild,
		logger:   logger.With("component", "tickets"),
		active:   make(map[string]*TicketRef),
	}
}

// Reload rebuilds the registry from rows whose closed_at is still null.
// Rows whose channel was deleted out-of-band are force-closed with a
// synthetic closure message instead of being kept inconsistently open.
func (s *ticketServiceImpl) Reload(ctx context.Context, botUser UserProfile) error {
	tickets, err := s.repo.FindOpen(ctx)
	if err != nil {
		return fmt.Errorf("load open tickets: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ticket := range tickets {
		if !s.guild.ChannelExists(ctx, ticket.ChannelID) {
			s.logger.Warn("ticket channel is gone, closing in database", "ticket_id", ticket.ID, "channel_id", ticket.ChannelID)

			if err := s.repo.Close(ctx, ticket.ID, time.Now().UTC()); err != nil {
				s.logger.Error("unable to force-close orphaned ticket", "ticket_id", ticket.ID, "error", err)
				continue
			}
			if err := s.repo.CreateMessage(ctx, &model.TicketMessage{
				TicketID:    ticket.ID,
				AuthorID:    botUser.ID,
				DisplayName: botUser.DisplayName,
				Avatar:      botUser.AvatarURL,
				Content:     embedSentinel("Ticket closed", ""),
			}); err != nil {
				s.logger.Error("unable to archive synthetic closure", "ticket_id", ticket.ID, "error", err)
			}
			continue
		}

		s.active[ticket.ChannelID] = &TicketRef{
			ID:        ticket.ID,
			ChannelID: ticket.ChannelID,
			OpenerID:  ticket.UserID,
			Name:      ticket.TicketName,
		}
	}

	s.logger.Info("reloaded tickets from database", "open", len(s.active))
	return nil
}

func (s *ticketServiceImpl) Categories(ctx context.Context) ([]model.TicketCategory, error) {
	return s.repo.Categories(ctx)
}

func (s *ticketServiceImpl) CategoryData(ctx context.Context, categoryID uint) (*CategoryData, error) {
	category, err := s.repo.FindCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	fields, err := s.repo.CategoryFields(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	return &CategoryData{TicketCategory: *category, Fields: fields}, nil
}

// Create opens a new ticket channel for the submitted modal. Categories
// that require a transaction id verify it against the storefront first; a
// bad id aborts before anything is persisted.
func (s *ticketServiceImpl) Create(ctx context.Context, categoryID uint, opener UserProfile, tbxID string, answers []FieldAnswer) (*TicketRef, error) {
	category, err := s.repo.FindCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	if category.RequireTbxID {
		if !tbxIDPattern.MatchString(tbxID) {
			return nil, ErrInvalidTransactionID
		}
		if _, err := s.verifier.VerifyPurchase(ctx, tbxID); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidTransactionID, tbxID)
		}
	}

	if !s.guild.ChannelExists(ctx, category.CategoryID) {
		s.logger.Error("category channel not found", "category", category.Name, "channel_id", category.CategoryID)
		return nil, ErrCategoryUnavailable
	}

	channelID, err := s.guild.CreateTicketChannel(
		ctx,
		opener.Username,
		category.CategoryID,
		opener.ID,
		fmt.Sprintf("Ticket opened by %s under category: %s", opener.Username, category.Name),
	)
	if err != nil {
		return nil, fmt.Errorf("create ticket channel: %w", err)
	}

	ticket := &model.Ticket{
		Category:        category.ID,
		TicketName:      opener.Username,
		ChannelID:       channelID,
		UserID:          opener.ID,
		UserUsername:    opener.Username,
		UserDisplayName: opener.DisplayName,
		OpenedAt:        time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, ticket); err != nil {
		return nil, fmt.Errorf("insert ticket row: %w", err)
	}

	ref := &TicketRef{
		ID:        ticket.ID,
		ChannelID: channelID,
		OpenerID:  opener.ID,
		Name:      ticket.TicketName,
	}

	s.mu.Lock()
	s.active[channelID] = ref
	s.mu.Unlock()

	s.logger.Info("ticket opened", "ticket_id", ticket.ID, "category", category.Name, "opener", opener.Username)
	return ref, nil
}

func (s *ticketServiceImpl) Get(channelID string) *TicketRef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active[channelID]
}

// Close stamps closed_at, archives the closure embed and schedules channel
// deletion. The registry entry is removed only once the row update succeeds;
// deletion failures are logged, never surfaced.
func (s *ticketServiceImpl) Close(ctx context.Context, channelID string, closer UserProfile, reason string) (*TicketRef, error) {
	ticket := s.Get(channelID)
	if ticket == nil {
		return nil, ErrNotATicket
	}

	if err := s.repo.Close(ctx, ticket.ID, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("close ticket %d: %w", ticket.ID, err)
	}

	description := "No reason provided."
	if reason != "" {
		description = fmt.Sprintf("Closure reason:\n> %s", reason)
	}
	if err := s.repo.CreateMessage(ctx, &model.TicketMessage{
		TicketID:    ticket.ID,
		AuthorID:    closer.ID,
		DisplayName: closer.DisplayName,
		Avatar:      closer.AvatarURL,
		Content:     embedSentinel("Ticket closed", description),
	}); err != nil {
		s.logger.Error("unable to archive closure message", "ticket_id", ticket.ID, "error", err)
	}

	s.mu.Lock()
	delete(s.active, channelID)
	s.mu.Unlock()

	s.logger.Info("ticket closed", "ticket_id", ticket.ID, "closed_by", closer.Username, "reason", reason)

	deleteReason := fmt.Sprintf("Ticket closed by %s", closer.Username)
	if reason != "" {
		deleteReason += ": " + reason
	}
	go func() {
		if err := s.guild.DeleteChannel(context.Background(), channelID, deleteReason); err != nil {
			s.logger.Error("unable to delete ticket channel", "channel_id", channelID, "error", err)
		}
	}()

	return ticket, nil
}

// AddParticipant writes the member row and mirrors the channel permission.
// The two writes are independently fallible; there is no rollback, the
// inconsistency is logged for manual correction.
func (s *ticketServiceImpl) AddParticipant(ctx context.Context, channelID, userID, addedBy string) error {
	ticket := s.Get(channelID)
	if ticket == nil {
		return ErrNotATicket
	}

	if err := s.repo.UpsertMember(ctx, &model.TicketMember{
		TicketID: ticket.ID,
		UserID:   userID,
		AddedBy:  addedBy,
		AddedAt:  time.Now().UTC(),
	}); err != nil {
		s.logger.Error("unable to record ticket member", "ticket_id", ticket.ID, "user_id", userID, "error", err)
		return fmt.Errorf("record ticket member: %w", err)
	}

	if err := s.guild.SetViewPermission(ctx, channelID, userID, true); err != nil {
		s.logger.Error("member row written but permission update failed", "ticket_id", ticket.ID, "user_id", userID, "error", err)
		return fmt.Errorf("grant channel access: %w", err)
	}

	return nil
}

func (s *ticketServiceImpl) RemoveParticipant(ctx context.Context, channelID, userID string) error {
	ticket := s.Get(channelID)
	if ticket == nil {
		return ErrNotATicket
	}

	if err := s.repo.MarkMemberRemoved(ctx, ticket.ID, userID); err != nil {
		s.logger.Error("unable to mark ticket member removed", "ticket_id", ticket.ID, "user_id", userID, "error", err)
		return fmt.Errorf("update ticket member: %w", err)
	}

	if err := s.guild.SetViewPermission(ctx, channelID, userID, false); err != nil {
		s.logger.Error("member marked removed but permission update failed", "ticket_id", ticket.ID, "user_id", userID, "error", err)
		return fmt.Errorf("revoke channel access: %w", err)
	}

	return nil
}

// ArchiveMessage appends a channel message to the archive, serializing any
// embeds into the content behind the <EMBED:...> sentinel.
func (s *ticketServiceImpl) ArchiveMessage(ctx context.Context, channelID string, author UserProfile, content string, embedJSON []string) error {
	ticket := s.Get(channelID)
	if ticket == nil {
		return nil
	}

	for _, raw := range embedJSON {
		content += fmt.Sprintf("\n\n<EMBED:%s>", raw)
	}

	if err := s.repo.CreateMessage(ctx, &model.TicketMessage{
		TicketID:    ticket.ID,
		AuthorID:    author.ID,
		DisplayName: author.DisplayName,
		Avatar:      author.AvatarURL,
		Content:     content,
	}); err != nil {
		return fmt.Errorf("archive message for ticket %d: %w", ticket.ID, err)
	}

	return nil
}

func (s *ticketServiceImpl) OpenCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.active)
}

func embedSentinel(title, description string) string {
	embed := map[string]string{"title": title}
	if description != "" {
		embed["description"] = description
	}
	raw, _ := json.Marshal(embed)
	return fmt.Sprintf("<EMBED:%s>", raw)
}
