package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"tebex-support-bot/internal/client"
	"tebex-support-bot/internal/model"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.Customer{},
		&model.Transaction{},
		&model.TransactionPackage{},
		&model.CustomerDeveloper{},
		&model.Ticket{},
		&model.TicketCategory{},
		&model.TicketCategoryField{},
		&model.TicketMember{},
		&model.TicketMessage{},
		&model.Setting{},
	))

	return db
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedSetting(t *testing.T, db *gorm.DB, name, dataType, value string) {
	t.Helper()
	require.NoError(t, db.Create(&model.Setting{Name: name, DataType: dataType, Value: value}).Error)
}

// fakeGuild is an in-memory GuildClient. Roles and channels are plain maps;
// deletions are reported on a channel because the ticket service deletes
// asynchronously.
type fakeGuild struct {
	mu          sync.Mutex
	roles       map[string]bool
	memberRoles map[string]map[string]bool
	channels    map[string]bool
	permissions map[string]bool
	nextChannel int
	deleted     chan string
}

func newFakeGuild() *fakeGuild {
	return &fakeGuild{
		roles:       make(map[string]bool),
		memberRoles: make(map[string]map[string]bool),
		channels:    make(map[string]bool),
		permissions: make(map[string]bool),
		deleted:     make(chan string, 8),
	}
}

func (g *fakeGuild) addGuildRole(roleID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.roles[roleID] = true
}

func (g *fakeGuild) addGuildChannel(channelID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.channels[channelID] = true
}

func (g *fakeGuild) RoleExists(ctx context.Context, roleID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.roles[roleID]
}

func (g *fakeGuild) HasRole(ctx context.Context, userID, roleID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.memberRoles[userID][roleID]
}

func (g *fakeGuild) AddRole(ctx context.Context, userID, roleID, reason string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.memberRoles[userID] == nil {
		g.memberRoles[userID] = make(map[string]bool)
	}
	g.memberRoles[userID][roleID] = true
	return nil
}

func (g *fakeGuild) RemoveRole(ctx context.Context, userID, roleID, reason string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.memberRoles[userID], roleID)
	return nil
}

func (g *fakeGuild) ChannelExists(ctx context.Context, channelID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.channels[channelID]
}

func (g *fakeGuild) CreateTicketChannel(ctx context.Context, name, parentID, openerID, reason string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextChannel++
	channelID := fmt.Sprintf("ticket-channel-%d", g.nextChannel)
	g.channels[channelID] = true
	return channelID, nil
}

func (g *fakeGuild) DeleteChannel(ctx context.Context, channelID, reason string) error {
	g.mu.Lock()
	delete(g.channels, channelID)
	g.mu.Unlock()
	g.deleted <- channelID
	return nil
}

func (g *fakeGuild) SetViewPermission(ctx context.Context, channelID, userID string, allow bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.permissions[channelID+":"+userID] = allow
	return nil
}

// fakeVerifier serves canned storefront payments keyed by transaction id.
type fakeVerifier struct {
	mu       sync.Mutex
	payments map[string]*model.TebexPayment
	calls    int
}

func newFakeVerifier() *fakeVerifier {
	return &fakeVerifier{payments: make(map[string]*model.TebexPayment)}
}

func (v *fakeVerifier) addPayment(tbxID string, payment *model.TebexPayment) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.payments[tbxID] = payment
}

func (v *fakeVerifier) VerifyPurchase(ctx context.Context, transactionID string) (*model.TebexPayment, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls++
	payment, ok := v.payments[transactionID]
	if !ok {
		return nil, client.ErrPaymentNotFound
	}
	return payment, nil
}

func completePayment(name string, packages ...string) *model.TebexPayment {
	payment := &model.TebexPayment{
		ID:     1337,
		Amount: "19.99",
		Status: model.TebexStatusComplete,
		Player: model.TebexPlayer{Name: name, UUID: "uuid-" + name},
	}
	for i, pkg := range packages {
		payment.Packages = append(payment.Packages, model.TebexPackage{
			ID:       int64(i + 1),
			Name:     pkg,
			Quantity: 1,
		})
	}
	return payment
}
