package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"tebex-support-bot/internal/client"
	"tebex-support-bot/internal/model"
	"tebex-support-bot/internal/repository"
)

const (
	validTbxID   = "tbx-1234567890abcd-abc123"
	anotherTbxID = "tbx-0987654321dcba-xyz789"
	customerRole = "role-customer"
	devRole      = "role-developer"
)

type purchaseFixture struct {
	db       *gorm.DB
	guild    *fakeGuild
	verifier *fakeVerifier
	settings SettingsService
	service  PurchaseService

	customers    repository.CustomerRepository
	transactions repository.TransactionRepository
}

func newPurchaseFixture(t *testing.T) *purchaseFixture {
	t.Helper()

	db := testDB(t)
	seedSetting(t, db, "customer_role", "role_id", customerRole)
	seedSetting(t, db, "customers_dev_role", "role_id", devRole)
	seedSetting(t, db, "max_developers", "number", "2")

	guild := newFakeGuild()
	guild.addGuildRole(customerRole)
	guild.addGuildRole(devRole)

	verifier := newFakeVerifier()

	settings := NewSettingsService(repository.NewSettingRepository(db), testLogger())
	settings.Initialize(context.Background())

	customers := repository.NewCustomerRepository(db)
	transactions := repository.NewTransactionRepository(db)

	return &purchaseFixture{
		db:           db,
		guild:        guild,
		verifier:     verifier,
		settings:     settings,
		service:      NewPurchaseService(customers, transactions, verifier, settings, guild, testLogger()),
		customers:    customers,
		transactions: transactions,
	}
}

func TestClaimRejectsMalformedID(t *testing.T) {
	f := newPurchaseFixture(t)

	for _, id := range []string{"", "hello", "tbx-short-abc123", "TBX-1234567890ABCD-ABC123", "tbx-1234567890abcd-abc1234x"} {
		err := f.service.Claim(context.Background(), "user-1", id)
		assert.ErrorIs(t, err, ErrInvalidTransactionID, "id %q", id)
	}

	assert.Zero(t, f.verifier.calls, "malformed ids must not reach the storefront")
}

func TestClaimVerifiesAndGrantsRole(t *testing.T) {
	f := newPurchaseFixture(t)
	f.verifier.addPayment(validTbxID, completePayment("Steve", "EssentialsPro", "WorldGuard Addon"))

	require.NoError(t, f.service.Claim(context.Background(), "user-1", validTbxID))

	transaction, err := f.transactions.FindByTbxID(context.Background(), validTbxID)
	require.NoError(t, err)
	require.NotNil(t, transaction.CustomerID)
	assert.Equal(t, "Steve", transaction.PurchaserName)

	packages, err := f.transactions.Packages(context.Background(), validTbxID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"EssentialsPro", "WorldGuard Addon"}, packages)

	assert.True(t, f.guild.HasRole(context.Background(), "user-1", customerRole))
}

func TestClaimUnknownTransaction(t *testing.T) {
	f := newPurchaseFixture(t)

	err := f.service.Claim(context.Background(), "user-1", validTbxID)
	assert.ErrorIs(t, err, client.ErrPaymentNotFound)
	assert.False(t, f.guild.HasRole(context.Background(), "user-1", customerRole))
}

func TestClaimRefundedTransaction(t *testing.T) {
	f := newPurchaseFixture(t)
	payment := completePayment("Steve", "EssentialsPro")
	payment.Status = model.TebexStatusRefund
	f.verifier.addPayment(validTbxID, payment)

	err := f.service.Claim(context.Background(), "user-1", validTbxID)
	assert.ErrorIs(t, err, ErrTransactionNotClaimable)
	assert.False(t, f.guild.HasRole(context.Background(), "user-1", customerRole))

	// The transaction is still recorded, flagged as refunded.
	transaction, err := f.transactions.FindByTbxID(context.Background(), validTbxID)
	require.NoError(t, err)
	assert.True(t, transaction.Refund)
}

func TestClaimAlreadyClaimedByOther(t *testing.T) {
	f := newPurchaseFixture(t)
	f.verifier.addPayment(validTbxID, completePayment("Steve", "EssentialsPro"))

	require.NoError(t, f.service.Claim(context.Background(), "user-1", validTbxID))

	err := f.service.Claim(context.Background(), "user-2", validTbxID)
	assert.ErrorIs(t, err, ErrAlreadyClaimed)

	// Ownership is unchanged.
	owner, err := f.customers.FindByDiscordID(context.Background(), "user-1")
	require.NoError(t, err)
	transaction, err := f.transactions.FindByTbxID(context.Background(), validTbxID)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, *transaction.CustomerID)
}

func TestClaimIsIdempotentForOwner(t *testing.T) {
	f := newPurchaseFixture(t)
	f.verifier.addPayment(validTbxID, completePayment("Steve", "EssentialsPro"))

	require.NoError(t, f.service.Claim(context.Background(), "user-1", validTbxID))
	require.NoError(t, f.service.Claim(context.Background(), "user-1", validTbxID))

	var count int64
	require.NoError(t, f.db.Model(&model.Customer{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCustomerIDSkipCreate(t *testing.T) {
	f := newPurchaseFixture(t)
	ctx := context.Background()

	_, err := f.service.CustomerID(ctx, "user-1", true)
	assert.ErrorIs(t, err, ErrNoCustomer)

	created, err := f.service.CustomerID(ctx, "user-1", false)
	require.NoError(t, err)

	again, err := f.service.CustomerID(ctx, "user-1", true)
	require.NoError(t, err)
	assert.Equal(t, created, again)
}

func TestCheckCustomerPurchasesDeletesEmptyCustomer(t *testing.T) {
	f := newPurchaseFixture(t)
	ctx := context.Background()

	customerID, err := f.service.CustomerID(ctx, "user-1", false)
	require.NoError(t, err)

	active, err := f.service.CheckCustomerPurchases(ctx, customerID)
	require.NoError(t, err)
	assert.False(t, active)

	_, err = f.customers.FindByDiscordID(ctx, "user-1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestChargebackNotificationRevokesAccess(t *testing.T) {
	f := newPurchaseFixture(t)
	ctx := context.Background()
	f.verifier.addPayment(validTbxID, completePayment("Steve", "EssentialsPro"))

	require.NoError(t, f.service.Claim(ctx, "user-1", validTbxID))
	_, err := f.service.AddDeveloper(ctx, "user-1", "dev-1")
	require.NoError(t, err)
	require.True(t, f.guild.HasRole(ctx, "dev-1", devRole))

	f.service.HandleNotification(ctx, &model.PurchasePayload{
		Action:      model.ActionChargeback,
		Transaction: validTbxID,
		PackageName: "EssentialsPro",
	})

	transaction, err := f.transactions.FindByTbxID(ctx, validTbxID)
	require.NoError(t, err)
	assert.True(t, transaction.Chargeback)

	assert.False(t, f.guild.HasRole(ctx, "user-1", customerRole))
	assert.False(t, f.guild.HasRole(ctx, "dev-1", devRole))

	owner, err := f.customers.FindByDiscordID(ctx, "user-1")
	require.NoError(t, err)
	developers, err := f.customers.Developers(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, developers)
}

func TestPurchaseNotificationLogsTransaction(t *testing.T) {
	f := newPurchaseFixture(t)
	ctx := context.Background()

	f.service.HandleNotification(ctx, &model.PurchasePayload{
		Action:        model.ActionPurchase,
		Transaction:   validTbxID,
		PackageName:   "EssentialsPro",
		PurchaserName: "Steve",
		DiscordID:     "user-1",
	})

	transaction, err := f.transactions.FindByTbxID(ctx, validTbxID)
	require.NoError(t, err)
	require.NotNil(t, transaction.CustomerID)

	packages, err := f.transactions.Packages(ctx, validTbxID)
	require.NoError(t, err)
	assert.Equal(t, []string{"EssentialsPro"}, packages)

	// Claiming the pre-logged transaction skips the storefront entirely.
	require.NoError(t, f.service.Claim(ctx, "user-1", validTbxID))
	assert.Zero(t, f.verifier.calls)
}

func TestTransferMovesOwnership(t *testing.T) {
	f := newPurchaseFixture(t)
	ctx := context.Background()
	f.verifier.addPayment(validTbxID, completePayment("Steve", "EssentialsPro"))

	require.NoError(t, f.service.Claim(ctx, "user-1", validTbxID))
	require.NoError(t, f.service.Transfer(ctx, validTbxID, "user-1", "user-2"))

	newOwner, err := f.customers.FindByDiscordID(ctx, "user-2")
	require.NoError(t, err)
	transaction, err := f.transactions.FindByTbxID(ctx, validTbxID)
	require.NoError(t, err)
	assert.Equal(t, newOwner.ID, *transaction.CustomerID)
	assert.True(t, f.guild.HasRole(ctx, "user-2", customerRole))

	// The old owner had nothing else, so their record is gone.
	_, err = f.customers.FindByDiscordID(ctx, "user-1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTransferRequiresOwnership(t *testing.T) {
	f := newPurchaseFixture(t)
	ctx := context.Background()
	f.verifier.addPayment(validTbxID, completePayment("Steve", "EssentialsPro"))
	f.verifier.addPayment(anotherTbxID, completePayment("Alex", "SkyBlock"))

	require.NoError(t, f.service.Claim(ctx, "user-1", validTbxID))
	require.NoError(t, f.service.Claim(ctx, "user-2", anotherTbxID))

	err := f.service.Transfer(ctx, validTbxID, "user-2", "user-3")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAddDeveloperLimit(t *testing.T) {
	f := newPurchaseFixture(t)
	ctx := context.Background()
	f.verifier.addPayment(validTbxID, completePayment("Steve", "EssentialsPro"))
	require.NoError(t, f.service.Claim(ctx, "user-1", validTbxID))

	grant, err := f.service.AddDeveloper(ctx, "user-1", "dev-1")
	require.NoError(t, err)
	assert.Equal(t, DeveloperAdded, grant)

	grant, err = f.service.AddDeveloper(ctx, "user-1", "dev-2")
	require.NoError(t, err)
	assert.Equal(t, DeveloperAdded, grant)

	_, err = f.service.AddDeveloper(ctx, "user-1", "dev-3")
	assert.ErrorIs(t, err, ErrDeveloperLimit)

	developers, _, err := f.service.Developers(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, developers, 2)
}

func TestAddDeveloperRestoresLostRole(t *testing.T) {
	f := newPurchaseFixture(t)
	ctx := context.Background()
	f.verifier.addPayment(validTbxID, completePayment("Steve", "EssentialsPro"))
	require.NoError(t, f.service.Claim(ctx, "user-1", validTbxID))

	_, err := f.service.AddDeveloper(ctx, "user-1", "dev-1")
	require.NoError(t, err)

	// Listed and still holding the role: nothing to do.
	grant, err := f.service.AddDeveloper(ctx, "user-1", "dev-1")
	require.NoError(t, err)
	assert.Equal(t, DeveloperAlreadyListed, grant)

	// Role lost out-of-band, listing intact: the role comes back.
	require.NoError(t, f.guild.RemoveRole(ctx, "dev-1", devRole, ""))
	grant, err = f.service.AddDeveloper(ctx, "user-1", "dev-1")
	require.NoError(t, err)
	assert.Equal(t, DeveloperRoleRestored, grant)
	assert.True(t, f.guild.HasRole(ctx, "dev-1", devRole))
}

func TestAddDeveloperRequiresActivePurchase(t *testing.T) {
	f := newPurchaseFixture(t)

	_, err := f.service.AddDeveloper(context.Background(), "user-1", "dev-1")
	assert.ErrorIs(t, err, ErrNoActivePurchases)
}

func TestRemoveDeveloper(t *testing.T) {
	f := newPurchaseFixture(t)
	ctx := context.Background()
	f.verifier.addPayment(validTbxID, completePayment("Steve", "EssentialsPro"))
	require.NoError(t, f.service.Claim(ctx, "user-1", validTbxID))

	_, err := f.service.AddDeveloper(ctx, "user-1", "dev-1")
	require.NoError(t, err)

	require.NoError(t, f.service.RemoveDeveloper(ctx, "user-1", "dev-1"))
	assert.False(t, f.guild.HasRole(ctx, "dev-1", devRole))

	err = f.service.RemoveDeveloper(ctx, "user-1", "dev-1")
	assert.ErrorIs(t, err, ErrDeveloperNotListed)
}

func TestClaimFailsWhenRoleMissing(t *testing.T) {
	db := testDB(t)
	seedSetting(t, db, "customer_role", "role_id", "role-that-vanished")
	seedSetting(t, db, "max_developers", "number", "2")

	settings := NewSettingsService(repository.NewSettingRepository(db), testLogger())
	settings.Initialize(context.Background())

	verifier := newFakeVerifier()
	verifier.addPayment(validTbxID, completePayment("Steve", "EssentialsPro"))

	svc := NewPurchaseService(
		repository.NewCustomerRepository(db),
		repository.NewTransactionRepository(db),
		verifier, settings, newFakeGuild(), testLogger(),
	)

	err := svc.Claim(context.Background(), "user-1", validTbxID)
	assert.ErrorIs(t, err, ErrRoleNotConfigured)
}

func TestSearchClaimed(t *testing.T) {
	f := newPurchaseFixture(t)
	ctx := context.Background()
	f.verifier.addPayment(validTbxID, completePayment("Steve", "EssentialsPro"))
	f.verifier.addPayment(anotherTbxID, completePayment("Steve", "SkyBlock"))

	require.NoError(t, f.service.Claim(ctx, "user-1", validTbxID))
	require.NoError(t, f.service.Claim(ctx, "user-1", anotherTbxID))

	all, err := f.service.SearchClaimed(ctx, "user-1", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	matched, err := f.service.SearchClaimed(ctx, "user-1", "SkyBlock")
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, anotherTbxID, matched[0].TbxID)
}
