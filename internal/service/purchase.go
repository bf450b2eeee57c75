package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"tebex-support-bot/internal/client"
	"tebex-support-bot/internal/model"
	"tebex-support-bot/internal/repository"
)

var (
	// ErrNoCustomer means the Discord user has no customer record.
	ErrNoCustomer = errors.New("no customer record")
	// ErrInvalidTransactionID means the id does not look like a Tebex
	// transaction id; nothing is sent to the storefront for these.
	ErrInvalidTransactionID = errors.New("invalid transaction id")
	// ErrTransactionNotClaimable covers refunded and charged-back transactions.
	ErrTransactionNotClaimable = errors.New("transaction not claimable")
	// ErrAlreadyClaimed means another customer owns the transaction.
	ErrAlreadyClaimed = errors.New("transaction already claimed")
	// ErrNoActivePurchases means the customer has no claimable standing.
	ErrNoActivePurchases = errors.New("no active purchases")
	// ErrDeveloperLimit means max_developers has been reached.
	ErrDeveloperLimit = errors.New("developer limit reached")
	// ErrDeveloperNotListed means the target is not one of the caller's developers.
	ErrDeveloperNotListed = errors.New("developer not listed")
	// ErrRoleNotConfigured is a configuration error: a required role setting
	// is missing or points at a role that no longer exists.
	ErrRoleNotConfigured = errors.New("role not configured")
)

// Transaction ids look like tbx-000a0000a00000-aaa0aa. Validated before any
// storefront call so typoed ids never cost an API round trip.
var tbxIDPattern = regexp.MustCompile(`^tbx-[a-z0-9]{11,14}-[a-z0-9]{6}$`)

// DeveloperGrant reports what AddDeveloper actually did.
type DeveloperGrant int

const (
	DeveloperAdded DeveloperGrant = iota
	DeveloperRoleRestored
	DeveloperAlreadyListed
)

// PurchaseView is a claimed transaction rendered for the view-purchase command.
type PurchaseView struct {
	TbxID      string
	Refund     bool
	Chargeback bool
	ClaimedAt  int64
	Packages   []string
}

// VerifiedTransaction pairs a storefront payment with its local claim state.
type VerifiedTransaction struct {
	Payment *model.TebexPayment
	// Discord id of the claiming customer, empty when unclaimed.
	ClaimedBy string
}

type PurchaseService interface {
	CustomerID(ctx context.Context, discordID string, skipCreate bool) (uint, error)
	CheckCustomerPurchases(ctx context.Context, customerID uint) (bool, error)
	Claim(ctx context.Context, discordID, tbxID string) error
	Transfer(ctx context.Context, tbxID, fromDiscordID, toDiscordID string) error
	HandleNotification(ctx context.Context, payload *model.PurchasePayload)
	VerifyTransaction(ctx context.Context, tbxID string) (*VerifiedTransaction, error)

	AddDeveloper(ctx context.Context, ownerDiscordID, developerDiscordID string) (DeveloperGrant, error)
	RemoveDeveloper(ctx context.Context, ownerDiscordID, developerDiscordID string) error
	Developers(ctx context.Context, ownerDiscordID string) ([]string, int, error)

	Purchases(ctx context.Context, customerID uint) ([]PurchaseView, error)
	SearchClaimed(ctx context.Context, discordID, query string) ([]repository.ClaimedPurchase, error)
}

type purchaseServiceImpl struct {
	customerRepo    repository.CustomerRepository
	transactionRepo repository.TransactionRepository
	verifier        client.PurchaseVerifier
	settings        SettingsService
	guild           GuildClient
	logger          *slog.Logger
}

func NewPurchaseService(
	customerRepo repository.CustomerRepository,
	transactionRepo repository.TransactionRepository,
	verifier client.PurchaseVerifier,
	settings SettingsService,
	guild GuildClient,
	logger *slog.Logger,
) PurchaseService {
	return &purchaseServiceImpl{
		customerRepo:    customerRepo,
		transactionRepo: transactionRepo,
		verifier:        verifier,
		settings:        settings,
		guild:           guild,
		logger:          logger.With("component", "purchases"),
	}
}

// CustomerID resolves a Discord user to their customer id. With skipCreate
// the lookup never materializes a row; read-only flows depend on that.
func (s *purchaseServiceImpl) CustomerID(ctx context.Context, discordID string, skipCreate bool) (uint, error) {
	customer, err := s.customerRepo.FindByDiscordID(ctx, discordID)
	if err == nil {
		return customer.ID, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return 0, fmt.Errorf("find customer %s: %w", discordID, err)
	}

	if skipCreate {
		return 0, ErrNoCustomer
	}

	created := &model.Customer{DiscordID: discordID}
	if err := s.customerRepo.Create(ctx, created); err != nil {
		return 0, fmt.Errorf("insert customer %s: %w", discordID, err)
	}

	return created.ID, nil
}

// CheckCustomerPurchases re-evaluates a customer's standing after something
// may have revoked it. Zero transactions deletes the customer row; zero
// active transactions revokes the customer role and every developer's role
// and drops the developer links. Returns whether the customer still has at
// least one active purchase.
func (s *purchaseServiceImpl) CheckCustomerPurchases(ctx context.Context, customerID uint) (bool, error) {
	transactions, err := s.transactionRepo.FindByCustomer(ctx, customerID)
	if err != nil {
		return false, fmt.Errorf("load transactions for customer %d: %w", customerID, err)
	}

	if len(transactions) == 0 {
		if err := s.customerRepo.Delete(ctx, customerID); err != nil {
			return false, fmt.Errorf("delete empty customer %d: %w", customerID, err)
		}
		return false, nil
	}

	for _, transaction := range transactions {
		if !transaction.Refund && !transaction.Chargeback {
			return true, nil
		}
	}

	s.revokeCustomerAccess(ctx, customerID)
	return false, nil
}

// revokeCustomerAccess strips the customer role and all developer roles.
// Role removal is best effort: members who left or roles that vanished are
// logged, never fatal.
func (s *purchaseServiceImpl) revokeCustomerAccess(ctx context.Context, customerID uint) {
	customer, err := s.customerByID(ctx, customerID)
	if err != nil {
		s.logger.Error("unable to resolve customer for revocation", "customer_id", customerID, "error", err)
		return
	}

	customerRole := s.settings.Text("customer_role")
	if customerRole != "" {
		if err := s.guild.RemoveRole(ctx, customer.DiscordID, customerRole, "No active purchases remaining"); err != nil {
			s.logger.Warn("unable to remove customer role", "discord_id", customer.DiscordID, "error", err)
		}
	}

	developers, err := s.customerRepo.Developers(ctx, customerID)
	if err != nil {
		s.logger.Error("unable to load developers for revocation", "customer_id", customerID, "error", err)
		return
	}

	devRole := s.settings.Text("customers_dev_role")
	for _, developer := range developers {
		if devRole == "" {
			break
		}
		if err := s.guild.RemoveRole(ctx, developer.DiscordID, devRole, "Linked purchase no longer active"); err != nil {
			s.logger.Warn("unable to remove developer role", "discord_id", developer.DiscordID, "error", err)
		}
	}

	if err := s.customerRepo.DeleteAllDevelopers(ctx, customerID); err != nil {
		s.logger.Error("unable to delete developer links", "customer_id", customerID, "error", err)
	}
}

func (s *purchaseServiceImpl) customerByID(ctx context.Context, customerID uint) (*model.Customer, error) {
	return s.customerRepo.FindByID(ctx, customerID)
}

// Claim links a storefront transaction to the calling user, verifying
// unknown ids against the storefront and granting the customer role.
func (s *purchaseServiceImpl) Claim(ctx context.Context, discordID, tbxID string) error {
	if !tbxIDPattern.MatchString(tbxID) {
		return ErrInvalidTransactionID
	}

	transaction, err := s.transactionRepo.FindByTbxID(ctx, tbxID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("look up transaction %s: %w", tbxID, err)
	}

	if transaction == nil {
		payment, err := s.verifier.VerifyPurchase(ctx, tbxID)
		if err != nil {
			return fmt.Errorf("verify %s against storefront: %w", tbxID, err)
		}

		customerID, err := s.CustomerID(ctx, discordID, false)
		if err != nil {
			return err
		}

		transaction = &model.Transaction{
			TbxID:         tbxID,
			CustomerID:    &customerID,
			PurchaserName: payment.Player.Name,
			PurchaserUUID: payment.Player.UUID,
			Refund:        payment.Status == model.TebexStatusRefund,
			Chargeback:    payment.Status == model.TebexStatusChargeback,
		}
		if err := s.transactionRepo.Create(ctx, transaction); err != nil {
			return fmt.Errorf("insert transaction %s: %w", tbxID, err)
		}

		for _, pkg := range payment.Packages {
			if err := s.transactionRepo.AddPackage(ctx, tbxID, pkg.Name); err != nil {
				return fmt.Errorf("insert package for %s: %w", tbxID, err)
			}
		}
	}

	if transaction.Refund || transaction.Chargeback {
		return ErrTransactionNotClaimable
	}

	if transaction.CustomerID != nil {
		owner, err := s.customerOfTransaction(ctx, transaction)
		if err != nil {
			return err
		}
		if owner != nil && owner.DiscordID != discordID {
			return ErrAlreadyClaimed
		}
	}

	if transaction.CustomerID == nil {
		customerID, err := s.CustomerID(ctx, discordID, false)
		if err != nil {
			return err
		}
		if err := s.transactionRepo.SetCustomer(ctx, tbxID, customerID); err != nil {
			return fmt.Errorf("link transaction %s to customer %d: %w", tbxID, customerID, err)
		}
	}

	if err := s.grantRole(ctx, discordID, "customer_role", "Purchase claimed"); err != nil {
		return err
	}

	s.logger.Info("purchase claimed", "tbxid", tbxID, "discord_id", discordID)
	return nil
}

func (s *purchaseServiceImpl) customerOfTransaction(ctx context.Context, transaction *model.Transaction) (*model.Customer, error) {
	if transaction.CustomerID == nil {
		return nil, nil
	}

	owner, err := s.customerRepo.FindByID(ctx, *transaction.CustomerID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve owner of %s: %w", transaction.TbxID, err)
	}

	return owner, nil
}

// grantRole adds the role named by a settings key; a missing or stale role
// id is a configuration error the caller surfaces to the acting user.
func (s *purchaseServiceImpl) grantRole(ctx context.Context, discordID, settingKey, reason string) error {
	roleID := s.settings.Text(settingKey)
	if roleID == "" || !s.guild.RoleExists(ctx, roleID) {
		s.logger.Error("role setting missing or stale", "setting", settingKey, "role_id", roleID)
		return ErrRoleNotConfigured
	}

	if err := s.guild.AddRole(ctx, discordID, roleID, reason); err != nil {
		return fmt.Errorf("grant role to %s: %w", discordID, err)
	}

	return nil
}

// Transfer moves an active transaction between customers, re-evaluating the
// old owner's standing and granting the customer role to the new owner.
func (s *purchaseServiceImpl) Transfer(ctx context.Context, tbxID, fromDiscordID, toDiscordID string) error {
	fromCustomerID, err := s.CustomerID(ctx, fromDiscordID, true)
	if err != nil {
		return err
	}

	transaction, err := s.transactionRepo.FindByTbxID(ctx, tbxID)
	if err != nil {
		return err
	}
	if transaction.CustomerID == nil || *transaction.CustomerID != fromCustomerID {
		return repository.ErrNotFound
	}

	if transaction.Refund || transaction.Chargeback {
		return ErrTransactionNotClaimable
	}

	toCustomerID, err := s.CustomerID(ctx, toDiscordID, false)
	if err != nil {
		return err
	}

	if err := s.transactionRepo.SetCustomer(ctx, tbxID, toCustomerID); err != nil {
		return fmt.Errorf("reassign transaction %s: %w", tbxID, err)
	}

	if _, err := s.CheckCustomerPurchases(ctx, fromCustomerID); err != nil {
		s.logger.Error("unable to re-evaluate previous owner", "customer_id", fromCustomerID, "error", err)
	}

	if err := s.grantRole(ctx, toDiscordID, "customer_role", "Purchase transferred"); err != nil {
		return err
	}

	s.logger.Info("purchase transferred", "tbxid", tbxID, "from", fromDiscordID, "to", toDiscordID)
	return nil
}

// HandleNotification processes a storefront purchase notification, whether
// it arrived as a payment-log message or on the webhook endpoint. Malformed
// and unknown actions are logged and dropped.
func (s *purchaseServiceImpl) HandleNotification(ctx context.Context, payload *model.PurchasePayload) {
	switch payload.Action {
	case model.ActionRefund, model.ActionChargeback:
		s.handleRevocation(ctx, payload)
	case model.ActionPurchase:
		s.handlePurchase(ctx, payload)
	default:
		s.logger.Error("unrecognized action in purchase notification", "action", payload.Action, "tbxid", payload.Transaction)
	}
}

func (s *purchaseServiceImpl) handleRevocation(ctx context.Context, payload *model.PurchasePayload) {
	transaction, err := s.transactionRepo.FindByTbxID(ctx, payload.Transaction)
	if errors.Is(err, repository.ErrNotFound) {
		return
	}
	if err != nil {
		s.logger.Error("unable to look up transaction for notification", "tbxid", payload.Transaction, "error", err)
		return
	}

	mark := s.transactionRepo.MarkRefund
	if payload.Action == model.ActionChargeback {
		mark = s.transactionRepo.MarkChargeback
	}
	if err := mark(ctx, payload.Transaction); err != nil {
		s.logger.Error("unable to flag transaction", "tbxid", payload.Transaction, "action", payload.Action, "error", err)
		return
	}

	s.logger.Info("handling storefront notification", "action", payload.Action, "tbxid", payload.Transaction)

	if transaction.CustomerID == nil {
		return
	}
	if _, err := s.CheckCustomerPurchases(ctx, *transaction.CustomerID); err != nil {
		s.logger.Error("unable to re-evaluate customer after notification", "customer_id", *transaction.CustomerID, "error", err)
	}
}

func (s *purchaseServiceImpl) handlePurchase(ctx context.Context, payload *model.PurchasePayload) {
	_, err := s.transactionRepo.FindByTbxID(ctx, payload.Transaction)
	if err == nil {
		// Already logged; only the package list may be new.
		if err := s.transactionRepo.AddPackage(ctx, payload.Transaction, payload.PackageName); err != nil {
			s.logger.Error("unable to append package", "tbxid", payload.Transaction, "error", err)
		}
		return
	}
	if !errors.Is(err, repository.ErrNotFound) {
		s.logger.Error("unable to look up transaction for notification", "tbxid", payload.Transaction, "error", err)
		return
	}

	transaction := &model.Transaction{
		TbxID:         payload.Transaction,
		PurchaserName: payload.PurchaserName,
		PurchaserUUID: payload.PurchaserUUID,
	}

	if payload.DiscordID != "" {
		customerID, err := s.CustomerID(ctx, payload.DiscordID, false)
		if err != nil {
			s.logger.Error("unable to resolve customer for notification", "discord_id", payload.DiscordID, "error", err)
		} else {
			transaction.CustomerID = &customerID
		}
	}

	if err := s.transactionRepo.Create(ctx, transaction); err != nil {
		s.logger.Error("unable to insert transaction from notification", "tbxid", payload.Transaction, "error", err)
		return
	}

	if err := s.transactionRepo.AddPackage(ctx, payload.Transaction, payload.PackageName); err != nil {
		s.logger.Error("unable to insert package from notification", "tbxid", payload.Transaction, "error", err)
	}

	s.logger.Info("logged storefront purchase", "tbxid", payload.Transaction, "package", payload.PackageName)
}

// VerifyTransaction is the staff-facing lookup: storefront payment details
// plus whichever customer has claimed the transaction locally.
func (s *purchaseServiceImpl) VerifyTransaction(ctx context.Context, tbxID string) (*VerifiedTransaction, error) {
	payment, err := s.verifier.VerifyPurchase(ctx, tbxID)
	if err != nil {
		return nil, err
	}

	verified := &VerifiedTransaction{Payment: payment}

	transaction, err := s.transactionRepo.FindByTbxID(ctx, tbxID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return verified, nil
		}
		return nil, err
	}

	owner, err := s.customerOfTransaction(ctx, transaction)
	if err != nil {
		return nil, err
	}
	if owner != nil {
		verified.ClaimedBy = owner.DiscordID
	}

	return verified, nil
}

func (s *purchaseServiceImpl) AddDeveloper(ctx context.Context, ownerDiscordID, developerDiscordID string) (DeveloperGrant, error) {
	customerID, err := s.CustomerID(ctx, ownerDiscordID, false)
	if err != nil {
		return 0, err
	}

	active, err := s.CheckCustomerPurchases(ctx, customerID)
	if err != nil {
		return 0, err
	}
	if !active {
		return 0, ErrNoActivePurchases
	}

	developers, err := s.customerRepo.Developers(ctx, customerID)
	if err != nil {
		return 0, fmt.Errorf("load developers for %d: %w", customerID, err)
	}

	devRole := s.settings.Text("customers_dev_role")
	if devRole == "" || !s.guild.RoleExists(ctx, devRole) {
		s.logger.Error("developer role setting missing or stale", "role_id", devRole)
		return 0, ErrRoleNotConfigured
	}

	for _, developer := range developers {
		if developer.DiscordID != developerDiscordID {
			continue
		}
		if s.guild.HasRole(ctx, developerDiscordID, devRole) {
			return DeveloperAlreadyListed, nil
		}
		if err := s.guild.AddRole(ctx, developerDiscordID, devRole, "Added as previously owned"); err != nil {
			return 0, fmt.Errorf("restore developer role: %w", err)
		}
		return DeveloperRoleRestored, nil
	}

	maxDevelopers, ok := s.settings.Number("max_developers")
	if !ok {
		s.logger.Error("max_developers setting missing")
		return 0, ErrRoleNotConfigured
	}
	if len(developers) >= maxDevelopers {
		return 0, ErrDeveloperLimit
	}

	if err := s.customerRepo.AddDeveloper(ctx, customerID, developerDiscordID); err != nil {
		return 0, fmt.Errorf("insert developer link: %w", err)
	}

	if err := s.guild.AddRole(ctx, developerDiscordID, devRole, "Added as developer for purchase"); err != nil {
		return 0, fmt.Errorf("grant developer role: %w", err)
	}

	s.logger.Info("developer added", "owner", ownerDiscordID, "developer", developerDiscordID)
	return DeveloperAdded, nil
}

func (s *purchaseServiceImpl) RemoveDeveloper(ctx context.Context, ownerDiscordID, developerDiscordID string) error {
	customerID, err := s.CustomerID(ctx, ownerDiscordID, true)
	if err != nil {
		return err
	}

	active, err := s.CheckCustomerPurchases(ctx, customerID)
	if err != nil {
		return err
	}
	if !active {
		return ErrNoActivePurchases
	}

	if err := s.customerRepo.RemoveDeveloper(ctx, customerID, developerDiscordID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrDeveloperNotListed
		}
		return fmt.Errorf("delete developer link: %w", err)
	}

	devRole := s.settings.Text("customers_dev_role")
	if devRole != "" {
		if err := s.guild.RemoveRole(ctx, developerDiscordID, devRole, "Removed as developer"); err != nil {
			s.logger.Warn("unable to remove developer role", "discord_id", developerDiscordID, "error", err)
		}
	}

	s.logger.Info("developer removed", "owner", ownerDiscordID, "developer", developerDiscordID)
	return nil
}

func (s *purchaseServiceImpl) Developers(ctx context.Context, ownerDiscordID string) ([]string, int, error) {
	maxDevelopers, _ := s.settings.Number("max_developers")

	customerID, err := s.CustomerID(ctx, ownerDiscordID, true)
	if err != nil {
		return nil, maxDevelopers, err
	}

	developers, err := s.customerRepo.Developers(ctx, customerID)
	if err != nil {
		return nil, maxDevelopers, fmt.Errorf("load developers for %d: %w", customerID, err)
	}

	ids := make([]string, len(developers))
	for i, developer := range developers {
		ids[i] = developer.DiscordID
	}

	return ids, maxDevelopers, nil
}

func (s *purchaseServiceImpl) Purchases(ctx context.Context, customerID uint) ([]PurchaseView, error) {
	transactions, err := s.transactionRepo.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("load transactions for customer %d: %w", customerID, err)
	}

	views := make([]PurchaseView, len(transactions))
	for i, transaction := range transactions {
		packages, err := s.transactionRepo.Packages(ctx, transaction.TbxID)
		if err != nil {
			return nil, err
		}
		views[i] = PurchaseView{
			TbxID:      transaction.TbxID,
			Refund:     transaction.Refund,
			Chargeback: transaction.Chargeback,
			ClaimedAt:  transaction.CreatedAt.Unix(),
			Packages:   packages,
		}
	}

	return views, nil
}

func (s *purchaseServiceImpl) SearchClaimed(ctx context.Context, discordID, query string) ([]repository.ClaimedPurchase, error) {
	return s.transactionRepo.SearchClaimed(ctx, discordID, query)
}
