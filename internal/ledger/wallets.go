package ledger

import (
	"context"
	"path"
	"strconv"
	"strings"

	"expense_tracker/internal/assets"
	"expense_tracker/internal/domain"
	"expense_tracker/internal/watch"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	opSaveWallet   = "ledger.save_wallet"
	opDeleteWallet = "ledger.delete_wallet"
)

// WalletInput carries a create (empty ID) or an update. Balances are not
// part of the input: they start at zero and only transactions move them.
type WalletInput struct {
	ID    string
	UID   string
	Name  string
	Image assets.Asset
}

// CreateOrUpdateWallet creates a zero-balance wallet or merges name and image
// into an existing one.
func (s *Service) CreateOrUpdateWallet(ctx context.Context, input WalletInput) domain.Result {
	name := strings.TrimSpace(input.Name)
	if input.UID == "" {
		return domain.Fail(domain.Validation(opSaveWallet, "User id is required"))
	}
	if input.ID == "" && name == "" {
		return domain.Fail(domain.Validation(opSaveWallet, "Please enter wallet name"))
	}
	logger := s.logger.WithFields(logrus.Fields{"uid": input.UID, "wallet_id": input.ID})

	// Updates address an existing wallet of the caller
	if input.ID != "" {
		if err := s.checkWalletOwner(ctx, opSaveWallet, input.ID, input.UID); err != nil {
			logger.WithField("error", err.Error()).Warn("Rejected wallet update")
			return domain.Fail(err)
		}
	}

	// Upload only once the write is known to be allowed
	image, err := assets.Resolve(ctx, s.assets, input.Image, path.Join("wallets", input.UID, strconv.FormatInt(s.now().UnixMilli(), 10)))
	if err != nil {
		logger.WithField("error", err.Error()).Error("Wallet image upload failed")
		return domain.Fail(err)
	}

	wallet := domain.Wallet{ID: input.ID, UID: input.UID, Name: name, Image: image}
	kind := watch.Updated
	if wallet.ID == "" {
		// New wallets start empty whatever the caller sent
		wallet.ID = s.newID()
		wallet.Amount = decimal.Zero
		wallet.TotalIncome = decimal.Zero
		wallet.TotalExpenses = decimal.Zero
		wallet.CreatedAt = s.now().UTC()
		kind = watch.Created
	}

	saved, err := s.store.UpsertWallet(ctx, wallet)
	if err != nil {
		logger.WithField("error", err.Error()).Error("Wallet write failed")
		return domain.Fail(err)
	}
	s.publish(ctx, CollectionWallets, saved.UID, saved.ID, kind)
	logger.WithField("wallet_id", saved.ID).Info("Wallet saved")
	return domain.OK("Wallet saved successfully", saved)
}

// DeleteWallet removes the wallet. Deleting a missing wallet succeeds, and
// the wallet's transactions are left in place.
func (s *Service) DeleteWallet(ctx context.Context, id string) domain.Result {
	if id == "" {
		return domain.Fail(domain.Validation(opDeleteWallet, "Wallet id is required"))
	}
	logger := s.logger.WithField("wallet_id", id)

	var owner string // Topic owner for the change event, unknown when already gone
	if wallet, err := s.store.GetWallet(ctx, id); err == nil {
		owner = wallet.UID
	}
	// Transactions are left in place
	if err := s.store.DeleteWallet(ctx, id); err != nil {
		logger.WithField("error", err.Error()).Error("Wallet delete failed")
		return domain.Fail(err)
	}
	s.publish(ctx, CollectionWallets, owner, id, watch.Deleted)
	logger.Info("Wallet deleted")
	return domain.OK("Wallet deleted successfully", nil)
}
