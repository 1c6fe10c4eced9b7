package ledger

import (
	"context"
	"errors"
	"path"
	"strconv"
	"strings"
	"time"

	"expense_tracker/internal/assets"
	"expense_tracker/internal/domain"
	"expense_tracker/internal/watch"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	opSaveTransaction   = "ledger.save_transaction"
	opDeleteTransaction = "ledger.delete_transaction"
)

// TransactionInput carries a create (empty ID) or an update.
type TransactionInput struct {
	ID          string
	UID         string
	WalletID    string
	Type        domain.TransactionType
	Amount      decimal.Decimal
	Category    string
	Description string
	Date        time.Time
	Image       assets.Asset
}

// amountPlaces is the precision of the decimal(20,2) money columns
const amountPlaces = 2

func (in TransactionInput) validate() error {
	switch {
	case in.UID == "":
		return domain.Validation(opSaveTransaction, "User id is required")
	case in.WalletID == "":
		return domain.Validation(opSaveTransaction, "Please select a wallet")
	case !in.Type.Valid():
		return domain.Validation(opSaveTransaction, "Transaction type must be income or expense")
	case !in.Amount.IsPositive():
		return domain.Validation(opSaveTransaction, "Amount must be greater than zero")
	case !in.Amount.Equal(in.Amount.Round(amountPlaces)):
		// The store would round the transaction and the wallet separately
		return domain.Validation(opSaveTransaction, "Amount can have at most 2 decimal places")
	case in.Type == domain.TypeExpense && strings.TrimSpace(in.Category) == "":
		return domain.Validation(opSaveTransaction, "Please select a category")
	}
	return nil
}

// CreateOrUpdateTransaction uploads a pending image, writes the transaction
// and then moves the wallet balance by the difference between the new and
// the previous signed amount. Ownership of the transaction and of the target
// wallet is checked before anything is uploaded or written. The two writes
// are separate round trips; if the wallet disappears in between, the
// transaction stays written and NotFound is returned.
func (s *Service) CreateOrUpdateTransaction(ctx context.Context, input TransactionInput) domain.Result {
	if err := input.validate(); err != nil {
		return domain.Fail(err)
	}
	logger := s.logger.WithFields(logrus.Fields{
		"uid":       input.UID,
		"wallet_id": input.WalletID,
		"type":      input.Type,
		"amount":    input.Amount.String(),
	})

	// Load the version being replaced, if any
	var previous *domain.Transaction
	id := input.ID
	if id == "" {
		id = s.newID() // Fresh document
	} else {
		stored, err := s.store.GetTransaction(ctx, id)
		switch {
		case err == nil:
			previous = &stored
		case !errors.Is(err, domain.ErrNotFound):
			return domain.Fail(err)
		}
	}
	if previous != nil && previous.UID != input.UID {
		logger.WithField("transaction_id", id).Warn("Rejected edit of another user's transaction")
		return domain.Fail(domain.NewError(domain.ErrForbidden, opSaveTransaction, "Transaction belongs to another user", nil))
	}

	// The target wallet must exist and belong to the caller, also when moving
	if err := s.checkWalletOwner(ctx, opSaveTransaction, input.WalletID, input.UID); err != nil {
		logger.WithField("error", err.Error()).Warn("Rejected transaction for wallet")
		return domain.Fail(err)
	}

	// Upload only once the write is known to be allowed
	image, err := assets.Resolve(ctx, s.assets, input.Image, path.Join("transactions", input.WalletID, strconv.FormatInt(s.now().UnixMilli(), 10)))
	if err != nil {
		logger.WithField("error", err.Error()).Error("Transaction image upload failed")
		return domain.Fail(err)
	}

	date := input.Date
	if date.IsZero() && previous == nil {
		date = s.now() // New transactions default to now
	}
	if !date.IsZero() {
		date = date.UTC() // Stored in UTC
	}
	// First write: the transaction document, merged into any stored version
	saved, err := s.store.UpsertTransaction(ctx, domain.Transaction{
		ID:          id,
		UID:         input.UID,
		WalletID:    input.WalletID,
		Type:        input.Type,
		Amount:      input.Amount,
		Category:    strings.TrimSpace(input.Category),
		Description: strings.TrimSpace(input.Description),
		Date:        date,
		Image:       image,
	})
	if err != nil {
		logger.WithField("error", err.Error()).Error("Transaction write failed")
		return domain.Fail(err)
	}
	logger = logger.WithField("transaction_id", saved.ID)

	// Second write: the wallet balance
	if err := s.reconcile(ctx, previous, saved); err != nil {
		logger.WithField("error", err.Error()).Error("Wallet balance update failed")
		s.publish(ctx, CollectionTransactions, saved.UID, saved.ID, watch.Updated) // The document did change
		return domain.Fail(err)
	}

	kind := watch.Created
	if previous != nil {
		kind = watch.Updated
	}
	s.publish(ctx, CollectionTransactions, saved.UID, saved.ID, kind)
	s.publish(ctx, CollectionWallets, saved.UID, saved.WalletID, watch.Updated)
	logger.Info("Transaction saved")
	return domain.OK("Transaction saved successfully", saved)
}

// checkWalletOwner fails with NotFound for a missing wallet and Forbidden for
// another user's wallet
func (s *Service) checkWalletOwner(ctx context.Context, op string, walletID string, uid string) error {
	wallet, err := s.store.GetWallet(ctx, walletID)
	if err != nil {
		return err
	}
	if wallet.UID != uid {
		return domain.NewError(domain.ErrForbidden, op, "Wallet belongs to another user", nil)
	}
	return nil
}

// reconcile reverses the previous version's effect and applies the current
// one. When the transaction moved to another wallet, the old wallet is
// restored first; a missing old wallet has nothing to restore.
func (s *Service) reconcile(ctx context.Context, previous *domain.Transaction, current domain.Transaction) error {
	delta := current.Effect() // What the current version contributes
	if previous != nil {
		if previous.WalletID == current.WalletID {
			delta = delta.Add(previous.Effect().Neg()) // One combined increment
		} else {
			// Moved: give the old wallet its share back first
			err := s.store.AdjustWallet(ctx, previous.WalletID, previous.Effect().Neg())
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return err
			}
			s.publish(ctx, CollectionWallets, previous.UID, previous.WalletID, watch.Updated)
		}
	}
	return s.store.AdjustWallet(ctx, current.WalletID, delta)
}

// DeleteTransaction removes the transaction and reverses its effect on the
// wallet. The stored document is authoritative for amount and type; a
// transaction that no longer exists is a no-op, and a missing wallet is
// skipped without compensation.
func (s *Service) DeleteTransaction(ctx context.Context, transaction domain.Transaction) domain.Result {
	if transaction.ID == "" {
		return domain.Fail(domain.Validation(opDeleteTransaction, "Transaction id is required"))
	}
	logger := s.logger.WithField("transaction_id", transaction.ID)

	stored, err := s.store.GetTransaction(ctx, transaction.ID) // Stored amount and type win over the caller's copy
	if errors.Is(err, domain.ErrNotFound) {
		logger.Info("Transaction already deleted")
		return domain.OK("Transaction deleted successfully", nil)
	}
	if err != nil {
		return domain.Fail(err)
	}
	if transaction.UID != "" && stored.UID != transaction.UID {
		return domain.Fail(domain.NewError(domain.ErrForbidden, opDeleteTransaction, "Transaction belongs to another user", nil))
	}

	// First write: drop the document
	if err := s.store.DeleteTransaction(ctx, stored.ID); err != nil {
		logger.WithField("error", err.Error()).Error("Transaction delete failed")
		return domain.Fail(err)
	}
	s.publish(ctx, CollectionTransactions, stored.UID, stored.ID, watch.Deleted)

	// Second write: reverse its effect on the wallet
	err = s.store.AdjustWallet(ctx, stored.WalletID, stored.Effect().Neg())
	switch {
	case errors.Is(err, domain.ErrNotFound):
		logger.WithField("wallet_id", stored.WalletID).Warn("Wallet missing, balance not restored")
	case err != nil:
		logger.WithField("error", err.Error()).Error("Wallet balance update failed")
		return domain.Fail(err)
	default:
		s.publish(ctx, CollectionWallets, stored.UID, stored.WalletID, watch.Updated)
	}

	logger.WithFields(logrus.Fields{
		"wallet_id": stored.WalletID,
		"amount":    stored.Amount.String(),
		"type":      stored.Type,
	}).Info("Transaction deleted")
	return domain.OK("Transaction deleted successfully", nil)
}
