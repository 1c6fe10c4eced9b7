package gormstore

import (
	"context" // Request scoped queries
	"errors"  // Not-found detection
	"time"    // Default creation time

	"expense_tracker/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

const (
	opGetWallet         = "store.wallet.get"
	opUpsertWallet      = "store.wallet.upsert"
	opDeleteWallet      = "store.wallet.delete"
	opAdjustWallet      = "store.wallet.adjust"
	opListWallets       = "store.wallet.list"
	opGetTransaction    = "store.transaction.get"
	opUpsertTransaction = "store.transaction.upsert"
	opDeleteTransaction = "store.transaction.delete"
	opListTransactions  = "store.transaction.list"
	opGetUser           = "store.user.get"
	opCreateUser        = "store.user.create"
	opUpdateUser        = "store.user.update"
)

// Store persists users, wallets and transactions with GORM.
type Store struct {
	db *gorm.DB
}

// New returns a Store backed by db.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// GetWallet loads a wallet by id.
func (s *Store) GetWallet(ctx context.Context, id string) (domain.Wallet, error) {
	var wallet domain.Wallet
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&wallet).Error; err != nil {
		return domain.Wallet{}, wrap(opGetWallet, "Wallet not found", err)
	}
	return wallet, nil
}

// UpsertWallet creates the wallet, or merges name and image into the stored
// one. Balance fields are only written on creation; AdjustWallet owns them
// afterwards.
func (s *Store) UpsertWallet(ctx context.Context, wallet domain.Wallet) (domain.Wallet, error) {
	db := s.db.WithContext(ctx)                              // Bind the request context
	exists, err := s.exists(db, &domain.Wallet{}, wallet.ID) // Create or merge
	if err != nil {
		return domain.Wallet{}, domain.Network(opUpsertWallet, err)
	}
	if !exists {
		if wallet.CreatedAt.IsZero() {
			wallet.CreatedAt = time.Now().UTC() // Stamp creation time
		}
		// Insert with the zeroed balances
		if err := db.Create(&wallet).Error; err != nil {
			return domain.Wallet{}, domain.Network(opUpsertWallet, err)
		}
		return s.GetWallet(ctx, wallet.ID) // Read back the stored row
	}
	fields := map[string]any{} // Only set fields are merged
	if wallet.Name != "" {
		fields["name"] = wallet.Name
	}
	if wallet.Image != nil {
		fields["image"] = *wallet.Image
	}
	if len(fields) > 0 {
		if err := db.Model(&domain.Wallet{}).Where("id = ?", wallet.ID).Updates(fields).Error; err != nil {
			return domain.Wallet{}, domain.Network(opUpsertWallet, err)
		}
	}
	return s.GetWallet(ctx, wallet.ID)
}

// DeleteWallet removes a wallet; deleting a missing wallet is not an error.
func (s *Store) DeleteWallet(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Wallet{}).Error; err != nil {
		return domain.Network(opDeleteWallet, err)
	}
	return nil
}

// AdjustWallet applies delta with a single atomic UPDATE so that concurrent
// adjustments of the same wallet never lose each other.
func (s *Store) AdjustWallet(ctx context.Context, id string, delta domain.WalletDelta) error {
	db := s.db.WithContext(ctx) // Bind the request context
	// Nothing to add, but a missing wallet must still be reported
	if delta.IsZero() {
		exists, err := s.exists(db, &domain.Wallet{}, id)
		if err != nil {
			return domain.Network(opAdjustWallet, err)
		}
		if !exists {
			return domain.NotFound(opAdjustWallet, "Wallet not found")
		}
		return nil
	}
	// Increment in SQL so racing requests never overwrite each other
	result := db.Model(&domain.Wallet{}).Where("id = ?", id).Updates(map[string]any{
		"amount":         gorm.Expr("amount + ?", delta.Amount),           // Running balance
		"total_income":   gorm.Expr("total_income + ?", delta.Income),     // Income magnitudes
		"total_expenses": gorm.Expr("total_expenses + ?", delta.Expenses), // Expense magnitudes
	})
	if result.Error != nil {
		return domain.Network(opAdjustWallet, result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NotFound(opAdjustWallet, "Wallet not found") // No row matched the id
	}
	return nil
}

// ListWallets returns the owner's wallets, newest first.
func (s *Store) ListWallets(ctx context.Context, query domain.WalletQuery) ([]domain.Wallet, error) {
	wallets := []domain.Wallet{}
	err := s.db.WithContext(ctx).
		Where("uid = ?", query.UID).
		Order("created_at desc").
		Find(&wallets).Error
	if err != nil {
		return nil, domain.Network(opListWallets, err)
	}
	return wallets, nil
}

// GetTransaction loads a transaction by id.
func (s *Store) GetTransaction(ctx context.Context, id string) (domain.Transaction, error) {
	var transaction domain.Transaction
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&transaction).Error; err != nil {
		return domain.Transaction{}, wrap(opGetTransaction, "Transaction not found", err)
	}
	return transaction, nil
}

// UpsertTransaction creates the transaction, or merges its set fields into
// the stored one; empty strings, zero amounts, zero dates and nil images keep
// the stored values.
func (s *Store) UpsertTransaction(ctx context.Context, transaction domain.Transaction) (domain.Transaction, error) {
	db := s.db.WithContext(ctx)                                        // Bind the request context
	exists, err := s.exists(db, &domain.Transaction{}, transaction.ID) // Create or merge
	if err != nil {
		return domain.Transaction{}, domain.Network(opUpsertTransaction, err)
	}
	if !exists {
		if err := db.Create(&transaction).Error; err != nil {
			return domain.Transaction{}, domain.Network(opUpsertTransaction, err)
		}
		return s.GetTransaction(ctx, transaction.ID)
	}
	fields := map[string]any{} // Only set fields are merged
	setString := func(column, value string) {
		if value != "" {
			fields[column] = value
		}
	}
	setString("uid", transaction.UID)
	setString("wallet_id", transaction.WalletID)
	setString("type", string(transaction.Type))
	setString("category", transaction.Category)
	setString("description", transaction.Description)
	if !transaction.Amount.IsZero() {
		fields["amount"] = transaction.Amount
	}
	if !transaction.Date.IsZero() {
		fields["date"] = transaction.Date
	}
	if transaction.Image != nil {
		fields["image"] = *transaction.Image
	}
	if len(fields) > 0 {
		if err := db.Model(&domain.Transaction{}).Where("id = ?", transaction.ID).Updates(fields).Error; err != nil {
			return domain.Transaction{}, domain.Network(opUpsertTransaction, err)
		}
	}
	return s.GetTransaction(ctx, transaction.ID)
}

// DeleteTransaction removes a transaction; deleting a missing one is not an error.
func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Transaction{}).Error; err != nil {
		return domain.Network(opDeleteTransaction, err)
	}
	return nil
}

// ListTransactions returns the owner's transactions matching query, newest first.
func (s *Store) ListTransactions(ctx context.Context, query domain.TransactionQuery) ([]domain.Transaction, error) {
	db := s.db.WithContext(ctx).Where("uid = ?", query.UID) // Always scoped to the owner
	if query.WalletID != "" {
		db = db.Where("wallet_id = ?", query.WalletID)
	}
	if query.Type != "" {
		db = db.Where("type = ?", string(query.Type))
	}
	if !query.Since.IsZero() {
		db = db.Where("date >= ?", query.Since)
	}
	if query.Limit > 0 {
		db = db.Limit(query.Limit)
	}
	transactions := []domain.Transaction{}
	// Newest first, id breaks ties for a stable order
	if err := db.Order("date desc").Order("id").Find(&transactions).Error; err != nil {
		return nil, domain.Network(opListTransactions, err)
	}
	return transactions, nil
}

// GetUser loads a user profile.
func (s *Store) GetUser(ctx context.Context, uid string) (domain.User, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).Where("uid = ?", uid).First(&user).Error; err != nil {
		return domain.User{}, wrap(opGetUser, "User not found", err)
	}
	return user, nil
}

// CreateUser writes a new user profile.
func (s *Store) CreateUser(ctx context.Context, user domain.User) error {
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return domain.Network(opCreateUser, err)
	}
	return nil
}

// UpdateUser merges name and image into the stored profile.
func (s *Store) UpdateUser(ctx context.Context, uid string, name string, image *string) error {
	fields := map[string]any{}
	if name != "" {
		fields["name"] = name
	}
	if image != nil {
		fields["image"] = *image
	}
	if len(fields) == 0 {
		_, err := s.GetUser(ctx, uid)
		return err
	}
	result := s.db.WithContext(ctx).Model(&domain.User{}).Where("uid = ?", uid).Updates(fields)
	if result.Error != nil {
		return domain.Network(opUpdateUser, result.Error)
	}
	if result.RowsAffected == 0 {
		// MySQL reports zero affected rows when values are unchanged.
		_, err := s.GetUser(ctx, uid)
		return err
	}
	return nil
}

func (s *Store) exists(db *gorm.DB, model any, id string) (bool, error) {
	var count int64
	if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func wrap(op string, notFoundMsg string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NewError(domain.ErrNotFound, op, notFoundMsg, err)
	}
	return domain.Network(op, err)
}
