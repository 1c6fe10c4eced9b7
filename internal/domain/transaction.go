package domain

import (
	"time" // Transaction date

	"github.com/shopspring/decimal" // Exact money arithmetic
)

// TransactionType is either income or expense
type TransactionType string

const (
	TypeIncome  TransactionType = "income"  // Adds to the wallet
	TypeExpense TransactionType = "expense" // Subtracts from the wallet
)

// Valid reports whether the type is known
func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Transaction Model
type Transaction struct {
	ID          string          `gorm:"primaryKey;size:36" json:"id"`                                // Primary key
	UID         string          `gorm:"size:36;not null;index:idx_transactions_uid_date" json:"uid"` // Owner
	WalletID    string          `gorm:"size:36;not null;index" json:"walletId"`                      // Foreign key to Wallet
	Type        TransactionType `gorm:"size:16;not null" json:"type"`                                // income or expense
	Amount      decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`                   // Unsigned magnitude
	Category    string          `gorm:"size:64" json:"category"`                                     // Category key
	Description string          `gorm:"size:512" json:"description"`                                 // Free text
	Date        time.Time       `gorm:"not null;index:idx_transactions_uid_date" json:"date"`        // When it happened
	Image       *string         `gorm:"size:1024" json:"image,omitempty"`                            // Remote receipt URL
}

// SignedAmount returns the amount with the sign its type implies
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.Type == TypeIncome {
		return t.Amount
	}
	return t.Amount.Neg()
}

// Effect is the delta this transaction contributes to its wallet
func (t Transaction) Effect() WalletDelta {
	delta := WalletDelta{Amount: t.SignedAmount(), Income: decimal.Zero, Expenses: decimal.Zero}
	if t.Type == TypeIncome {
		delta.Income = t.Amount
	} else {
		delta.Expenses = t.Amount
	}
	return delta
}

// TransactionQuery filters transaction listings; results are ordered by date, newest first
type TransactionQuery struct {
	UID      string          // Owner, required
	WalletID string          // Optional wallet filter
	Type     TransactionType // Optional type filter
	Since    time.Time       // Optional lower bound on date
	Limit    int             // Optional maximum number of rows
}
