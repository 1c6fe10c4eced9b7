package domain

import (
	"time" // Creation timestamp

	"github.com/shopspring/decimal" // Exact money arithmetic
)

// Wallet Model
type Wallet struct {
	ID            string          `gorm:"primaryKey;size:36" json:"id"`                               // Primary key
	UID           string          `gorm:"size:36;not null;index:idx_wallets_uid_created" json:"uid"`  // Owner
	Name          string          `gorm:"not null" json:"name"`                                       // Wallet name
	Image         *string         `gorm:"size:1024" json:"image,omitempty"`                           // Remote icon URL
	Amount        decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`        // Running balance
	TotalIncome   decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"totalIncome"`   // Sum of income magnitudes
	TotalExpenses decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"totalExpenses"` // Sum of expense magnitudes
	CreatedAt     time.Time       `gorm:"not null;index:idx_wallets_uid_created" json:"createdAt"`    // Creation time
}

// WalletDelta is a change applied atomically to a wallet's balance fields
type WalletDelta struct {
	Amount   decimal.Decimal // Change of the running balance
	Income   decimal.Decimal // Change of total income
	Expenses decimal.Decimal // Change of total expenses
}

// Add combines two deltas
func (d WalletDelta) Add(other WalletDelta) WalletDelta {
	return WalletDelta{
		Amount:   d.Amount.Add(other.Amount),
		Income:   d.Income.Add(other.Income),
		Expenses: d.Expenses.Add(other.Expenses),
	}
}

// Neg returns the inverse delta
func (d WalletDelta) Neg() WalletDelta {
	return WalletDelta{Amount: d.Amount.Neg(), Income: d.Income.Neg(), Expenses: d.Expenses.Neg()}
}

// IsZero reports whether applying the delta changes nothing
func (d WalletDelta) IsZero() bool {
	return d.Amount.IsZero() && d.Income.IsZero() && d.Expenses.IsZero()
}

// WalletQuery filters wallet listings
type WalletQuery struct {
	UID string // Owner, required
}
