package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionEffect(t *testing.T) {
	income := Transaction{Type: TypeIncome, Amount: decimal.NewFromInt(50)}
	expense := Transaction{Type: TypeExpense, Amount: decimal.NewFromInt(30)}

	assert.True(t, income.SignedAmount().Equal(decimal.NewFromInt(50)))
	assert.True(t, expense.SignedAmount().Equal(decimal.NewFromInt(-30)))

	delta := income.Effect().Add(expense.Effect())
	assert.True(t, delta.Amount.Equal(decimal.NewFromInt(20)))
	assert.True(t, delta.Income.Equal(decimal.NewFromInt(50)))
	assert.True(t, delta.Expenses.Equal(decimal.NewFromInt(30)))

	assert.True(t, delta.Add(delta.Neg()).IsZero())
}

func TestTransactionTypeValid(t *testing.T) {
	assert.True(t, TypeIncome.Valid())
	assert.True(t, TypeExpense.Valid())
	assert.False(t, TransactionType("transfer").Valid())
}

func TestErrorKinds(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("save wallet: %w", Network("store.wallet.save", cause))

	assert.ErrorIs(t, err, ErrNetwork)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, ErrNetwork, KindOf(err))
	assert.Equal(t, "connection refused", MessageOf(err))

	notFound := NotFound("ledger.wallet", "Wallet not found")
	assert.Equal(t, "ledger.wallet: Wallet not found", notFound.Error())
	assert.Equal(t, "Wallet not found", MessageOf(notFound))
	assert.Nil(t, KindOf(errors.New("plain")))
}

func TestResult(t *testing.T) {
	ok := OK("done", 42)
	assert.True(t, ok.Success)
	assert.Equal(t, 42, ok.Data)

	failed := Fail(Validation("ledger.transaction", "Amount must be positive"))
	require.False(t, failed.Success)
	assert.Equal(t, "Amount must be positive", failed.Msg)
	assert.ErrorIs(t, failed.Err, ErrValidation)
}
