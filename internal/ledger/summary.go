package ledger

import (
	"context"
	"sort"
	"time"

	"expense_tracker/internal/domain"

	"github.com/shopspring/decimal"
)

// Period bounds the transactions a Summary looks at.
type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
	PeriodAll   Period = "all"
)

// ParsePeriod maps a query value to a Period; empty means month.
func ParsePeriod(value string) (Period, error) {
	switch Period(value) {
	case "":
		return PeriodMonth, nil
	case PeriodWeek, PeriodMonth, PeriodYear, PeriodAll:
		return Period(value), nil
	}
	return "", domain.Validation("ledger.summary", "Period must be week, month, year or all")
}

func (p Period) since(now time.Time) time.Time {
	switch p {
	case PeriodWeek:
		return now.AddDate(0, 0, -7)
	case PeriodMonth:
		return now.AddDate(0, -1, 0)
	case PeriodYear:
		return now.AddDate(-1, 0, 0)
	}
	return time.Time{}
}

const (
	topCategoryCount = 5
	recentCount      = 5
)

// CategoryTotal is the expense total of one category.
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// Summary aggregates a user's wallets and transactions.
type Summary struct {
	Period         Period               `json:"period"`
	TotalBalance   decimal.Decimal      `json:"totalBalance"`
	TotalIncome    decimal.Decimal      `json:"totalIncome"`
	TotalExpenses  decimal.Decimal      `json:"totalExpenses"`
	CategoryTotals []CategoryTotal      `json:"categoryTotals"`
	TopCategories  []CategoryTotal      `json:"topCategories"`
	Recent         []domain.Transaction `json:"recent"`
}

// Summary totals the balance over all wallets and income, expenses and
// expense categories over the period's transactions.
func (s *Service) Summary(ctx context.Context, uid string, period Period) (Summary, error) {
	if uid == "" {
		return Summary{}, domain.Validation("ledger.summary", "User id is required")
	}
	wallets, err := s.store.ListWallets(ctx, domain.WalletQuery{UID: uid})
	if err != nil {
		return Summary{}, err
	}
	transactions, err := s.store.ListTransactions(ctx, domain.TransactionQuery{UID: uid, Since: period.since(s.now().UTC())})
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		Period:         period,
		TotalBalance:   decimal.Zero,
		TotalIncome:    decimal.Zero,
		TotalExpenses:  decimal.Zero,
		CategoryTotals: []CategoryTotal{},
		Recent:         []domain.Transaction{},
	}
	for _, wallet := range wallets {
		summary.TotalBalance = summary.TotalBalance.Add(wallet.Amount)
	}

	byCategory := map[string]decimal.Decimal{}
	for _, transaction := range transactions {
		if transaction.Type == domain.TypeIncome {
			summary.TotalIncome = summary.TotalIncome.Add(transaction.Amount)
			continue
		}
		summary.TotalExpenses = summary.TotalExpenses.Add(transaction.Amount)
		if transaction.Category != "" {
			byCategory[transaction.Category] = byCategory[transaction.Category].Add(transaction.Amount)
		}
	}
	for category, total := range byCategory {
		summary.CategoryTotals = append(summary.CategoryTotals, CategoryTotal{Category: category, Total: total})
	}
	sort.Slice(summary.CategoryTotals, func(i, j int) bool {
		a, b := summary.CategoryTotals[i], summary.CategoryTotals[j]
		if cmp := a.Total.Cmp(b.Total); cmp != 0 {
			return cmp > 0
		}
		return a.Category < b.Category
	})
	summary.TopCategories = summary.CategoryTotals[:min(topCategoryCount, len(summary.CategoryTotals))]
	summary.Recent = append(summary.Recent, transactions[:min(recentCount, len(transactions))]...)
	return summary, nil
}
