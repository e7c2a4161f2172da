package ledger

import (
	"time"

	"github.com/benvon/smart-journal/internal/models"
	"github.com/shopspring/decimal"
)

// SummaryType selects how transactions are grouped
type SummaryType string

const (
	SummaryTypeDefault SummaryType = "DEFAULT"
	SummaryTypeLabel   SummaryType = "LABEL"
	SummaryTypePayer   SummaryType = "PAYER"
)

// FrequencyType selects the calendar bucket of a DEFAULT summary
type FrequencyType string

const (
	FrequencyWeekly  FrequencyType = "WEEKLY"
	FrequencyMonthly FrequencyType = "MONTHLY"
	FrequencyYearly  FrequencyType = "YEARLY"
)

// SummaryRequest holds already expanded transactions and the window they were expanded for
type SummaryRequest struct {
	Type         SummaryType           `json:"type" validate:"required,summary_type"`
	Frequency    FrequencyType         `json:"frequency,omitempty" validate:"omitempty,frequency"`
	Start        time.Time             `json:"start"`
	End          time.Time             `json:"end"`
	Transactions []*models.Transaction `json:"-"`
}

// GroupSummary holds the totals of one group
type GroupSummary struct {
	Name              string          `json:"name"`
	Metadata          string          `json:"metadata,omitempty"`
	Income            decimal.Decimal `json:"income"`
	IncomePercentage  decimal.Decimal `json:"income_percentage"`
	Expense           decimal.Decimal `json:"expense"`
	ExpensePercentage decimal.Decimal `json:"expense_percentage"`
	Balance           decimal.Decimal `json:"balance"`
	BalancePercentage decimal.Decimal `json:"balance_percentage"`
	IncomeCount       int             `json:"income_count"`
	ExpenseCount      int             `json:"expense_count"`
}

// Summary is the result of Calculate
type Summary struct {
	StartDate    string                `json:"start_date"`
	EndDate      string                `json:"end_date"`
	Income       decimal.Decimal       `json:"income"`
	Expense      decimal.Decimal       `json:"expense"`
	Balance      decimal.Decimal       `json:"balance"`
	Groups       []GroupSummary        `json:"transactions_summaries"`
	Transactions []*models.Transaction `json:"transactions"`
}
