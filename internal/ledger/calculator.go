package ledger

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/benvon/smart-journal/internal/models"
	"github.com/benvon/smart-journal/internal/recurrence"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidSummaryType is returned for an unknown grouping
	ErrInvalidSummaryType = errors.New("invalid ledger summary type")
	// ErrInvalidFrequency is returned for an unknown calendar bucket size
	ErrInvalidFrequency = errors.New("invalid frequency type")
)

const percentPlaces = 2

var hundred = decimal.NewFromInt(100)

type group struct {
	meta         string
	income       decimal.Decimal
	expense      decimal.Decimal
	incomeCount  int
	expenseCount int
}

func (g *group) add(t *models.Transaction) {
	switch t.TransactionType {
	case models.TransactionTypeIncome:
		g.income = g.income.Add(t.Amount)
		g.incomeCount++
	case models.TransactionTypeExpense:
		g.expense = g.expense.Add(t.Amount)
		g.expenseCount++
	}
}

// bucketFunc returns the group names (and sort keys) a transaction contributes to
type bucketFunc func(t *models.Transaction) ([]bucket, error)

type bucket struct {
	name string
	meta string
}

// Calculate groups transaction occurrences and computes totals and percentages.
// DEFAULT groups are ordered by their period key, LABEL and PAYER groups by name.
func Calculate(req SummaryRequest) (*Summary, error) {
	buckets, err := bucketsFor(req)
	if err != nil {
		return nil, err
	}

	groups := make(map[string]*group)
	var totalIncome, totalExpense decimal.Decimal
	for _, t := range req.Transactions {
		if t == nil {
			continue
		}
		keys, err := buckets(t)
		if err != nil {
			return nil, fmt.Errorf("failed to group transaction %s: %w", t.ID, err)
		}
		for _, b := range keys {
			g, ok := groups[b.name]
			if !ok {
				g = &group{}
				groups[b.name] = g
			}
			g.meta = b.meta
			g.add(t)
		}

		switch t.TransactionType {
		case models.TransactionTypeIncome:
			totalIncome = totalIncome.Add(t.Amount)
		case models.TransactionTypeExpense:
			totalExpense = totalExpense.Add(t.Amount)
		}
	}

	balance := totalIncome.Sub(totalExpense)
	summaries := make([]GroupSummary, 0, len(groups))
	for name, g := range groups {
		groupBalance := g.income.Sub(g.expense)
		summaries = append(summaries, GroupSummary{
			Name:              name,
			Metadata:          g.meta,
			Income:            g.income,
			IncomePercentage:  percentage(g.income, totalIncome),
			Expense:           g.expense,
			ExpensePercentage: percentage(g.expense, totalExpense),
			Balance:           groupBalance,
			BalancePercentage: percentage(groupBalance, balance),
			IncomeCount:       g.incomeCount,
			ExpenseCount:      g.expenseCount,
		})
	}

	byMeta := req.Type == SummaryTypeDefault
	sort.SliceStable(summaries, func(i, j int) bool {
		if byMeta && summaries[i].Metadata != summaries[j].Metadata {
			return summaries[i].Metadata < summaries[j].Metadata
		}
		return summaries[i].Name < summaries[j].Name
	})

	return &Summary{
		StartDate:    recurrence.FormatDate(req.Start),
		EndDate:      recurrence.FormatDate(req.End),
		Income:       totalIncome,
		Expense:      totalExpense,
		Balance:      balance,
		Groups:       summaries,
		Transactions: req.Transactions,
	}, nil
}

// percentage returns part/total*100 rounded to 2 places, and zero when total is zero
func percentage(part, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return part.Mul(hundred).Div(total).Round(percentPlaces)
}

func bucketsFor(req SummaryRequest) (bucketFunc, error) {
	switch req.Type {
	case SummaryTypeDefault:
		period, err := periodFor(req.Frequency)
		if err != nil {
			return nil, err
		}
		return func(t *models.Transaction) ([]bucket, error) {
			at, err := localDate(t)
			if err != nil {
				return nil, err
			}
			name, meta := period(at)
			return []bucket{{name: name, meta: meta}}, nil
		}, nil
	case SummaryTypeLabel:
		return func(t *models.Transaction) ([]bucket, error) {
			out := make([]bucket, 0, len(t.Labels))
			for _, label := range t.Labels {
				out = append(out, bucket{name: label})
			}
			return out, nil
		}, nil
	case SummaryTypePayer:
		return func(t *models.Transaction) ([]bucket, error) {
			return []bucket{{name: t.Payer}}, nil
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidSummaryType, req.Type)
	}
}

func periodFor(f FrequencyType) (func(time.Time) (name, meta string), error) {
	switch f {
	case FrequencyWeekly:
		return weekPeriod, nil
	case FrequencyMonthly:
		return func(t time.Time) (string, string) {
			return t.Format("Jan 2006"), t.Format("2006-01")
		}, nil
	case FrequencyYearly:
		return func(t time.Time) (string, string) {
			return t.Format("2006"), t.Format("2006")
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidFrequency, f)
	}
}

// weekPeriod names the ISO week (Monday to Sunday) containing t
func weekPeriod(t time.Time) (string, string) {
	year, week := t.ISOWeek()
	offset := (int(t.Weekday()) + 6) % 7
	monday := time.Date(t.Year(), t.Month(), t.Day()-offset, 0, 0, 0, 0, t.Location())
	sunday := monday.AddDate(0, 0, 6)
	name := fmt.Sprintf("%s - %s", monday.Format("Jan 02"), sunday.Format("Jan 02, 2006"))
	return name, fmt.Sprintf("%04d-W%02d", year, week)
}

// localDate returns the date of a transaction occurrence in its own timezone
func localDate(t *models.Transaction) (time.Time, error) {
	loc, err := recurrence.LoadZone(t.Timezone)
	if err != nil {
		return time.Time{}, err
	}
	if t.Date != "" {
		return recurrence.StartInstant(t.Date, "", loc)
	}
	if t.StartTime != nil {
		return t.StartTime.In(loc), nil
	}
	return time.Time{}, fmt.Errorf("transaction %s has no date", t.ID)
}
