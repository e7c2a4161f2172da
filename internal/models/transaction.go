package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the direction of money in a ledger transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "INCOME"
	TransactionTypeExpense TransactionType = "EXPENSE"
)

// Transaction represents a ledger transaction template or one of its occurrences
type Transaction struct {
	ID              uuid.UUID       `json:"id" yaml:"id"`
	Owner           string          `json:"owner" yaml:"owner" validate:"required"`
	Name            string          `json:"name" yaml:"name" validate:"required,max=500"`
	Payer           string          `json:"payer" yaml:"payer"`
	Labels          []string        `json:"labels,omitempty" yaml:"labels,omitempty"`
	Amount          decimal.Decimal `json:"amount" yaml:"amount"`
	TransactionType TransactionType `json:"transaction_type" yaml:"transaction_type" validate:"required,transaction_type"`
	Date            string          `json:"date,omitempty" yaml:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Time            string          `json:"time,omitempty" yaml:"time,omitempty" validate:"omitempty,datetime=15:04"`
	Timezone        string          `json:"timezone" yaml:"timezone" validate:"required,timezone"`
	RecurrenceRule  string          `json:"recurrence_rule,omitempty" yaml:"recurrence_rule,omitempty"`
	DeletedSlots    string          `json:"deleted_slots,omitempty" yaml:"deleted_slots,omitempty"`
	StartTime       *time.Time      `json:"start_time,omitempty" yaml:"start_time,omitempty"`
	EndTime         *time.Time      `json:"end_time,omitempty" yaml:"end_time,omitempty"`
	Location        string          `json:"location,omitempty" yaml:"location,omitempty"`
	CreatedAt       time.Time       `json:"created_at" yaml:"created_at,omitempty"`
	UpdatedAt       time.Time       `json:"updated_at" yaml:"updated_at,omitempty"`
}

func (t *Transaction) template() {}

// TemplateID implements Template
func (t *Transaction) TemplateID() uuid.UUID { return t.ID }

// Rule implements Template
func (t *Transaction) Rule() string { return t.RecurrenceRule }

// Zone implements Template
func (t *Transaction) Zone() string { return t.Timezone }

// Exclusions implements Template
func (t *Transaction) Exclusions() string { return t.DeletedSlots }

// BaseDateTime implements Template
func (t *Transaction) BaseDateTime() (string, string) { return t.Date, t.Time }

// CloneTemplate implements Template
func (t *Transaction) CloneTemplate() (Template, error) {
	c, err := t.Clone()
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Clone builds a new transaction field by field so that no slice or pointer is shared with t
func (t *Transaction) Clone() (*Transaction, error) {
	if t == nil {
		return nil, ErrCloneFailed
	}
	return &Transaction{
		ID:              t.ID,
		Owner:           t.Owner,
		Name:            t.Name,
		Payer:           t.Payer,
		Labels:          cloneStrings(t.Labels),
		Amount:          t.Amount,
		TransactionType: t.TransactionType,
		Date:            t.Date,
		Time:            t.Time,
		Timezone:        t.Timezone,
		RecurrenceRule:  t.RecurrenceRule,
		DeletedSlots:    t.DeletedSlots,
		StartTime:       clonePtr(t.StartTime),
		EndTime:         clonePtr(t.EndTime),
		Location:        t.Location,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}, nil
}

// IsIncome reports whether the transaction adds money
func (t *Transaction) IsIncome() bool {
	return t.TransactionType == TransactionTypeIncome
}
