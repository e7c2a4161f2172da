package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/benvon/smart-journal/internal/ledger"
	"github.com/benvon/smart-journal/internal/models"
	"github.com/benvon/smart-journal/internal/recurrence"
	"github.com/go-playground/validator/v10"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	register := map[string]validator.Func{
		"timezone":         validateTimezone,
		"transaction_type": validateTransactionType,
		"summary_type":     validateSummaryType,
		"frequency":        validateFrequency,
	}
	for tag, fn := range register {
		if err := Validate.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("failed to register %s validator: %v", tag, err))
		}
	}
}

// validateTimezone accepts IANA timezone identifiers and "UTC"
func validateTimezone(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if strings.TrimSpace(value) == "" {
		return false
	}
	_, err := recurrence.LoadZone(value)
	return err == nil
}

func validateTransactionType(fl validator.FieldLevel) bool {
	switch models.TransactionType(fl.Field().String()) {
	case models.TransactionTypeIncome, models.TransactionTypeExpense:
		return true
	default:
		return false
	}
}

func validateSummaryType(fl validator.FieldLevel) bool {
	return ValidateSummaryType(fl.Field().String()) == nil
}

func validateFrequency(fl validator.FieldLevel) bool {
	return ValidateFrequency(fl.Field().String()) == nil
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateSummaryType validates a ledger summary type string value
func ValidateSummaryType(value string) error {
	switch ledger.SummaryType(value) {
	case ledger.SummaryTypeDefault, ledger.SummaryTypeLabel, ledger.SummaryTypePayer:
		return nil
	default:
		return fmt.Errorf("invalid summary type: %s (must be 'DEFAULT', 'LABEL', or 'PAYER')", value)
	}
}

// ValidateFrequency validates a ledger frequency string value
func ValidateFrequency(value string) error {
	switch ledger.FrequencyType(value) {
	case ledger.FrequencyWeekly, ledger.FrequencyMonthly, ledger.FrequencyYearly:
		return nil
	default:
		return fmt.Errorf("invalid frequency: %s (must be 'WEEKLY', 'MONTHLY', or 'YEARLY')", value)
	}
}

// ValidateTemplate validates a task or transaction template with the shared validator
func ValidateTemplate(tmpl models.Template) error {
	if err := Validate.Struct(tmpl); err != nil {
		return fmt.Errorf("invalid template %s: %w", tmpl.TemplateID(), err)
	}
	return nil
}
