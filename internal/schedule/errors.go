package schedule

import (
	"errors"

	"github.com/benvon/smart-journal/internal/models"
	"github.com/benvon/smart-journal/internal/recurrence"
)

var (
	// ErrMissingRecurrenceRule is returned when a one-time template is materialized
	ErrMissingRecurrenceRule = errors.New("template does not have a recurrence rule")
	// ErrCloneFailed is returned when an occurrence cannot be copied from its template
	ErrCloneFailed = models.ErrCloneFailed
	// ErrInvalidRuleFormat is matched by malformed recurrence rules
	ErrInvalidRuleFormat = recurrence.ErrInvalidRuleFormat
)
