package models

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ErrCloneFailed is returned when a template cannot be copied into an independent occurrence
var ErrCloneFailed = errors.New("clone new template failed")

// Template is a stored task or transaction definition that occurrences are derived from.
// It is implemented only by *Task and *Transaction.
type Template interface {
	// TemplateID returns the identifier shared by the template and all of its occurrences
	TemplateID() uuid.UUID
	// Rule returns the recurrence rule, empty for one-time templates
	Rule() string
	// Zone returns the IANA timezone identifier of the template
	Zone() string
	// Exclusions returns the serialized exclusion slots (completed or deleted)
	Exclusions() string
	// BaseDateTime returns the base date ("2006-01-02") and optional time ("15:04")
	BaseDateTime() (date, clock string)
	// CloneTemplate returns a deep copy of the template
	CloneTemplate() (Template, error)

	template()
}

// IsRecurring reports whether the template carries a recurrence rule
func IsRecurring(t Template) bool {
	return t != nil && strings.TrimSpace(t.Rule()) != ""
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneInts(in []int) []int {
	if in == nil {
		return nil
	}
	out := make([]int, len(in))
	copy(out, in)
	return out
}

func clonePtr[T any](in *T) *T {
	if in == nil {
		return nil
	}
	v := *in
	return &v
}
