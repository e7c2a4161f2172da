package recurrence

import (
	"errors"
	"fmt"
)

// ErrInvalidRuleFormat is matched by every rule parsing failure
var ErrInvalidRuleFormat = errors.New("recurrence rule format invalid")

// ErrInvalidTimezone is returned for an unknown IANA zone name
var ErrInvalidTimezone = errors.New("invalid timezone")

// InvalidRuleError reports a malformed recurrence rule and the parser's reason
type InvalidRuleError struct {
	Rule string
	Err  error
}

func (e *InvalidRuleError) Error() string {
	if e.Err == nil {
		return ErrInvalidRuleFormat.Error()
	}
	return fmt.Sprintf("%s: %v", ErrInvalidRuleFormat.Error(), e.Err)
}

// Is makes errors.Is(err, ErrInvalidRuleFormat) hold for any InvalidRuleError
func (e *InvalidRuleError) Is(target error) bool {
	return target == ErrInvalidRuleFormat
}

func (e *InvalidRuleError) Unwrap() error {
	return e.Err
}

func invalidRule(rule string, format string, args ...any) error {
	return &InvalidRuleError{Rule: rule, Err: fmt.Errorf(format, args...)}
}
