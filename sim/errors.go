package sim

import (
	"errors"
	"fmt"
)

var (
	ErrMissingRule      = errors.New("at least one position sizing rule is required")
	ErrInvalidRuleRange = errors.New("invalid rule price range")
	ErrInvalidRuleSize  = errors.New("rule size must be positive and a multiple of 0.1")
	ErrMalformedRule    = errors.New("rule row is incomplete or not numeric")
	ErrInvalidParameter = errors.New("invalid simulation parameter")
	ErrTooManySteps     = errors.New("price sweep exceeds the step limit")
)

// ValidationError describes the first violation found in the simulation
// inputs. Rule is the 1-based row number for rule errors and 0 otherwise.
type ValidationError struct {
	Err    error
	Rule   int
	Field  string
	Detail string
}

func (e *ValidationError) Error() string {
	msg := e.Err.Error()
	switch {
	case e.Rule > 0 && e.Field != "":
		msg = fmt.Sprintf("rule %d: %s: %s", e.Rule, e.Field, msg)
	case e.Rule > 0:
		msg = fmt.Sprintf("rule %d: %s", e.Rule, msg)
	case e.Field != "":
		msg = fmt.Sprintf("%s: %s", e.Field, msg)
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

func (e *ValidationError) Unwrap() error { return e.Err }

func ruleError(err error, row int, field, detail string) error {
	return &ValidationError{Err: err, Rule: row, Field: field, Detail: detail}
}

func paramError(field, detail string) error {
	return &ValidationError{Err: ErrInvalidParameter, Field: field, Detail: detail}
}
