package costing

import (
	"errors"
	"fmt"
)

// Error classes. Every error the engine returns wraps one of them.
var (
	// ErrInvalidArgument marks a programming error in the caller.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConfiguration marks missing reference data the engine cannot price without.
	ErrConfiguration = errors.New("configuration error")
)

var (
	ErrUnknownProjectType  = fmt.Errorf("%w: unknown project type", ErrInvalidArgument)
	ErrUnsupportedCurrency = fmt.Errorf("%w: unsupported currency", ErrInvalidArgument)
	ErrLineItemsMismatch   = fmt.Errorf("%w: line items do not match project type", ErrInvalidArgument)
	ErrInvalidDraft        = fmt.Errorf("%w: invalid rate table draft", ErrInvalidArgument)
	ErrNoActiveRateTable   = fmt.Errorf("%w: no active rate table", ErrConfiguration)
)
