// Package store holds the console's record collections in memory.
package store

import "errors"

var (
	ErrNotFound         = errors.New("record not found")
	ErrDuplicate        = errors.New("record already exists")
	ErrInUse            = errors.New("record is still referenced")
	ErrInvalidRecord    = errors.New("invalid record")
	ErrInvalidRateTable = errors.New("invalid rate table")
	ErrVersionConflict  = errors.New("quotation version already exists")
)
