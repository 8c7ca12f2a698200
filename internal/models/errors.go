package models

import "errors"

// Custom errors
var (
	ErrNotFound         = errors.New("record not found")
	ErrIncompleteRecord = errors.New("record is missing race_id or horse_id")
	ErrInvalidEntrant   = errors.New("invalid race entrant")
)
