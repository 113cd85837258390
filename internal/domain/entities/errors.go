package entities

import "errors"

var (
	ErrEmptyTitle      = errors.New("task title is required")
	ErrMissingOwner    = errors.New("task owner is required")
	ErrInvalidPriority = errors.New("priority must be High or Low")
)
