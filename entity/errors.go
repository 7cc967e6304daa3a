package entity

import "errors"

var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("an active ticket already exists for this user today")
	ErrNotFound   = errors.New("ticket not found")
)
