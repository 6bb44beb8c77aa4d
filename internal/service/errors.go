package service

import "errors"

// Not-found and forbidden are distinct conditions: handlers map them to
// different HTTP statuses.
var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	ErrInvalid   = errors.New("invalid input")
)
