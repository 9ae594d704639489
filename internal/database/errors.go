package databaseerrors

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrAlreadyExists  = errors.New("already exists")
	ErrShortCodeTaken = errors.New("short code already taken")
)
