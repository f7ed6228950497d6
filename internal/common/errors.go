package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Local data that could not be decoded.
	ErrCorruptData = errors.New("corrupt local data")

	// Credential lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
)
