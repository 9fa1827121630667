package domain

import (
	"errors"
	"fmt"
)

var (
	ErrAgentNotFound  = errors.New("agent not found")
	ErrCorruptedStore = errors.New("corrupted store record")
	ErrKeyNotFound    = errors.New("key not found")
	ErrSecretNotFound = errors.New("secret not found")
	ErrValidation     = errors.New("validation failed")
	ErrReplyStatus    = errors.New("reply service returned an error status")
	ErrReplyPending   = errors.New("a reply is already pending for this agent")
	ErrEmptyMessage   = errors.New("message is empty")
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// ReplyStatusError reports a non-success HTTP status from a reply provider.
type ReplyStatusError struct {
	StatusCode int
	Body       string
}

func (e *ReplyStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("reply status %d", e.StatusCode)
	}
	return fmt.Sprintf("reply status %d: %s", e.StatusCode, e.Body)
}

func (e *ReplyStatusError) Unwrap() error {
	return ErrReplyStatus
}
