package errors

import (
	"errors"
	"fmt"
)

// This package defines the centralized error taxonomy for the application.
// Services return these sentinels (or types matching them via errors.Is) so
// that callers can branch on the failure class without being coupled to the
// storage or transport implementation. The API layer maps them to HTTP
// status codes; no layer in between is allowed to collapse them into a
// generic failure string.

var (
	// ErrNotFound signifies that a referenced conversation or message does
	// not exist. It is always surfaced, never treated as success.
	ErrNotFound = errors.New("resource not found")

	// ErrValidation signifies malformed input: a bad role, an empty required
	// field, an unknown chat mode.
	ErrValidation = errors.New("validation failed")

	// ErrConversationLocked signifies a rejected bot change on a conversation
	// that already has user messages. The concrete error is always a
	// *LockedConversationError; this sentinel exists for errors.Is checks.
	ErrConversationLocked = errors.New("conversation locked")

	// ErrStorage signifies that the underlying storage medium is unreachable
	// or corrupt. Fatal for the current operation, never retried here.
	ErrStorage = errors.New("storage unavailable")

	// ErrAuthentication signifies a missing or rejected Poe API key.
	// Fatal and never retried.
	ErrAuthentication = errors.New("authentication failed")

	// ErrRateLimited signifies the provider refused the request due to rate
	// limiting. Surfaced as-is; retry policy belongs to the caller.
	ErrRateLimited = errors.New("rate limited")

	// ErrQuotaExceeded signifies insufficient credits or an exhausted quota
	// on the Poe account.
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrTransport signifies a network failure before or during streaming.
	// Fragments already delivered stay delivered; nothing further is persisted.
	ErrTransport = errors.New("transport failure")

	// ErrInternal is the generic fallback for unexpected server-side errors.
	ErrInternal = errors.New("internal server error")
)

// LockedConversationError reports a bot-lock violation with enough detail for
// a front end to render a precise message: the bot the conversation is bound
// to and how many user messages already exist.
type LockedConversationError struct {
	ConversationID string
	BotName        string
	UserMessages   int
}

func (e *LockedConversationError) Error() string {
	return fmt.Sprintf(
		"cannot change bot mid-conversation: conversation %s is locked to %s (%d user messages)",
		e.ConversationID, e.BotName, e.UserMessages,
	)
}

// Is makes errors.Is(err, ErrConversationLocked) match.
func (e *LockedConversationError) Is(target error) bool {
	return target == ErrConversationLocked
}
