package services

import "fmt"

// ValidationError reports malformed input, e.g. an unknown notification type
// or delivery channel.
type ValidationError struct {
	Field string
	Value string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Field, e.Value)
}

// NotFoundError reports an operation targeting a record that does not exist.
type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// AuthorizationError reports an operation targeting a record the acting user
// does not own.
type AuthorizationError struct {
	Resource string
	ID       uint
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("%s %d is not owned by the acting user", e.Resource, e.ID)
}

// DeliveryError wraps an external channel failure. The delivery resolver logs
// it and records it on the dispatch result; it never reaches the event trigger.
type DeliveryError struct {
	Channel string
	Err     error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s delivery failed: %v", e.Channel, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }
