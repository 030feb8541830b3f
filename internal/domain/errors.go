package domain

import (
	"fmt"
	"strings"
)

// Error types shared by the engine, the stores and the HTTP layer.

// ConfigNotReadyMessage is the gate shown while any pricing configuration is missing.
const ConfigNotReadyMessage = "Carregando Configurações..."

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrValidation indicates a validation error (bad input).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrConfigNotReady indicates the pricing engine cannot be built because
// one or more configuration providers returned nothing.
type ErrConfigNotReady struct {
	Missing []string
}

func (e *ErrConfigNotReady) Error() string {
	if len(e.Missing) == 0 {
		return "pricing configuration not ready"
	}
	return "pricing configuration not ready: missing " + strings.Join(e.Missing, ", ")
}

// ErrInvalidTransition indicates a proposal status change that the
// status machine does not allow.
type ErrInvalidTransition struct {
	From string
	To   string
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("invalid status transition: %s -> %s", e.From, e.To)
}

// ErrConflict indicates a request clashes with the stored state of a
// resource, such as a duplicate key or an edit to a closed proposal.
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	return e.Message
}
