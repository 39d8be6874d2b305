// Package provider defines the LLM boundary the query proxy forwards to.
package provider

import (
	"context"
	"errors"
)

// ErrOverloaded reports that the upstream model is rate-limited or
// shedding load; callers surface it as a try-again-later condition.
var ErrOverloaded = errors.New("upstream model overloaded")

// Provider is the interface for LLM providers.
type Provider interface {
	// Prompt sends a prompt to the LLM and returns the response.
	Prompt(ctx context.Context, system, user string) (string, error)
}
