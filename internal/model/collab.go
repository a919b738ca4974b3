package model

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNotFound is returned for lookups of unknown backend or actor ids.
var ErrNotFound = errors.New("not found")

// Provider is the inference adapter for one backend instance. Adapters
// live outside the coordination core; the pool only drives them through
// this interface.
type Provider interface {
	// Complete sends a prompt (plus optional context values) to the
	// backend and returns the completion text.
	Complete(ctx context.Context, prompt string, contextMap map[string]any) (string, error)

	// HealthCheck reports whether the backend is reachable.
	HealthCheck(ctx context.Context) bool

	// Load and Unload are idempotent and may be no-ops for
	// always-available backends.
	Load(ctx context.Context) error
	Unload(ctx context.Context) error
}

// ContextStore persists conversation history and key-value context.
type ContextStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	AppendMessage(ctx context.Context, conversationID uuid.UUID, msg ConversationMessage) error
	Conversation(ctx context.Context, conversationID uuid.UUID) ([]ConversationMessage, error)
}

// ConversationMessage is one turn in a stored conversation.
type ConversationMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Sandbox manages isolated execution environments by opaque id.
type Sandbox interface {
	Create(ctx context.Context, config SandboxConfig) (uuid.UUID, error)
	Destroy(ctx context.Context, id uuid.UUID) error
	Execute(ctx context.Context, id uuid.UUID, command string) (string, error)
	Snapshot(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	Restore(ctx context.Context, snapshotID uuid.UUID) (uuid.UUID, error)
}

// SandboxConfig bounds what a sandbox may consume.
type SandboxConfig struct {
	NetworkEnabled  bool     `json:"network_enabled" yaml:"network_enabled"`
	CPULimit        float64  `json:"cpu_limit" yaml:"cpu_limit"`
	MemoryLimitGB   float64  `json:"memory_limit_gb" yaml:"memory_limit_gb"`
	DiskLimitGB     float64  `json:"disk_limit_gb" yaml:"disk_limit_gb"`
	AllowedCommands []string `json:"allowed_commands" yaml:"allowed_commands"`
}

// NetworkError marks a provider failure caused by transport, not by the
// provider itself.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ProviderError marks a failure reported by the backend provider.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
