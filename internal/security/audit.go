package security

import (
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
)

// AuditEntry is one recorded decision. Entries are append-only; other
// components only ever receive copies.
type AuditEntry struct {
	ID        uuid.UUID      `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	ActorID   string         `json:"actor_id,omitempty"`
	Action    string         `json:"action"`
	Details   map[string]any `json:"details,omitempty"`
	Approved  bool           `json:"approved"`
	Reason    string         `json:"reason,omitempty"`
}

// AuditLog is the append-only record of security decisions. All reads
// observe a consistent snapshot; no entry is ever mutated or deleted
// except by Clear.
type AuditLog struct {
	mu      sync.RWMutex
	entries []AuditEntry

	// sink, when set, additionally receives each entry as one JSON
	// line with credential redaction applied.
	sink io.Writer
}

// NewAuditLog creates an empty in-memory audit log.
func NewAuditLog() *AuditLog {
	return &AuditLog{}
}

// SetSink attaches a JSONL writer that mirrors every recorded entry.
func (l *AuditLog) SetSink(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sink = w
}

// Record appends one entry with a fresh id and the current timestamp.
// It never rejects a well-formed call.
func (l *AuditLog) Record(actorID, action string, details map[string]any, approved bool, reason string) AuditEntry {
	redacted := details
	if len(details) > 0 {
		redacted = make(map[string]any, len(details))
		for k, v := range details {
			if s, ok := v.(string); ok {
				redacted[k] = Redact(s)
			} else {
				redacted[k] = v
			}
		}
	}

	entry := AuditEntry{
		ID:        uuid.New(),
		Timestamp: time.Now().UTC(),
		ActorID:   actorID,
		Action:    Redact(action),
		Details:   redacted,
		Approved:  approved,
		Reason:    reason,
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	if l.sink != nil {
		if data, err := json.Marshal(entry); err == nil {
			l.sink.Write(append(data, '\n'))
		}
	}
	return entry
}

// All returns every entry in insertion order.
func (l *AuditLog) All() []AuditEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]AuditEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// ByActor returns the entries recorded for one actor, in order.
func (l *AuditLog) ByActor(actorID string) []AuditEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []AuditEntry
	for _, e := range l.entries {
		if e.ActorID == actorID {
			out = append(out, e)
		}
	}
	return out
}

// Denied returns the entries with Approved == false, in order.
func (l *AuditLog) Denied() []AuditEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []AuditEntry
	for _, e := range l.entries {
		if !e.Approved {
			out = append(out, e)
		}
	}
	return out
}

// Count returns the number of recorded entries.
func (l *AuditLog) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Clear destructively removes all entries.
func (l *AuditLog) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}
