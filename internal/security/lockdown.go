package security

import "fmt"

// LockdownState is the process-wide operating mode. Normal permits all
// checks, ReadOnly permits file reads only, Locked denies everything.
type LockdownState string

const (
	StateNormal   LockdownState = "normal"
	StateReadOnly LockdownState = "read_only"
	StateLocked   LockdownState = "locked"
)

// Reason explains why a lockdown was triggered. It is attached to the
// triggering audit entry only and not retained anywhere else.
type Reason interface {
	fmt.Stringer

	sealedReason()
}

// PolicyViolation marks a direct violation of configured policy.
type PolicyViolation struct {
	Details string
}

// SuspiciousPattern marks a guardrail pattern detection.
type SuspiciousPattern struct {
	Pattern string
}

// ResourceExceeded marks a resource running past its limit.
type ResourceExceeded struct {
	Resource string
	Limit    float64
	Actual   float64
}

// UserPanicButton marks an operator-initiated emergency stop.
type UserPanicButton struct{}

// MultipleFailedRequests marks escalation after repeated denials.
type MultipleFailedRequests struct {
	Count int
}

func (PolicyViolation) sealedReason()        {}
func (SuspiciousPattern) sealedReason()      {}
func (ResourceExceeded) sealedReason()       {}
func (UserPanicButton) sealedReason()        {}
func (MultipleFailedRequests) sealedReason() {}

func (r PolicyViolation) String() string {
	return fmt.Sprintf("policy violation: %s", r.Details)
}

func (r SuspiciousPattern) String() string {
	return fmt.Sprintf("suspicious pattern: %s", r.Pattern)
}

func (r ResourceExceeded) String() string {
	return fmt.Sprintf("resource exceeded: %s (limit %.1f, actual %.1f)",
		r.Resource, r.Limit, r.Actual)
}

func (UserPanicButton) String() string { return "user panic button" }

func (r MultipleFailedRequests) String() string {
	return fmt.Sprintf("multiple failed requests: %d", r.Count)
}
