package model

import (
	"github.com/google/uuid"
)

// MessageType discriminates the payload of a bus Message. Consumers must
// treat unknown types as a no-op rather than an error so that newer
// publishers can coexist with older subscribers.
type MessageType string

const (
	MsgUserRequest        MessageType = "user_request"
	MsgDelegation         MessageType = "delegation"
	MsgResponse           MessageType = "response"
	MsgPermissionRequest  MessageType = "permission_request"
	MsgPermissionResponse MessageType = "permission_response"
	MsgSecurityAlert      MessageType = "security_alert"
	MsgSandboxRequest     MessageType = "sandbox_request"
	MsgArtifactApproval   MessageType = "artifact_approval"
	MsgStateChange        MessageType = "state_change"
)

// AlertSeverity grades a security alert.
type AlertSeverity string

const (
	SeverityInfo     AlertSeverity = "info"
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

// SuggestedAction is the responder hint attached to a security alert.
type SuggestedAction string

const (
	ActionAllow              SuggestedAction = "allow"
	ActionDeny               SuggestedAction = "deny"
	ActionLockdown           SuggestedAction = "lockdown"
	ActionRequestHumanReview SuggestedAction = "request_human_review"
)

// StateChangeKind names a system state transition mirrored over the bus.
type StateChangeKind string

const (
	StateLockdownTriggered StateChangeKind = "lockdown_triggered"
	StateLockdownReleased  StateChangeKind = "lockdown_released"
	StateBackendLoaded     StateChangeKind = "backend_loaded"
	StateBackendUnloaded   StateChangeKind = "backend_unloaded"
	StatePermissionGranted StateChangeKind = "permission_granted"
	StatePermissionDenied  StateChangeKind = "permission_denied"
)

// Message is the wire format of the message bus. Exactly one payload
// field is set, matching Type.
type Message struct {
	ID   uuid.UUID   `json:"id"`
	Type MessageType `json:"type"`

	UserRequest        *UserRequest        `json:"user_request,omitempty"`
	Delegation         *Delegation         `json:"delegation,omitempty"`
	Response           *Response           `json:"response,omitempty"`
	PermissionRequest  *PermissionRequest  `json:"permission_request,omitempty"`
	PermissionResponse *PermissionResponse `json:"permission_response,omitempty"`
	SecurityAlert      *SecurityAlert      `json:"security_alert,omitempty"`
	SandboxRequest     *SandboxRequest     `json:"sandbox_request,omitempty"`
	ArtifactApproval   *ArtifactApproval   `json:"artifact_approval,omitempty"`
	StateChange        *StateChange        `json:"state_change,omitempty"`
}

// UserRequest carries a raw user prompt into the system.
type UserRequest struct {
	Content string         `json:"content"`
	Context map[string]any `json:"context,omitempty"`
}

// Delegation asks the orchestrator (or a named backend) to take over a
// task. A nil To leaves target selection to the router.
type Delegation struct {
	From     string          `json:"from"`
	To       *string         `json:"to,omitempty"`
	Task     TaskDescription `json:"task"`
	Callback bool            `json:"callback"`
}

// Response is a backend's answer to an earlier request.
type Response struct {
	RequestID uuid.UUID      `json:"request_id"`
	BackendID string         `json:"backend_id"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// PermissionRequest asks the security engine for a privileged action.
type PermissionRequest struct {
	BackendID   string `json:"backend_id"`
	Kind        string `json:"kind"`
	Path        string `json:"path,omitempty"`
	Command     string `json:"command,omitempty"`
	URL         string `json:"url,omitempty"`
	Resource    string `json:"resource,omitempty"`
	Amount      float64 `json:"amount,omitempty"`
	Explanation string `json:"explanation"`
}

// PermissionResponse reports the decision for a permission request.
type PermissionResponse struct {
	RequestID uuid.UUID `json:"request_id"`
	Granted   bool      `json:"granted"`
	Reason    string    `json:"reason,omitempty"`
}

// SecurityAlert reports a detected threat with a suggested response.
type SecurityAlert struct {
	Severity        AlertSeverity   `json:"severity"`
	Reason          string          `json:"reason"`
	BackendID       string          `json:"backend_id,omitempty"`
	SuggestedAction SuggestedAction `json:"suggested_action"`
}

// SandboxRequest asks for an isolated execution environment.
type SandboxRequest struct {
	BackendID string `json:"backend_id"`
	Purpose   string `json:"purpose"`
}

// ArtifactApproval asks a human to approve moving a file out of a
// sandbox.
type ArtifactApproval struct {
	SandboxID   uuid.UUID `json:"sandbox_id"`
	FilePath    string    `json:"file_path"`
	Destination string    `json:"destination"`
	Explanation string    `json:"explanation"`
}

// StateChange mirrors a component state transition to all subscribers.
type StateChange struct {
	Kind StateChangeKind `json:"kind"`
	Data map[string]any  `json:"data,omitempty"`
}

// NewMessage builds a message envelope with a fresh id.
func NewMessage(t MessageType) Message {
	return Message{ID: uuid.New(), Type: t}
}

// NewUserRequest wraps a user prompt in a bus message.
func NewUserRequest(content string, context map[string]any) Message {
	m := NewMessage(MsgUserRequest)
	m.UserRequest = &UserRequest{Content: content, Context: context}
	return m
}

// NewDelegation wraps a delegation in a bus message.
func NewDelegation(from string, to *string, task TaskDescription, callback bool) Message {
	m := NewMessage(MsgDelegation)
	m.Delegation = &Delegation{From: from, To: to, Task: task, Callback: callback}
	return m
}

// NewSecurityAlert wraps an alert in a bus message.
func NewSecurityAlert(severity AlertSeverity, reason, backendID string, action SuggestedAction) Message {
	m := NewMessage(MsgSecurityAlert)
	m.SecurityAlert = &SecurityAlert{
		Severity:        severity,
		Reason:          reason,
		BackendID:       backendID,
		SuggestedAction: action,
	}
	return m
}

// NewStateChange wraps a state transition in a bus message.
func NewStateChange(kind StateChangeKind, data map[string]any) Message {
	m := NewMessage(MsgStateChange)
	m.StateChange = &StateChange{Kind: kind, Data: data}
	return m
}
