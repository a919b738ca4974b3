// Package orchestrator runs the event loop tying the security engine,
// the router and the backend pool together over the message bus.
package orchestrator

import (
	"context"
	"log/slog"

	"github.com/gzhole/llmgate/internal/bus"
	"github.com/gzhole/llmgate/internal/model"
	"github.com/gzhole/llmgate/internal/router"
	"github.com/gzhole/llmgate/internal/security"
)

// Orchestrator consumes bus messages and dispatches them against the
// policy and routing components. It is a single logical event loop;
// all shared state lives in the injected components, never in globals.
type Orchestrator struct {
	bus    *bus.Bus
	router *router.Router
	engine *security.Engine
	log    *slog.Logger

	// onUserRequest is the classification hook for raw user prompts.
	// The default routes nothing and only records receipt.
	onUserRequest func(model.UserRequest)
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the diagnostic logger.
func WithLogger(log *slog.Logger) Option {
	return func(o *Orchestrator) { o.log = log }
}

// WithUserRequestHook installs a handler for incoming user requests.
func WithUserRequestHook(fn func(model.UserRequest)) Option {
	return func(o *Orchestrator) { o.onUserRequest = fn }
}

// New wires an orchestrator to its collaborators.
func New(b *bus.Bus, r *router.Router, engine *security.Engine, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		bus:    b,
		router: r,
		engine: engine,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run subscribes to the bus and processes messages until the context
// is canceled.
func (o *Orchestrator) Run(ctx context.Context) error {
	sub := o.bus.Subscribe()
	defer sub.Cancel()

	o.log.Info("orchestrator event loop started")
	for {
		select {
		case <-ctx.Done():
			o.log.Info("orchestrator event loop stopped")
			return ctx.Err()
		case msg, ok := <-sub.C():
			if !ok {
				return nil
			}
			o.handle(msg)
		}
	}
}

// handle dispatches one message. When the system is Locked everything
// is rejected silently; the lockdown itself is already audited.
func (o *Orchestrator) handle(msg model.Message) {
	if o.engine.State() == security.StateLocked {
		o.log.Debug("system locked, rejecting message", "type", msg.Type, "id", msg.ID)
		return
	}

	switch msg.Type {
	case model.MsgUserRequest:
		o.handleUserRequest(msg)
	case model.MsgDelegation:
		o.handleDelegation(msg)
	case model.MsgPermissionRequest:
		o.handlePermissionRequest(msg)
	case model.MsgSecurityAlert:
		o.handleSecurityAlert(msg)
	case model.MsgStateChange:
		o.handleStateChange(msg)
	default:
		// Unknown or unhandled message types pass through so newer
		// publishers can coexist with this consumer.
		o.log.Debug("passing through message", "type", msg.Type, "id", msg.ID)
	}
}

func (o *Orchestrator) handleUserRequest(msg model.Message) {
	if msg.UserRequest == nil {
		return
	}
	o.log.Info("user request received", "id", msg.ID)
	if o.onUserRequest != nil {
		o.onUserRequest(*msg.UserRequest)
	}
}

func (o *Orchestrator) handleDelegation(msg model.Message) {
	d := msg.Delegation
	if d == nil {
		return
	}

	target := ""
	if d.To != nil {
		target = *d.To
	} else {
		routed, err := o.router.RouteTask(d.Task)
		if err != nil {
			o.log.Warn("delegation could not be routed",
				"from", d.From, "task_type", d.Task.Type, "error", err)
			return
		}
		target = routed
	}

	o.log.Info("delegation routed", "from", d.From, "to", target,
		"task_type", d.Task.Type, "callback", d.Callback)
}

// handlePermissionRequest evaluates a bus-borne permission request and
// publishes the decision back as a PermissionResponse.
func (o *Orchestrator) handlePermissionRequest(msg model.Message) {
	p := msg.PermissionRequest
	if p == nil {
		return
	}

	req, ok := toSecurityRequest(p)
	if !ok {
		o.log.Warn("unrecognized permission request kind", "kind", p.Kind)
		return
	}

	granted := o.engine.CheckPermission(p.BackendID, req, p.Explanation)

	resp := model.NewMessage(model.MsgPermissionResponse)
	resp.PermissionResponse = &model.PermissionResponse{
		RequestID: msg.ID,
		Granted:   granted,
	}
	if !granted {
		resp.PermissionResponse.Reason = "request refused"
	}
	if err := o.bus.Publish(resp); err != nil {
		o.log.Warn("could not publish permission response", "error", err)
	}
}

func (o *Orchestrator) handleSecurityAlert(msg model.Message) {
	alert := msg.SecurityAlert
	if alert == nil {
		return
	}

	o.log.Error("security alert", "severity", alert.Severity,
		"reason", alert.Reason, "backend", alert.BackendID)

	switch alert.SuggestedAction {
	case model.ActionLockdown:
		o.engine.TriggerLockdown(security.PolicyViolation{Details: alert.Reason})
	case model.ActionRequestHumanReview:
		// External review surfaces are out of scope; the alert is
		// logged for whoever watches the diagnostic stream.
		o.log.Warn("human review requested", "reason", alert.Reason)
	}
}

func (o *Orchestrator) handleStateChange(msg model.Message) {
	sc := msg.StateChange
	if sc == nil {
		return
	}

	switch sc.Kind {
	case model.StateLockdownTriggered:
		// Idempotent when already locked; the transition is audited
		// either way.
		o.engine.TriggerLockdown(security.PolicyViolation{
			Details: "lockdown mirrored from bus state change",
		})
	case model.StateLockdownReleased:
		// Release requires an authenticated token and cannot be
		// mirrored from an unauthenticated bus message.
		o.log.Info("lockdown release observed on bus; awaiting authenticated release")
	case model.StateBackendLoaded:
		if id, ok := sc.Data["backend_id"].(string); ok {
			o.router.SetLoaded(id, true)
		}
	case model.StateBackendUnloaded:
		if id, ok := sc.Data["backend_id"].(string); ok {
			o.router.SetLoaded(id, false)
		}
	}
}

// toSecurityRequest converts the wire representation into the engine's
// request union.
func toSecurityRequest(p *model.PermissionRequest) (security.Request, bool) {
	switch p.Kind {
	case "file_read":
		return security.FileRead{Path: p.Path}, true
	case "file_write":
		return security.FileWrite{Path: p.Path}, true
	case "file_execute":
		return security.FileExecute{Path: p.Path}, true
	case "command":
		return security.Command{Command: p.Command}, true
	case "network_access":
		return security.NetworkAccess{URL: p.URL}, true
	case "resource_increase":
		return security.ResourceIncrease{Resource: p.Resource, Amount: p.Amount}, true
	default:
		return nil, false
	}
}
