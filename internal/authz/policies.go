package authz

import (
	"context"

	identitydomain "github.com/crewbase/crewbase/internal/identity/domain"
	"github.com/crewbase/crewbase/internal/resource"
)

// Resource-state gates. These are extra necessary conditions layered on
// top of the permission check, never substitutes for it: resource state is
// tested before any permission lookup, so a terminal-state resource is
// immune even to the owner or a platform admin.

// CanUpdatePayment denies for refunded payments regardless of role or
// ownership.
func (e *Engine) CanUpdatePayment(ctx context.Context, user *identitydomain.User, p *resource.Payment) bool {
	if p == nil {
		return false
	}
	if p.Status == resource.PaymentRefunded {
		observeDecision(deny(ReasonTerminalState))
		return false
	}
	return e.CanOnResource(ctx, user, p, "payment.update")
}

// CanRefundPayment denies for payments already refunded.
func (e *Engine) CanRefundPayment(ctx context.Context, user *identitydomain.User, p *resource.Payment) bool {
	if p == nil {
		return false
	}
	if p.Status == resource.PaymentRefunded {
		observeDecision(deny(ReasonTerminalState))
		return false
	}
	return e.CanOnResource(ctx, user, p, "payment.refund")
}

// CanReinstatePayment permits only when the payment is in the refunded
// state; the symmetric counterpart of the terminal-state immunity.
func (e *Engine) CanReinstatePayment(ctx context.Context, user *identitydomain.User, p *resource.Payment) bool {
	if p == nil {
		return false
	}
	if p.Status != resource.PaymentRefunded {
		observeDecision(deny(ReasonStateMismatch))
		return false
	}
	return e.CanOnResource(ctx, user, p, "payment.reinstate")
}

// CanUpdateSale excludes cancelled sales from otherwise-permitted updates.
func (e *Engine) CanUpdateSale(ctx context.Context, user *identitydomain.User, s *resource.Sale) bool {
	if s == nil {
		return false
	}
	if s.Status == resource.SaleCancelled {
		observeDecision(deny(ReasonTerminalState))
		return false
	}
	return e.CanOnResource(ctx, user, s, "sale.update")
}

// CanCancelSale excludes sales already cancelled.
func (e *Engine) CanCancelSale(ctx context.Context, user *identitydomain.User, s *resource.Sale) bool {
	if s == nil {
		return false
	}
	if s.Status == resource.SaleCancelled {
		observeDecision(deny(ReasonTerminalState))
		return false
	}
	return e.CanOnResource(ctx, user, s, "sale.cancel")
}

// CanDeleteSale excludes cancelled sales.
func (e *Engine) CanDeleteSale(ctx context.Context, user *identitydomain.User, s *resource.Sale) bool {
	if s == nil {
		return false
	}
	if s.Status == resource.SaleCancelled {
		observeDecision(deny(ReasonTerminalState))
		return false
	}
	return e.CanOnResource(ctx, user, s, "sale.delete")
}

// CanViewTask allows the worker the task is assigned to, via their linked
// user account, even without any project role permission. The module gate
// still applies.
func (e *Engine) CanViewTask(ctx context.Context, user *identitydomain.User, t *resource.Task) bool {
	return e.taskCheck(ctx, user, t, "task.view")
}

// CanCompleteTask mirrors CanViewTask for completion.
func (e *Engine) CanCompleteTask(ctx context.Context, user *identitydomain.User, t *resource.Task) bool {
	return e.taskCheck(ctx, user, t, "task.complete")
}

func (e *Engine) taskCheck(ctx context.Context, user *identitydomain.User, t *resource.Task, slug string) bool {
	if user == nil || t == nil || t.ProjectID() == 0 {
		return false
	}
	if user.IsBlocked {
		observeDecision(deny(ReasonBlockedUser))
		return false
	}

	enabled, err := e.store.ModuleEnabled(ctx, t.ProjectID(), t.ModuleKey())
	if err != nil || !enabled {
		observeDecision(deny(ReasonModuleDisabled))
		return false
	}

	// Worker-self bypass: an identity-equality escape parallel to, but
	// independent of, the owner bypass.
	if assignee := t.AssigneeUserID(); assignee != 0 && assignee == user.ID {
		observeDecision(allow(ReasonWorkerSelf))
		return true
	}

	return e.CanOnResource(ctx, user, t, slug)
}

// PaymentFlags precomputes the can.* booleans the view layer renders per
// payment row.
func (e *Engine) PaymentFlags(ctx context.Context, user *identitydomain.User, p *resource.Payment) map[string]bool {
	return map[string]bool{
		"can.update":    e.CanUpdatePayment(ctx, user, p),
		"can.refund":    e.CanRefundPayment(ctx, user, p),
		"can.reinstate": e.CanReinstatePayment(ctx, user, p),
	}
}

// SaleFlags precomputes the can.* booleans per sale row.
func (e *Engine) SaleFlags(ctx context.Context, user *identitydomain.User, s *resource.Sale) map[string]bool {
	return map[string]bool{
		"can.update": e.CanUpdateSale(ctx, user, s),
		"can.cancel": e.CanCancelSale(ctx, user, s),
		"can.delete": e.CanDeleteSale(ctx, user, s),
	}
}

// TaskFlags precomputes the can.* booleans per task row.
func (e *Engine) TaskFlags(ctx context.Context, user *identitydomain.User, t *resource.Task) map[string]bool {
	return map[string]bool{
		"can.view":     e.CanViewTask(ctx, user, t),
		"can.complete": e.CanCompleteTask(ctx, user, t),
	}
}
