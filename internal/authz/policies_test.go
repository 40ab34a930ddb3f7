package authz

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	projectdomain "github.com/crewbase/crewbase/internal/project/domain"
	"github.com/crewbase/crewbase/internal/resource"
	"github.com/stretchr/testify/assert"
)

func paymentIn(projectID snowflake.ID) *resource.Payment {
	return &resource.Payment{ID: 1, ProjectRef: projectID, Status: resource.PaymentCompleted, AmountCents: 1500, Currency: "USD"}
}

func saleIn(projectID snowflake.ID) *resource.Sale {
	return &resource.Sale{ID: 1, ProjectRef: projectID, Status: resource.SaleOpen}
}

func taskIn(projectID snowflake.ID, workerUserID snowflake.ID) *resource.Task {
	t := &resource.Task{ID: 1, ProjectRef: projectID, WorkerID: 50, Title: "restock shelves", Status: resource.TaskOpen}
	if workerUserID != 0 {
		uid := workerUserID
		t.Worker = &resource.Worker{ID: 50, ProjectRef: projectID, UserID: &uid, FullName: "Sam Poe"}
	}
	return t
}

func TestRefundedPaymentIsImmutable(t *testing.T) {
	store := newFakeStore()
	owner := user(1)
	admin := user(2)
	admin.IsAdmin = true
	p := store.addProject(100, owner.ID)
	store.modules[moduleKey{p.ID, "pos"}] = true
	e := newTestEngine(t, store)

	pay := paymentIn(p.ID)
	pay.Status = resource.PaymentRefunded

	assert.False(t, e.CanUpdatePayment(context.Background(), owner, pay))
	assert.False(t, e.CanRefundPayment(context.Background(), owner, pay))
	assert.False(t, e.CanUpdatePayment(context.Background(), admin, pay))
	assert.False(t, e.CanRefundPayment(context.Background(), admin, pay))
}

func TestReinstateOnlyFromRefunded(t *testing.T) {
	store := newFakeStore()
	owner := user(1)
	p := store.addProject(100, owner.ID)
	store.modules[moduleKey{p.ID, "pos"}] = true
	e := newTestEngine(t, store)

	pay := paymentIn(p.ID)
	assert.False(t, e.CanReinstatePayment(context.Background(), owner, pay))

	pay.Status = resource.PaymentRefunded
	assert.True(t, e.CanReinstatePayment(context.Background(), owner, pay))
}

func TestPaymentActionsFollowRolePermissions(t *testing.T) {
	store := newFakeStore()
	p := store.addProject(100, 1)
	cashier := user(3)
	store.addGrant(p.ID, cashier.ID, projectdomain.MembershipActive, "payment.view", "payment.update")
	store.modules[moduleKey{p.ID, "pos"}] = true
	e := newTestEngine(t, store)

	pay := paymentIn(p.ID)
	assert.True(t, e.CanUpdatePayment(context.Background(), cashier, pay))
	assert.False(t, e.CanRefundPayment(context.Background(), cashier, pay))
}

func TestCancelledSaleIsFrozen(t *testing.T) {
	store := newFakeStore()
	owner := user(1)
	p := store.addProject(100, owner.ID)
	store.modules[moduleKey{p.ID, "pos"}] = true
	e := newTestEngine(t, store)

	s := saleIn(p.ID)
	assert.True(t, e.CanUpdateSale(context.Background(), owner, s))
	assert.True(t, e.CanCancelSale(context.Background(), owner, s))

	s.Status = resource.SaleCancelled
	assert.False(t, e.CanUpdateSale(context.Background(), owner, s))
	assert.False(t, e.CanCancelSale(context.Background(), owner, s))
	assert.False(t, e.CanDeleteSale(context.Background(), owner, s))
}

func TestWorkerSelfBypassOnTasks(t *testing.T) {
	store := newFakeStore()
	p := store.addProject(100, 1)
	worker := user(20)
	store.addGrant(p.ID, worker.ID, projectdomain.MembershipActive, "pos.access")
	store.modules[moduleKey{p.ID, "tasks"}] = true
	e := newTestEngine(t, store)

	// Assigned to the caller's linked worker record: allowed without any
	// task.* permission.
	own := taskIn(p.ID, worker.ID)
	assert.True(t, e.CanViewTask(context.Background(), worker, own))
	assert.True(t, e.CanCompleteTask(context.Background(), worker, own))

	// Someone else's task still requires the permission.
	other := taskIn(p.ID, 999)
	assert.False(t, e.CanViewTask(context.Background(), worker, other))
	assert.False(t, e.CanCompleteTask(context.Background(), worker, other))
}

func TestWorkerSelfBypassBehindModuleGate(t *testing.T) {
	store := newFakeStore()
	p := store.addProject(100, 1)
	worker := user(20)
	store.addGrant(p.ID, worker.ID, projectdomain.MembershipActive)
	e := newTestEngine(t, store)

	// tasks module disabled: the bypass never fires.
	own := taskIn(p.ID, worker.ID)
	assert.False(t, e.CanViewTask(context.Background(), worker, own))

	store.modules[moduleKey{p.ID, "tasks"}] = true
	assert.True(t, e.CanViewTask(context.Background(), worker, own))
}

func TestBlockedWorkerGetsNoSelfBypass(t *testing.T) {
	store := newFakeStore()
	p := store.addProject(100, 1)
	worker := user(20)
	worker.IsBlocked = true
	store.modules[moduleKey{p.ID, "tasks"}] = true
	e := newTestEngine(t, store)

	own := taskIn(p.ID, worker.ID)
	assert.False(t, e.CanViewTask(context.Background(), worker, own))
}

func TestUnlinkedWorkerTaskNeedsPermission(t *testing.T) {
	store := newFakeStore()
	p := store.addProject(100, 1)
	manager := user(21)
	store.addGrant(p.ID, manager.ID, projectdomain.MembershipActive, "task.view")
	store.modules[moduleKey{p.ID, "tasks"}] = true
	e := newTestEngine(t, store)

	unassigned := taskIn(p.ID, 0)
	assert.True(t, e.CanViewTask(context.Background(), manager, unassigned))
	assert.False(t, e.CanCompleteTask(context.Background(), manager, unassigned))
}

func TestResourceFlags(t *testing.T) {
	store := newFakeStore()
	owner := user(1)
	p := store.addProject(100, owner.ID)
	store.modules[moduleKey{p.ID, "pos"}] = true
	e := newTestEngine(t, store)

	pay := paymentIn(p.ID)
	flags := e.PaymentFlags(context.Background(), owner, pay)
	assert.True(t, flags["can.update"])
	assert.True(t, flags["can.refund"])
	assert.False(t, flags["can.reinstate"])

	pay.Status = resource.PaymentRefunded
	flags = e.PaymentFlags(context.Background(), owner, pay)
	assert.False(t, flags["can.update"])
	assert.False(t, flags["can.refund"])
	assert.True(t, flags["can.reinstate"])
}
