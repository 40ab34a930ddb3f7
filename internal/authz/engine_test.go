package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/crewbase/crewbase/internal/audit/domain"
	identitydomain "github.com/crewbase/crewbase/internal/identity/domain"
	projectdomain "github.com/crewbase/crewbase/internal/project/domain"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

type grantKey struct {
	projectID snowflake.ID
	userID    snowflake.ID
}

type moduleKey struct {
	projectID snowflake.ID
	key       string
}

// fakeStore is an in-memory Store for engine tests.
type fakeStore struct {
	projects map[snowflake.ID]*projectdomain.Project
	grants   map[grantKey]*projectdomain.MembershipGrant
	modules  map[moduleKey]bool
	err      error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		projects: map[snowflake.ID]*projectdomain.Project{},
		grants:   map[grantKey]*projectdomain.MembershipGrant{},
		modules:  map[moduleKey]bool{},
	}
}

func (s *fakeStore) Project(_ context.Context, projectID snowflake.ID) (*projectdomain.Project, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.projects[projectID], nil
}

func (s *fakeStore) EffectiveGrant(_ context.Context, projectID, userID snowflake.ID) (*projectdomain.MembershipGrant, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.grants[grantKey{projectID, userID}], nil
}

func (s *fakeStore) ModuleEnabled(_ context.Context, projectID snowflake.ID, key string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.modules[moduleKey{projectID, key}], nil
}

func (s *fakeStore) addProject(id, ownerID snowflake.ID) *projectdomain.Project {
	p := &projectdomain.Project{ID: id, OwnerID: ownerID, Name: "p", Status: projectdomain.ProjectActive}
	s.projects[id] = p
	return p
}

func (s *fakeStore) addGrant(projectID, userID snowflake.ID, status projectdomain.MembershipStatus, perms ...string) {
	set := map[string]struct{}{}
	for _, p := range perms {
		set[p] = struct{}{}
	}
	s.grants[grantKey{projectID, userID}] = &projectdomain.MembershipGrant{
		ProjectID:   projectID,
		UserID:      userID,
		RoleSlug:    "member",
		Status:      status,
		Permissions: set,
	}
}

func newTestEngine(t *testing.T, store Store) *Engine {
	t.Helper()
	return New(zaptest.NewLogger(t), store, nil)
}

func user(id snowflake.ID) *identitydomain.User {
	return &identitydomain.User{ID: id, Email: "u@example.com"}
}

func TestOwnerBypassesPermissions(t *testing.T) {
	store := newFakeStore()
	owner := user(1)
	p := store.addProject(100, owner.ID)
	e := newTestEngine(t, store)

	assert.True(t, e.CanOnProject(context.Background(), owner, p, "payment.update"))
	assert.True(t, e.CanManageProject(context.Background(), owner, p))
}

func TestPlatformAdminBypassesMembership(t *testing.T) {
	store := newFakeStore()
	admin := user(2)
	admin.IsAdmin = true
	p := store.addProject(100, 1)
	e := newTestEngine(t, store)

	assert.True(t, e.CanOnProject(context.Background(), admin, p, "payment.update"))
	assert.True(t, e.HasProjectAccess(context.Background(), admin, p))
}

func TestNoMembershipDenies(t *testing.T) {
	store := newFakeStore()
	stranger := user(3)
	p := store.addProject(100, 1)
	e := newTestEngine(t, store)

	assert.False(t, e.CanOnProject(context.Background(), stranger, p, "payment.view"))
	assert.False(t, e.HasProjectAccess(context.Background(), stranger, p))
}

func TestInactiveMembershipDenies(t *testing.T) {
	store := newFakeStore()
	p := store.addProject(100, 1)
	e := newTestEngine(t, store)

	for _, status := range []projectdomain.MembershipStatus{
		projectdomain.MembershipInvited,
		projectdomain.MembershipSuspended,
	} {
		u := user(4)
		store.addGrant(p.ID, u.ID, status, "payment.view")
		assert.False(t, e.CanOnProject(context.Background(), u, p, "payment.view"), string(status))
		assert.False(t, e.HasProjectAccess(context.Background(), u, p), string(status))
	}
}

func TestActiveMembershipGrantsRolePermissions(t *testing.T) {
	store := newFakeStore()
	p := store.addProject(100, 1)
	u := user(5)
	store.addGrant(p.ID, u.ID, projectdomain.MembershipActive, "payment.view", "sale.view")
	e := newTestEngine(t, store)

	assert.True(t, e.CanOnProject(context.Background(), u, p, "payment.view"))
	assert.False(t, e.CanOnProject(context.Background(), u, p, "payment.update"))
	assert.True(t, e.HasProjectAccess(context.Background(), u, p))
}

func TestProjectIsolation(t *testing.T) {
	store := newFakeStore()
	pa := store.addProject(100, 1)
	pb := store.addProject(200, 2)
	u := user(6)
	store.addGrant(pa.ID, u.ID, projectdomain.MembershipActive, "payment.view")
	e := newTestEngine(t, store)

	assert.True(t, e.CanOnProject(context.Background(), u, pa, "payment.view"))
	assert.False(t, e.CanOnProject(context.Background(), u, pb, "payment.view"))
}

func TestBlockedUserDeniedEverywhere(t *testing.T) {
	store := newFakeStore()
	owner := user(1)
	owner.IsBlocked = true
	admin := user(2)
	admin.IsAdmin = true
	admin.IsBlocked = true
	p := store.addProject(100, owner.ID)
	store.modules[moduleKey{p.ID, "pos"}] = true
	e := newTestEngine(t, store)

	assert.False(t, e.CanOnProject(context.Background(), owner, p, "payment.view"))
	assert.False(t, e.CanOnProject(context.Background(), admin, p, "payment.view"))
	assert.False(t, e.HasProjectAccess(context.Background(), owner, p))
	assert.False(t, e.CanAccessModule(context.Background(), owner, p, "pos"))
}

func TestModuleGateDominatesBypasses(t *testing.T) {
	store := newFakeStore()
	owner := user(1)
	admin := user(2)
	admin.IsAdmin = true
	p := store.addProject(100, owner.ID)
	e := newTestEngine(t, store)

	// Gate disabled: even owner and platform admin cannot reach the
	// module-scoped resource or the module itself.
	pay := paymentIn(p.ID)
	assert.False(t, e.CanOnResource(context.Background(), owner, pay, "payment.update"))
	assert.False(t, e.CanOnResource(context.Background(), admin, pay, "payment.update"))
	assert.False(t, e.CanAccessModule(context.Background(), owner, p, "pos"))

	store.modules[moduleKey{p.ID, "pos"}] = true
	assert.True(t, e.CanOnResource(context.Background(), owner, pay, "payment.update"))
	assert.True(t, e.CanAccessModule(context.Background(), owner, p, "pos"))
}

func TestModuleGateDefaultsClosed(t *testing.T) {
	store := newFakeStore()
	owner := user(1)
	p := store.addProject(100, owner.ID)
	e := newTestEngine(t, store)

	// No gate row was ever written for "stock".
	assert.False(t, e.CanAccessModule(context.Background(), owner, p, "stock"))
}

func TestLookupFailureDenies(t *testing.T) {
	store := newFakeStore()
	p := store.addProject(100, 1)
	u := user(7)
	store.addGrant(p.ID, u.ID, projectdomain.MembershipActive, "payment.view")
	e := newTestEngine(t, store)

	store.err = errors.New("connection reset")
	assert.False(t, e.CanOnProject(context.Background(), u, p, "payment.view"))
	assert.False(t, e.CanOnResource(context.Background(), u, paymentIn(p.ID), "payment.view"))
}

func TestNilInputsDeny(t *testing.T) {
	store := newFakeStore()
	p := store.addProject(100, 1)
	e := newTestEngine(t, store)

	assert.False(t, e.CanOnProject(context.Background(), nil, p, "payment.view"))
	assert.False(t, e.CanOnProject(context.Background(), user(1), nil, "payment.view"))
	assert.False(t, e.CanOnProject(context.Background(), user(1), p, ""))
	assert.False(t, e.CanOnResource(context.Background(), user(1), nil, "payment.view"))
}

func TestManageProjectRequiresManagePermission(t *testing.T) {
	store := newFakeStore()
	p := store.addProject(100, 1)
	manager := user(8)
	member := user(9)
	store.addGrant(p.ID, manager.ID, projectdomain.MembershipActive, ManagePermission)
	store.addGrant(p.ID, member.ID, projectdomain.MembershipActive, "payment.view")
	e := newTestEngine(t, store)

	assert.True(t, e.CanManageProject(context.Background(), manager, p))
	assert.False(t, e.CanManageProject(context.Background(), member, p))
}

func TestDeletedRoleResolvesToNoPermissions(t *testing.T) {
	store := newFakeStore()
	p := store.addProject(100, 1)
	u := user(10)
	// Grant row exists and is active but carries no permission slugs,
	// mirroring a role deleted out from under the membership.
	store.grants[grantKey{p.ID, u.ID}] = &projectdomain.MembershipGrant{
		ProjectID:   p.ID,
		UserID:      u.ID,
		Status:      projectdomain.MembershipActive,
		Permissions: map[string]struct{}{},
	}
	e := newTestEngine(t, store)

	assert.False(t, e.CanOnProject(context.Background(), u, p, "payment.view"))
	assert.True(t, e.HasProjectAccess(context.Background(), u, p))
}

func TestResourceChecksUseResourceOwnProject(t *testing.T) {
	store := newFakeStore()
	pa := store.addProject(100, 1)
	pb := store.addProject(200, 2)
	u := user(11)
	store.addGrant(pa.ID, u.ID, projectdomain.MembershipActive, "payment.view")
	store.modules[moduleKey{pa.ID, "pos"}] = true
	store.modules[moduleKey{pb.ID, "pos"}] = true
	e := newTestEngine(t, store)

	assert.True(t, e.CanOnResource(context.Background(), u, paymentIn(pa.ID), "payment.view"))
	assert.False(t, e.CanOnResource(context.Background(), u, paymentIn(pb.ID), "payment.view"))
}

type captureRecorder struct {
	entries []auditdomain.Entry
}

func (r *captureRecorder) Record(_ context.Context, entry auditdomain.Entry) {
	r.entries = append(r.entries, entry)
}

func TestDeniedResourceCheckRecordsProjectID(t *testing.T) {
	store := newFakeStore()
	p := store.addProject(100, 1)
	store.modules[moduleKey{p.ID, "pos"}] = true
	rec := &captureRecorder{}
	e := New(zaptest.NewLogger(t), store, rec)
	u := user(30)

	assert.False(t, e.CanOnResource(context.Background(), u, paymentIn(p.ID), "payment.update"))

	if assert.Len(t, rec.entries, 1) {
		entry := rec.entries[0]
		assert.Equal(t, "authorization.denied", entry.Action)
		if assert.NotNil(t, entry.ProjectID) {
			assert.Equal(t, p.ID, *entry.ProjectID)
		}
		if assert.NotNil(t, entry.ActorID) {
			assert.Equal(t, u.ID, *entry.ActorID)
		}
	}
}
