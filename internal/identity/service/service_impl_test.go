package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/crewbase/crewbase/internal/identity/domain"
	"github.com/crewbase/crewbase/internal/identity/repository"
	"github.com/crewbase/crewbase/internal/identity/service"
	"github.com/crewbase/crewbase/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func setup(t *testing.T) domain.Service {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.User{}, &domain.Session{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	repo, sessions := repository.New(conn)
	return service.New(zaptest.NewLogger(t), repo, sessions, node, time.Hour)
}

func createUser(t *testing.T, svc domain.Service, email string, isAdmin bool) *domain.User {
	t.Helper()
	user, err := svc.CreateUser(context.Background(), domain.CreateUserRequest{
		Email:       email,
		DisplayName: "Test User",
		Password:    "hunter22",
		IsAdmin:     isAdmin,
	})
	require.NoError(t, err)
	return user
}

func TestCreateUserValidation(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, domain.CreateUserRequest{Email: "not-an-email", Password: "hunter22"})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = svc.CreateUser(ctx, domain.CreateUserRequest{Email: "a@b.com", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidPassword)

	createUser(t, svc, "a@b.com", false)
	_, err = svc.CreateUser(ctx, domain.CreateUserRequest{Email: "A@B.com", DisplayName: "x", Password: "hunter22"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestLoginAndAuthenticate(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()
	user := createUser(t, svc, "a@b.com", false)

	_, err := svc.Login(ctx, domain.LoginRequest{Email: "a@b.com", Password: "wrong"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	resp, err := svc.Login(ctx, domain.LoginRequest{Email: "a@b.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.SessionToken)

	session, err := svc.Authenticate(ctx, resp.SessionToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.UserID)

	require.NoError(t, svc.Logout(ctx, resp.SessionToken))
	_, err = svc.Authenticate(ctx, resp.SessionToken)
	assert.Error(t, err)
}

func TestBlockRules(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()
	admin := createUser(t, svc, "admin@b.com", true)
	other := createUser(t, svc, "other@b.com", true)
	user := createUser(t, svc, "user@b.com", false)

	// Self-block and blocking another admin are both refused.
	assert.ErrorIs(t, svc.Block(ctx, admin.ID, admin.ID), domain.ErrSelfBlock)
	assert.ErrorIs(t, svc.Block(ctx, admin.ID, other.ID), domain.ErrBlockAdmin)

	require.NoError(t, svc.Block(ctx, admin.ID, user.ID))
	blocked, err := svc.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, blocked.IsBlocked)

	// A blocked user cannot log in.
	_, err = svc.Login(ctx, domain.LoginRequest{Email: "user@b.com", Password: "hunter22"})
	assert.ErrorIs(t, err, domain.ErrUserBlocked)

	require.NoError(t, svc.Unblock(ctx, admin.ID, user.ID))
	_, err = svc.Login(ctx, domain.LoginRequest{Email: "user@b.com", Password: "hunter22"})
	assert.NoError(t, err)
}

func TestBlockDeniesLiveSessions(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()
	admin := createUser(t, svc, "admin@b.com", true)
	user := createUser(t, svc, "user@b.com", false)

	resp, err := svc.Login(ctx, domain.LoginRequest{Email: "user@b.com", Password: "hunter22"})
	require.NoError(t, err)

	require.NoError(t, svc.Block(ctx, admin.ID, user.ID))
	_, err = svc.Authenticate(ctx, resp.SessionToken)
	assert.Error(t, err)
}

func TestResetPassword(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()
	user := createUser(t, svc, "user@b.com", false)

	require.NoError(t, svc.ResetPassword(ctx, user.ID, "newpass99"))

	_, err := svc.Login(ctx, domain.LoginRequest{Email: "user@b.com", Password: "hunter22"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, domain.LoginRequest{Email: "user@b.com", Password: "newpass99"})
	assert.NoError(t, err)
}
