package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*User, error)
	GetByID(ctx context.Context, id snowflake.ID) (*User, error)
	List(ctx context.Context) ([]User, error)

	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Authenticate(ctx context.Context, sessionToken string) (*Session, error)
	Logout(ctx context.Context, sessionToken string) error

	Block(ctx context.Context, actorID, targetID snowflake.ID) error
	Unblock(ctx context.Context, actorID, targetID snowflake.ID) error
	ResetPassword(ctx context.Context, targetID snowflake.ID, newPassword string) error
}

type CreateUserRequest struct {
	Email       string
	DisplayName string
	Password    string
	IsAdmin     bool
}

type LoginRequest struct {
	Email    string
	Password string
}

type LoginResponse struct {
	User         *User
	SessionToken string
	ExpiresAt    time.Time
}

var (
	ErrInvalidEmail       = errors.New("invalid_email")
	ErrInvalidPassword    = errors.New("invalid_password")
	ErrInvalidUser        = errors.New("invalid_user")
	ErrEmailTaken         = errors.New("email_taken")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrUserBlocked        = errors.New("user_blocked")
	ErrSessionExpired     = errors.New("session_expired")
	ErrNotFound           = errors.New("not_found")

	// ErrSelfBlock and ErrBlockAdmin back the caller-facing messages
	// "You cannot block yourself." and "You cannot block an admin user."
	ErrSelfBlock  = errors.New("self_block")
	ErrBlockAdmin = errors.New("block_admin")
)
