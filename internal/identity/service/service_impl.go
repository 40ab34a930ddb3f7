package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/crewbase/crewbase/internal/identity/domain"
	"github.com/crewbase/crewbase/internal/identity/password"
	"github.com/crewbase/crewbase/pkg/db"
	"go.uber.org/zap"
)

type service struct {
	log        *zap.Logger
	repo       domain.Repository
	sessions   domain.SessionRepository
	genID      *snowflake.Node
	sessionTTL time.Duration
}

// New builds the identity service.
func New(log *zap.Logger, repo domain.Repository, sessions domain.SessionRepository, genID *snowflake.Node, sessionTTL time.Duration) domain.Service {
	if sessionTTL <= 0 {
		sessionTTL = 7 * 24 * time.Hour
	}
	return &service{
		log:        log.Named("identity.service"),
		repo:       repo,
		sessions:   sessions,
		genID:      genID,
		sessionTTL: sessionTTL,
	}
}

func (s *service) CreateUser(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.ErrInvalidEmail
	}
	if len(req.Password) < 4 {
		return nil, domain.ErrInvalidPassword
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailTaken
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = email
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           s.genID.Generate(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: hashed,
		IsAdmin:      req.IsAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

func (s *service) GetByID(ctx context.Context, id snowflake.ID) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func (s *service) List(ctx context.Context) ([]domain.User, error) {
	return s.repo.List(ctx)
}

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !password.Verify(req.Password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	if user.IsBlocked {
		return nil, domain.ErrUserBlocked
	}

	token, err := newSessionToken()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	session := &domain.Session{
		ID:               s.genID.Generate(),
		UserID:           user.ID,
		SessionTokenHash: hashToken(token),
		ExpiresAt:        now.Add(s.sessionTTL),
		CreatedAt:        now,
		LastSeenAt:       now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	return &domain.LoginResponse{
		User:         user,
		SessionToken: token,
		ExpiresAt:    session.ExpiresAt,
	}, nil
}

func (s *service) Authenticate(ctx context.Context, sessionToken string) (*domain.Session, error) {
	session, err := s.sessions.FindByTokenHash(ctx, hashToken(sessionToken))
	if err != nil {
		return nil, err
	}
	if session == nil || session.RevokedAt != nil || time.Now().UTC().After(session.ExpiresAt) {
		return nil, domain.ErrSessionExpired
	}

	user, err := s.repo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.IsBlocked {
		// A block takes effect immediately, even for live sessions.
		return nil, domain.ErrUserBlocked
	}

	if err := s.sessions.Touch(ctx, session.ID); err != nil {
		s.log.Warn("failed to touch session", zap.Error(err))
	}
	return session, nil
}

func (s *service) Logout(ctx context.Context, sessionToken string) error {
	session, err := s.sessions.FindByTokenHash(ctx, hashToken(sessionToken))
	if err != nil {
		return err
	}
	if session == nil {
		return nil
	}
	return s.sessions.Revoke(ctx, session.ID)
}

func (s *service) Block(ctx context.Context, actorID, targetID snowflake.ID) error {
	if actorID == targetID {
		return domain.ErrSelfBlock
	}

	target, err := s.repo.FindByID(ctx, targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return domain.ErrNotFound
	}
	if target.IsAdmin {
		return domain.ErrBlockAdmin
	}
	if target.IsBlocked {
		return nil
	}

	target.IsBlocked = true
	if err := s.repo.Update(ctx, target); err != nil {
		return err
	}
	s.log.Info("user blocked",
		zap.String("actor_id", actorID.String()),
		zap.String("user_id", targetID.String()),
	)
	return nil
}

func (s *service) Unblock(ctx context.Context, actorID, targetID snowflake.ID) error {
	target, err := s.repo.FindByID(ctx, targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return domain.ErrNotFound
	}
	if !target.IsBlocked {
		return nil
	}

	target.IsBlocked = false
	if err := s.repo.Update(ctx, target); err != nil {
		return err
	}
	s.log.Info("user unblocked",
		zap.String("actor_id", actorID.String()),
		zap.String("user_id", targetID.String()),
	)
	return nil
}

func (s *service) ResetPassword(ctx context.Context, targetID snowflake.ID, newPassword string) error {
	if len(newPassword) < 4 {
		return domain.ErrInvalidPassword
	}
	target, err := s.repo.FindByID(ctx, targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return domain.ErrNotFound
	}

	hashed, err := password.Hash(newPassword)
	if err != nil {
		return err
	}
	target.PasswordHash = hashed
	return s.repo.Update(ctx, target)
}

func newSessionToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
