package services

import (
	"context"
	"fmt"
	"strings"

	"duitku/internal/auth"
	"duitku/internal/core"
	"duitku/internal/log"
	"duitku/internal/storage"
)

// IdentityService handles registration, login and session issuance.
type IdentityService struct {
	storage *storage.SQLiteRepository
	tokens  *auth.TokenManager
	logger  *log.Logger
}

func NewIdentityService(storage *storage.SQLiteRepository, tokens *auth.TokenManager, logger *log.Logger) *IdentityService {
	return &IdentityService{
		storage: storage,
		tokens:  tokens,
		logger:  logger.WithComponent(log.ComponentAuth),
	}
}

// Register creates the user and optionally joins or creates a family by
// name, then issues a session token. The storage layer guarantees the user
// and family writes are atomic.
func (s *IdentityService) Register(ctx context.Context, name, email, password, familyName string) (core.User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	familyName = strings.TrimSpace(familyName)

	if name == "" {
		return core.User{}, "", core.ErrEmptyName
	}
	if email == "" || !strings.Contains(email, "@") {
		return core.User{}, "", core.ErrEmptyEmail
	}
	if len(password) < 8 {
		return core.User{}, "", core.ErrWeakPassword
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return core.User{}, "", fmt.Errorf("hash password: %w", err)
	}

	user, err := s.storage.RegisterUser(ctx, name, email, hash, familyName)
	if err != nil {
		return core.User{}, "", fmt.Errorf("register user: %w", err)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return core.User{}, "", fmt.Errorf("issue session: %w", err)
	}

	s.logger.InfoContext(ctx, "User registered",
		log.FieldUserID, user.ID,
		"has_family", user.FamilyID != nil)

	return user, token, nil
}

// Login verifies credentials and issues a session token. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *IdentityService) Login(ctx context.Context, email, password string) (core.User, string, error) {
	user, hash, err := s.storage.GetCredentials(ctx, strings.TrimSpace(email))
	if err != nil {
		return core.User{}, "", core.ErrUnauthenticated
	}

	if err := auth.CheckPassword(hash, password); err != nil {
		return core.User{}, "", core.ErrUnauthenticated
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return core.User{}, "", fmt.Errorf("issue session: %w", err)
	}

	s.logger.InfoContext(ctx, "User logged in", log.FieldUserID, user.ID)
	return user, token, nil
}

// CurrentUser loads the authenticated user's fresh record.
func (s *IdentityService) CurrentUser(ctx context.Context, userID int64) (core.User, error) {
	user, err := s.storage.GetUser(ctx, userID)
	if err != nil {
		return core.User{}, fmt.Errorf("load current user: %w", err)
	}
	return user, nil
}
