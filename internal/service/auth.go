package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mdemidov/product_api/internal/hash"
	"github.com/mdemidov/product_api/internal/logging"
	"github.com/mdemidov/product_api/internal/models"
	"github.com/mdemidov/product_api/internal/mykafka"
	"github.com/mdemidov/product_api/internal/repo"
	"github.com/mdemidov/product_api/internal/tokens"
	"github.com/mdemidov/product_api/internal/transport"
)

const tokenName = "auth_token"

type AuthService struct {
	Repo     *repo.GormRepo
	Producer *mykafka.Producer
	// DefaultRoleSlug is the role every registration receives, injected from
	// configuration rather than looked up by display name.
	DefaultRoleSlug string
}

// AuthResult carries the user and the one-time plaintext credential.
type AuthResult struct {
	User        *models.User
	AccessToken string
}

func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if err := s.validateRegister(ctx, req); err != nil {
		return nil, err
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_failed", "reason", "cannot hash password", "error", err)
		return nil, err
	}

	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: pwHash,
		IsActive:     true,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	if err := s.Repo.AttachRole(ctx, user, s.DefaultRoleSlug); err != nil {
		return nil, err
	}

	loaded, err := s.Repo.FindUserByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	// Registration never revokes: no prior token can exist.
	secret, err := tokens.NewSecret()
	if err != nil {
		return nil, err
	}
	token := &models.AccessToken{UserID: user.ID, Name: tokenName, TokenHash: tokens.Sha256Hex(secret)}
	if err := s.Repo.CreateAccessToken(ctx, token); err != nil {
		return nil, err
	}

	s.publish(ctx, map[string]any{
		"type":    "user_registered",
		"user_id": user.ID,
		"email":   user.Email,
	})

	l.Info("register_success", "user_id", user.ID)
	return &AuthResult{User: loaded, AccessToken: tokens.Compose(token.ID, secret)}, nil
}

// Login verifies credentials, then checks is_active strictly afterwards (the
// distinct 403 for disabled accounts is a documented compatibility behavior),
// then rotates the user's tokens.
func (s *AuthService) Login(ctx context.Context, req transport.LoginRequest) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	var fe fieldErrors
	if strings.TrimSpace(req.Email) == "" {
		fe.add("email", "The email field is required.")
	}
	if req.Password == "" {
		fe.add("password", "The password field is required.")
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	user, err := s.Repo.FindUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	secret, err := tokens.NewSecret()
	if err != nil {
		return nil, err
	}
	token := &models.AccessToken{UserID: user.ID, Name: tokenName, TokenHash: tokens.Sha256Hex(secret)}
	if err := s.Repo.ReplaceUserTokens(ctx, user.ID, token); err != nil {
		return nil, err
	}

	loaded, err := s.Repo.FindUserByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, map[string]any{
		"type":    "user_logged_in",
		"user_id": user.ID,
		"email":   user.Email,
	})

	l.Info("login_success", "user_id", user.ID)
	return &AuthResult{User: loaded, AccessToken: tokens.Compose(token.ID, secret)}, nil
}

// Logout revokes only the token the request was authenticated with.
func (s *AuthService) Logout(ctx context.Context, tokenID uint) error {
	return s.Repo.DeleteAccessToken(ctx, tokenID)
}

func (s *AuthService) validateRegister(ctx context.Context, req transport.RegisterRequest) error {
	var fe fieldErrors

	name := strings.TrimSpace(req.Name)
	if name == "" {
		fe.add("name", "The name field is required.")
	} else if len(name) > 255 {
		fe.add("name", "The name field must not be greater than 255 characters.")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	switch {
	case email == "":
		fe.add("email", "The email field is required.")
	case !strings.Contains(email, "@") || len(email) > 255:
		fe.add("email", "The email field must be a valid email address.")
	default:
		taken, err := s.Repo.EmailTaken(ctx, email)
		if err != nil {
			return err
		}
		if taken {
			fe.add("email", "The email has already been taken.")
		}
	}

	switch {
	case req.Password == "":
		fe.add("password", "The password field is required.")
	case len(req.Password) < 8:
		fe.add("password", "The password field must be at least 8 characters.")
	case req.Password != req.PasswordConfirmation:
		fe.add("password", "The password field confirmation does not match.")
	}

	return fe.err()
}

func (s *AuthService) publish(ctx context.Context, event map[string]any) {
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	key := ""
	if v, ok := event["email"].(string); ok {
		key = v
	}
	if err := s.Producer.PublishEvent(pubCtx, mykafka.TopicUserEvents, key, event); err != nil {
		logging.FromContext(ctx).Error("kafka publish failed", "topic", mykafka.TopicUserEvents, "error", err)
	}
}
