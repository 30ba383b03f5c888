package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Skotchmaster/notes/internal/logging"
	"github.com/Skotchmaster/notes/internal/metrics"
	"github.com/Skotchmaster/notes/internal/models"
	"github.com/Skotchmaster/notes/internal/mykafka"
	"github.com/Skotchmaster/notes/internal/repo"
)

type AuthService struct {
	Users         CredentialStore
	RefreshTokens RefreshStore
	Issuer        TokenIssuer
	Events        EventPublisher
	Now           func() time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *AuthService) Register(ctx context.Context, username, email, password string) (AuthResult, error) {
	return s.register(ctx, username, email, password, false)
}

// RegisterAdmin creates an account holding Admin. Callers must already be
// authorized as Admin; that check lives in the HTTP layer.
func (s *AuthService) RegisterAdmin(ctx context.Context, username, email, password string) (AuthResult, error) {
	return s.register(ctx, username, email, password, true)
}

func (s *AuthService) register(ctx context.Context, username, email, password string, isAdmin bool) (AuthResult, error) {
	ctx, span := tracer.Start(ctx, "AuthService.Register")
	defer span.End()
	l := logging.FromContext(ctx).With("svc", "auth.register")

	hasUsers, err := s.Users.HasAnyUsers(ctx)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot count users", "error", err)
		return AuthResult{}, err
	}
	if !hasUsers {
		isAdmin = true
	}

	existing, err := s.Users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		l.Error("register_error", "status", 500, "reason", "cannot look up email", "error", err)
		return AuthResult{}, err
	}
	if existing != nil {
		l.Warn("register_failed", "status", 400, "reason", "email already registered")
		metrics.AuthResult("register", false)
		return failed(MsgEmailTaken), nil
	}

	roles := []models.Role{models.RoleUser}
	if isAdmin {
		roles = append(roles, models.RoleAdmin)
	}
	user := &models.User{Username: username, Email: email}
	problems, err := s.Users.CreateWithPassword(ctx, user, password, roles...)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot create user", "error", err)
		return AuthResult{}, err
	}
	if len(problems) > 0 {
		l.Warn("register_failed", "status", 400, "reason", "identity policy", "problems", problems)
		metrics.AuthResult("register", false)
		return failed(problems...), nil
	}

	span.SetAttributes(attribute.Bool("user.admin", isAdmin))

	pair, err := s.Issuer.IssueToken(ctx, user)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot issue tokens", "error", err)
		return AuthResult{}, err
	}

	publish(ctx, s.Events, mykafka.TopicUserEvents, user.ID, map[string]any{
		"type":     "user_registered",
		"userID":   user.ID,
		"username": user.Username,
		"isAdmin":  isAdmin,
	})
	metrics.AuthResult("register", true)
	l.Info("register_successful", "user_id", user.ID, "is_admin", isAdmin)
	return succeeded(pair), nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	ctx, span := tracer.Start(ctx, "AuthService.Login")
	defer span.End()
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("login_failed", "status", 400, "reason", "unknown email")
			metrics.AuthResult("login", false)
			return failed(MsgInvalidCredentials), nil
		}
		l.Error("login_error", "status", 500, "error", err)
		return AuthResult{}, err
	}

	if !s.Users.CheckPassword(user, password) {
		l.Warn("login_failed", "status", 400, "reason", "wrong password", "user_id", user.ID)
		metrics.AuthResult("login", false)
		return failed(MsgInvalidCredentials), nil
	}

	pair, err := s.Issuer.IssueToken(ctx, user)
	if err != nil {
		l.Error("login_error", "status", 500, "reason", "cannot issue tokens", "error", err)
		return AuthResult{}, err
	}

	publish(ctx, s.Events, mykafka.TopicUserEvents, user.ID, map[string]any{
		"type":   "user_logged_in",
		"userID": user.ID,
	})
	metrics.AuthResult("login", true)
	l.Info("login_successful", "user_id", user.ID)
	return succeeded(pair), nil
}

// LogOut invalidates a refresh token owned by userID so it can never be exchanged.
func (s *AuthService) LogOut(ctx context.Context, userID, refreshToken string) error {
	l := logging.FromContext(ctx).With("svc", "auth.logout")

	rt, err := s.RefreshTokens.GetByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if rt.UserID != userID {
		l.Warn("logout_failed", "status", 404, "reason", "refresh token owned by another user")
		return ErrNotFound
	}
	if rt.Invalidated {
		return nil
	}

	rt.Invalidated = true
	if err := s.RefreshTokens.Update(ctx, rt); err != nil {
		l.Error("logout_error", "status", 500, "reason", "cannot invalidate refresh token", "error", err)
		return err
	}
	l.Info("logout_successful", "user_id", userID)
	return nil
}
