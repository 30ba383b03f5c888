package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Skotchmaster/notes/internal/logging"
	"github.com/Skotchmaster/notes/internal/metrics"
	"github.com/Skotchmaster/notes/internal/mykafka"
	"github.com/Skotchmaster/notes/internal/repo"
	"github.com/Skotchmaster/notes/internal/tokens"
)

// Refresh exchanges an expired access token and its paired refresh token for
// a new pair. Every rejection yields the same "Invalid token" failure; the
// reason only reaches logs and metrics.
func (s *AuthService) Refresh(ctx context.Context, accessToken, refreshToken string) (AuthResult, error) {
	ctx, span := tracer.Start(ctx, "AuthService.Refresh")
	defer span.End()
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	reject := func(reason string) (AuthResult, error) {
		l.Warn("refresh_rejected", "status", 400, "reason", reason)
		span.SetAttributes(attribute.String("refresh.rejected", reason))
		metrics.RefreshRejected(reason)
		metrics.AuthResult("refresh", false)
		return failed(MsgInvalidToken), nil
	}

	claims, ok := s.Issuer.ValidatePresentedToken(accessToken)
	if !ok {
		return reject("invalid_access_token")
	}

	now := s.now()
	exp, ok := claims.ExpiresUnix()
	if !ok {
		return reject("missing_expiry")
	}
	if !tokens.LocalWallClock(now).After(tokens.ComputeExpiry(exp, now)) {
		return reject("access_token_not_expired")
	}

	jti := claims.JTI()

	stored, err := s.RefreshTokens.GetByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return reject("refresh_token_missing")
		}
		l.Error("refresh_error", "status", 500, "reason", "cannot load refresh token", "error", err)
		return AuthResult{}, err
	}
	if stored.JwtID != jti {
		return reject("jti_mismatch")
	}
	if now.After(stored.ExpireDate) {
		return reject("refresh_token_expired")
	}
	if stored.Invalidated {
		return reject("refresh_token_invalidated")
	}
	if stored.Used {
		return reject("refresh_token_used")
	}

	consumed, err := s.RefreshTokens.ConsumeRefreshToken(ctx, stored.Token)
	if err != nil {
		l.Error("refresh_error", "status", 500, "reason", "cannot consume refresh token", "error", err)
		return AuthResult{}, err
	}
	if !consumed {
		return reject("refresh_token_used")
	}

	user, err := s.Users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Error("refresh_error", "reason", "token owner no longer exists", "user_id", claims.UserID)
			return reject("user_missing")
		}
		l.Error("refresh_error", "status", 500, "reason", "cannot load user", "error", err)
		return AuthResult{}, err
	}

	pair, err := s.Issuer.IssueToken(ctx, user)
	if err != nil {
		l.Error("refresh_error", "status", 500, "reason", "cannot issue tokens", "error", err)
		return AuthResult{}, err
	}

	publish(ctx, s.Events, mykafka.TopicUserEvents, user.ID, map[string]any{
		"type":   "token_refreshed",
		"userID": user.ID,
	})
	metrics.AuthResult("refresh", true)
	l.Info("refresh_successful", "user_id", user.ID)
	return succeeded(pair), nil
}
