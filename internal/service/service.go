package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/Skotchmaster/notes/internal/logging"
	"github.com/Skotchmaster/notes/internal/models"
	"github.com/Skotchmaster/notes/internal/tokens"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
)

var tracer = otel.Tracer("github.com/Skotchmaster/notes/internal/service")

type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	CreateWithPassword(ctx context.Context, u *models.User, password string, roles ...models.Role) ([]string, error)
	CheckPassword(u *models.User, password string) bool
	IsInRole(ctx context.Context, userID string, role models.Role) (bool, error)
	HasAnyUsers(ctx context.Context) (bool, error)
}

type RefreshStore interface {
	GetByToken(ctx context.Context, token string) (*models.RefreshToken, error)
	Update(ctx context.Context, rt *models.RefreshToken) error
	ConsumeRefreshToken(ctx context.Context, token string) (bool, error)
}

type TokenIssuer interface {
	IssueToken(ctx context.Context, u *models.User) (*tokens.Pair, error)
	ValidatePresentedToken(token string) (*tokens.AccessClaims, bool)
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

const publishTimeout = 5 * time.Second

// publish is best effort: a failed event is logged and never changes the
// outcome of the operation that produced it.
func publish(ctx context.Context, p EventPublisher, topic, key string, event map[string]any) {
	if p == nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := p.PublishEvent(pctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Warn("publish_event_failed", "topic", topic, "type", event["type"], "error", err)
	}
}
