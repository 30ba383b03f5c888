package tokens

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Skotchmaster/notes/internal/models"
)

// Refresh tokens live one calendar month; only the access lifetime is configurable.
const refreshLifetimeMonths = 1

var ErrInvalidToken = errors.New("invalid token")

type RoleChecker interface {
	IsInRole(ctx context.Context, userID string, role models.Role) (bool, error)
}

type RefreshAdder interface {
	Add(ctx context.Context, rt *models.RefreshToken) error
}

type Pair struct {
	AccessToken  string
	ExpiresAt    time.Time
	RefreshToken *models.RefreshToken
}

type Issuer struct {
	Secret   []byte
	Lifetime time.Duration
	Roles    RoleChecker
	Store    RefreshAdder
	Log      *slog.Logger
	Now      func() time.Time
}

func NewIssuer(secret []byte, lifetime time.Duration, roles RoleChecker, store RefreshAdder, log *slog.Logger) *Issuer {
	return &Issuer{
		Secret:   secret,
		Lifetime: lifetime,
		Roles:    roles,
		Store:    store,
		Log:      log,
		Now:      time.Now,
	}
}

func (i *Issuer) now() time.Time {
	if i.Now == nil {
		return time.Now()
	}
	return i.Now()
}

func (i *Issuer) log() *slog.Logger {
	if i.Log == nil {
		return slog.Default()
	}
	return i.Log
}

// IssueToken signs a new access token for u and persists its paired refresh
// record before returning.
func (i *Issuer) IssueToken(ctx context.Context, u *models.User) (*Pair, error) {
	now := i.now()
	jti := uuid.NewString()

	roles := jwt.ClaimStrings{}
	for _, role := range models.Roles {
		if role == models.RoleUser {
			roles = append(roles, string(role))
			continue
		}
		ok, err := i.Roles.IsInRole(ctx, u.ID, role)
		if err != nil {
			return nil, fmt.Errorf("check role %s: %w", role, err)
		}
		if ok {
			roles = append(roles, string(role))
		}
	}

	exp := now.Add(i.Lifetime)
	claims := AccessClaims{
		Email:  u.Email,
		UserID: u.ID,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Username,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.Secret)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	created := now.UTC()
	rt := &models.RefreshToken{
		Token:        uuid.NewString(),
		JwtID:        jti,
		UserID:       u.ID,
		CreationDate: created,
		ExpireDate:   created.AddDate(0, refreshLifetimeMonths, 0),
	}
	if err := i.Store.Add(ctx, rt); err != nil {
		return nil, fmt.Errorf("persist refresh token: %w", err)
	}

	return &Pair{AccessToken: signed, ExpiresAt: exp, RefreshToken: rt}, nil
}

func (i *Issuer) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected sign method %v", t.Header["alg"])
	}
	return i.Secret, nil
}

// ValidatePresentedToken checks the signature of a possibly expired token and
// decodes its claims. Lifetime is not enforced here. Any failure is logged
// and reported as ok == false.
func (i *Issuer) ValidatePresentedToken(tokenStr string) (*AccessClaims, bool) {
	var claims AccessClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, i.keyFunc, jwt.WithoutClaimsValidation())
	if err != nil || !tkn.Valid {
		i.log().Error("token_validation_failed", "reason", "cannot verify token", "error", err)
		return nil, false
	}

	alg, _ := tkn.Header["alg"].(string)
	if !strings.EqualFold(alg, jwt.SigningMethodHS256.Alg()) {
		i.log().Error("token_validation_failed", "reason", "unexpected algorithm", "alg", alg)
		return nil, false
	}
	return &claims, true
}

// Authenticate fully validates a bearer token, lifetime included.
func (i *Issuer) Authenticate(tokenStr string) (*AccessClaims, error) {
	var claims AccessClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, i.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !tkn.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing userId claim", ErrInvalidToken)
	}
	return &claims, nil
}
