package authclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/notes/internal/httpserver"
	"github.com/Skotchmaster/notes/internal/logging"
	"github.com/Skotchmaster/notes/internal/repo"
	"github.com/Skotchmaster/notes/internal/service"
	"github.com/Skotchmaster/notes/internal/testutil"
	"github.com/Skotchmaster/notes/internal/tokens"
)

func newAPI(t *testing.T) *Client {
	t.Helper()

	r := repo.New(testutil.NewSQLite(t))
	iss := tokens.NewIssuer([]byte("authclient-test-secret-0123456789"), time.Hour, r, r, logging.Discard())
	issuedAt := time.Now().Add(-2 * time.Hour)
	iss.Now = func() time.Time { return issuedAt }

	e := echo.New()
	e.HTTPErrorHandler = httpserver.HTTPErrorHandler
	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:   &httpserver.AuthHandler{Auth: &service.AuthService{Users: r, RefreshTokens: r, Issuer: iss}},
		NoteHandler:   &httpserver.NoteHandler{Notes: &service.NoteService{Notes: r}},
		HealthHandler: &httpserver.HealthHandler{},
		Tokens:        iss,
	})

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL + "/")
}

func TestClient_Flow(t *testing.T) {
	t.Parallel()

	c := newAPI(t)
	ctx := context.Background()

	reg, err := c.Register(ctx, "alice", "alice@example.com", "Aa1aaaaa")
	require.NoError(t, err)
	assert.NotEmpty(t, reg.Token)

	_, err = c.Login(ctx, "alice@example.com", "wrong-1")
	assert.ErrorIs(t, err, ErrRejected)

	login, err := c.Login(ctx, "alice@example.com", "Aa1aaaaa")
	require.NoError(t, err)

	rotated, err := c.RefreshTokens(ctx, login.Token, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, rotated.RefreshToken)

	res, err := c.RefreshTokens(ctx, login.Token, login.RefreshToken)
	assert.ErrorIs(t, err, ErrRejected)
	assert.Equal(t, []string{"Invalid token"}, res.Errors)
}

func TestClient_UnexpectedStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	_, err := NewClient(srv.URL).Login(context.Background(), "a@b.c", "x")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRejected)
}
