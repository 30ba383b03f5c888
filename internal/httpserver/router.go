package httpserver

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/notes/internal/cache"
	"github.com/Skotchmaster/notes/internal/metrics"
	"github.com/Skotchmaster/notes/internal/middleware/auth"
	"github.com/Skotchmaster/notes/internal/models"
)

type Deps struct {
	AuthHandler   *AuthHandler
	NoteHandler   *NoteHandler
	HealthHandler *HealthHandler
	Tokens        auth.Authenticator
	// Cache is nil when response caching is disabled.
	Cache    cache.Store
	CacheTTL time.Duration
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", d.HealthHandler.Live)
	e.GET("/health/ready", d.HealthHandler.Ready)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	v1 := e.Group("/api/v1")

	login := auth.RequireLogin(d.Tokens)
	admin := auth.RequireRole(string(models.RoleAdmin))
	cached := cache.Middleware(d.Cache, d.CacheTTL)

	identity := v1.Group("/identity")

	identity.POST("/register", d.AuthHandler.Register)
	identity.POST("/login", d.AuthHandler.Login)
	identity.POST("/refreshToken", d.AuthHandler.Refresh)
	identity.POST("/registerAdmin", d.AuthHandler.RegisterAdmin, login, admin)
	identity.POST("/logout", d.AuthHandler.LogOut, login)

	notes := v1.Group("/notes", login, auth.RequireRole(string(models.RoleUser)))

	notes.POST("", d.NoteHandler.CreateNote)
	notes.GET("/user", d.NoteHandler.GetUserNotes, cached)
	notes.PUT("/user", d.NoteHandler.UpdateUserNote)
	notes.DELETE("/user", d.NoteHandler.DeleteUserNote)
	notes.GET("/search", d.NoteHandler.Search)

	notes.GET("", d.NoteHandler.GetNotes, admin, cached)
	notes.GET("/:id", d.NoteHandler.GetNote, admin, cached)
	notes.PUT("", d.NoteHandler.UpdateNote, admin)
	notes.DELETE("", d.NoteHandler.DeleteNote, admin)
}
