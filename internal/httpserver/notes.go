package httpserver

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/notes/internal/middleware/auth"
	"github.com/Skotchmaster/notes/internal/models"
	"github.com/Skotchmaster/notes/internal/repo"
	"github.com/Skotchmaster/notes/internal/service"
	"github.com/Skotchmaster/notes/internal/transport"
	"github.com/Skotchmaster/notes/internal/util"
)

type NoteHandler struct {
	Notes *service.NoteService
}

func (h *NoteHandler) CreateNote(c echo.Context) error {
	var req transport.CreateNoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	n, err := h.Notes.Create(c.Request().Context(), auth.UserID(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, n)
}

// GetNotes lists every note. Admin only.
func (h *NoteHandler) GetNotes(c echo.Context) error {
	return h.list(c, "")
}

func (h *NoteHandler) GetUserNotes(c echo.Context) error {
	return h.list(c, auth.UserID(c))
}

func (h *NoteHandler) GetNote(c echo.Context) error {
	n, err := h.Notes.Get(c.Request().Context(), c.Param("id"), "")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, n)
}

func (h *NoteHandler) UpdateNote(c echo.Context) error {
	return h.update(c, "")
}

func (h *NoteHandler) UpdateUserNote(c echo.Context) error {
	return h.update(c, auth.UserID(c))
}

func (h *NoteHandler) DeleteNote(c echo.Context) error {
	return h.delete(c, "")
}

func (h *NoteHandler) DeleteUserNote(c echo.Context) error {
	return h.delete(c, auth.UserID(c))
}

// Search matches the caller's notes, or all notes for admins.
func (h *NoteHandler) Search(c echo.Context) error {
	q := c.QueryParam("q")
	if err := validation.Validate(q, validation.Required); err != nil {
		return validationError("q", err)
	}

	userID := auth.UserID(c)
	if auth.HasRole(c, string(models.RoleAdmin)) {
		userID = ""
	}

	page, size := pageParams(c)
	total, items, err := h.Notes.Search(c.Request().Context(), userID, q, page, size)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, util.NewPagedResponse(items, page, size, total, endpoint(c), c.QueryParams()))
}

func (h *NoteHandler) list(c echo.Context, userID string) error {
	f := repo.NoteFilter{
		UserID:  userID,
		Title:   c.QueryParam("title"),
		Content: c.QueryParam("content"),
	}

	page, size := pageParams(c)
	total, items, err := h.Notes.List(c.Request().Context(), f, page, size)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, util.NewPagedResponse(items, page, size, total, endpoint(c), c.QueryParams()))
}

func (h *NoteHandler) update(c echo.Context, userID string) error {
	var req transport.UpdateNoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	n, err := h.Notes.Update(c.Request().Context(), userID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, n)
}

func (h *NoteHandler) delete(c echo.Context, userID string) error {
	var req transport.DeleteNoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := h.Notes.Delete(c.Request().Context(), userID, req); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func pageParams(c echo.Context) (int, int) {
	return util.Normalize(
		util.ParseIntDefault(c.QueryParam("pageNumber"), 1),
		util.ParseIntDefault(c.QueryParam("pageSize"), util.DefaultPageSize),
	)
}

func endpoint(c echo.Context) string {
	return c.Scheme() + "://" + c.Request().Host + c.Request().URL.Path
}
