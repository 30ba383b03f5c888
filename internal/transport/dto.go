package transport

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	AccessToken  string `json:"accessToken"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// Presented returns the access token, accepting "token" as an alias.
func (r RefreshRequest) Presented() string {
	if r.AccessToken != "" {
		return r.AccessToken
	}
	return r.Token
}

type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (r LogoutRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RefreshToken, validation.Required, is.UUID),
	)
}

type CreateNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (r CreateNoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.RuneLength(1, 50)),
		validation.Field(&r.Content, validation.Required, validation.RuneLength(1, 255)),
	)
}

type UpdateNoteRequest struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (r UpdateNoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.Required, is.UUID),
		validation.Field(&r.Title, validation.Required, validation.RuneLength(1, 50)),
		validation.Field(&r.Content, validation.Required, validation.RuneLength(1, 255)),
	)
}

type DeleteNoteRequest struct {
	ID string `json:"id"`
}

func (r DeleteNoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.Required, is.UUID),
	)
}
