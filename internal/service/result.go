package service

import "github.com/Skotchmaster/notes/internal/tokens"

const (
	MsgInvalidToken       = "Invalid token"
	MsgInvalidCredentials = "The email or password is invalid"
	MsgEmailTaken         = "User with this email address already exists"
)

// AuthResult is the outcome of register, login and refresh. Exactly one of
// the token pair or Errors is populated.
type AuthResult struct {
	Success      bool     `json:"success"`
	Token        string   `json:"token,omitempty"`
	RefreshToken string   `json:"refreshToken,omitempty"`
	Errors       []string `json:"errors,omitempty"`
}

func succeeded(p *tokens.Pair) AuthResult {
	return AuthResult{Success: true, Token: p.AccessToken, RefreshToken: p.RefreshToken.Token}
}

func failed(errs ...string) AuthResult {
	return AuthResult{Success: false, Errors: errs}
}
