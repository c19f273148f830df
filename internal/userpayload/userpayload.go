package userpayload

import (
	"errors"
	"net/http"

	"github.com/SergeyParamoshkin/postsclient/internal/user"
)

//--
// Request and Response payloads for /register and /login.
//--

type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Bind on CredentialsRequest will run after the unmarshalling is complete.
func (c *CredentialsRequest) Bind(r *http.Request) error {
	if c.Username == "" || c.Password == "" {
		return errors.New("username and password are required")
	}

	return nil
}

type UserPayload struct {
	*user.User
	Message string `json:"message"`
}

func NewUserPayloadResponse(u *user.User) *UserPayload {
	return &UserPayload{User: u}
}

func (u *UserPayload) Render(w http.ResponseWriter, r *http.Request) error {
	u.Message = "User registered successfully."

	return nil
}

type LoginPayload struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func NewLoginPayload(token string) *LoginPayload {
	return &LoginPayload{AccessToken: token}
}

func (l *LoginPayload) Render(w http.ResponseWriter, r *http.Request) error {
	l.TokenType = "bearer"

	return nil
}
