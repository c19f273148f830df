package model

// Credentials are sent to /register and /login.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (c Credentials) Validate() error {
	return validate.Struct(c)
}

// Endpoint is the base URL every request is resolved against.
type Endpoint struct {
	BaseURL string `validate:"required,url"`
}

func (e Endpoint) Validate() error {
	return validate.Struct(e)
}
