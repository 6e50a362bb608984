package auth

import (
	errors "github.com/frahmantamala/personal-finance/internal"
	"github.com/frahmantamala/personal-finance/internal/core/common/validation"
)

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (d LoginDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("username", d.Username).Required()
	v.Field("password", d.Password).Required()
	return v.Validate()
}

type LoginResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"msg"`
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}
