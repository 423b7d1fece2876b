package echoapi

import (
	"encoding/json"
	"mime"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/trezcool/darasa/core"
)

// jsonFallbackBinder decodes bodies that arrive with a bare multipart
// content type (no boundary) as JSON. The Darasa clients send
// `Content-Type: multipart/form-data` on every request, JSON payloads
// included; real uploads carry a boundary and keep going through the
// default binder.
type jsonFallbackBinder struct {
	std echo.DefaultBinder
}

func (b *jsonFallbackBinder) Bind(i interface{}, ctx echo.Context) error {
	req := ctx.Request()
	ctype := req.Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(ctype, echo.MIMEMultipartForm) {
		if _, params, err := mime.ParseMediaType(ctype); err != nil || params["boundary"] == "" {
			if req.ContentLength == 0 {
				return nil
			}
			if err := json.NewDecoder(req.Body).Decode(i); err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, err.Error())
			}
			return nil
		}
	}
	return b.std.Bind(i, ctx)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate(validate *validator.Validate) error {
	r.Email = core.CleanString(r.Email, true /* lower */)
	return validate.Struct(r)
}

type RegisterRequest struct {
	Name            string `json:"name" validate:"required,alphanum_"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	Role            string `json:"role" validate:"omitempty,oneof=student instructor"`
}

func (r *RegisterRequest) Validate(validate *validator.Validate) error {
	r.Name = core.CleanString(r.Name)
	r.Email = core.CleanString(r.Email, true /* lower */)
	r.Role = core.CleanString(r.Role, true /* lower */)
	return validate.Struct(r)
}

type ThemeRequest struct {
	Theme string `json:"theme" validate:"required,oneof=light dark"`
}

func (r *ThemeRequest) Validate(validate *validator.Validate) error {
	r.Theme = core.CleanString(r.Theme, true /* lower */)
	return validate.Struct(r)
}

type UpdateAccountRequest struct {
	Name     string `json:"name"`
	Role     string `json:"role" validate:"omitempty,oneof=student instructor admin"`
	Theme    string `json:"theme" validate:"omitempty,oneof=light dark"`
	Currency string `json:"currency"`
}

func (r *UpdateAccountRequest) Validate(validate *validator.Validate) error {
	r.Name = core.CleanString(r.Name)
	r.Role = core.CleanString(r.Role, true /* lower */)
	r.Theme = core.CleanString(r.Theme, true /* lower */)
	r.Currency = core.CleanString(r.Currency, true /* lower */)
	return validate.Struct(r)
}
