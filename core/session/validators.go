package session

import (
	"errors"
	"strings"
	"sync"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

var (
	validate   *validator.Validate
	translator ut.Translator
	vInit      sync.Once
)

func initValidators() {
	vInit.Do(func() {
		validate = validator.New()
		translator = core.NewTranslator()
		core.InitValidators(validate, translator)
	})
}

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (c *Credentials) Validate() error {
	initValidators()
	c.Email = core.CleanString(c.Email, true /* lower */)
	return translateErr(validate.Struct(c))
}

// Registration is the register payload. Role is what the form submitted;
// the Store ignores it when persisting (see Store.Register).
type Registration struct {
	Name            string `json:"name" validate:"required,alphanum_"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	Role            string `json:"role" validate:"omitempty,oneof=student instructor"`
}

func (r *Registration) Validate() error {
	initValidators()
	r.Name = core.CleanString(r.Name)
	r.Email = core.CleanString(r.Email, true /* lower */)
	r.Role = core.CleanString(r.Role, true /* lower */)
	return translateErr(validate.Struct(r))
}

// translateErr flattens validator errors into the single human-readable
// message a Result carries.
func translateErr(err error) error {
	if err == nil {
		return nil
	}
	vErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(vErrs))
	for _, vErr := range vErrs {
		msgs = append(msgs, vErr.Field()+": "+vErr.Translate(translator))
	}
	return core.NewValidationError(errors.New(strings.Join(msgs, "; ")))
}
