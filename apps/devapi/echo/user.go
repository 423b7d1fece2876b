package echoapi

import (
	"fmt"
	"net/http"
	"net/mail"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

type authApi struct {
	srv *Server
}

func registerAuthAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *Server) {
	api := authApi{srv: s}

	// un-authed endpoints
	g.POST("/login", api.login)
	g.POST("/register", api.register)

	// authed endpoints
	ag := g.Group("", jwt)
	ag.POST("/logout", api.logout)
	ag.POST("/toggle-theme", api.toggleTheme)
}

// Handlers

func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.srv.deps.Validate); err != nil {
		return err
	}

	acct, err := api.srv.authenticate(data.Email, data.Password)
	if err != nil {
		// structured rejection, not a transport error
		return ctx.JSON(http.StatusOK, echo.Map{"success": false, "message": "invalid credentials"})
	}

	token, err := api.srv.generateToken(api.srv.getAccountClaims(acct))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "logged in",
		"token":   token,
		"user":    acct,
	})
}

func (api *authApi) register(ctx echo.Context) error {
	var data RegisterRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RegisterRequest")
	}
	if err := data.Validate(api.srv.deps.Validate); err != nil {
		return err
	}

	role := data.Role
	if role == "" {
		role = "student"
	}
	acct := Account{
		Name:     data.Name,
		Email:    data.Email,
		Role:     role,
		Theme:    api.srv.deps.Conf.DefaultTheme,
		Currency: api.srv.deps.Conf.DefaultCurrency,
	}
	if err := acct.SetPassword(data.Password); err != nil {
		return errors.Wrap(err, "setting password")
	}

	acct, err := api.srv.db.CreateAccount(acct)
	if err != nil {
		if err == errEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return errors.Wrap(err, "creating account")
	}

	api.srv.deps.EmailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: acct.Name, Address: acct.Email}},
		Subject: "Welcome aboard!",
		BodyStr: fmt.Sprintf("Hi %s,\n\nYour account is ready. Happy learning!", acct.Name),
	})

	token, err := api.srv.generateToken(api.srv.getAccountClaims(acct))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "registered",
		"token":   token,
		"user":    acct,
	})
}

func (api *authApi) logout(ctx echo.Context) error {
	// tokens are stateless; nothing to invalidate server side
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "message": "logged out"})
}

func (api *authApi) toggleTheme(ctx echo.Context) error {
	var data ThemeRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ThemeRequest")
	}
	if err := data.Validate(api.srv.deps.Validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	acct, err := api.srv.db.GetAccountByID(claims.Subject)
	if err != nil {
		return errHttpNotFound
	}
	acct.Theme = data.Theme
	if _, err = api.srv.db.UpdateAccount(acct); err != nil {
		return errors.Wrap(err, "updating account")
	}

	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "message": "theme updated"})
}
