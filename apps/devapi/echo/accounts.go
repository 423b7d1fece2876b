package echoapi

import (
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type accountApi struct {
	srv *Server
}

func registerAccountAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *Server) {
	api := accountApi{srv: s}

	ug := g.Group("/users", jwt, adminMiddleware())
	ug.GET("", api.query)

	dg := ug.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
}

func (api *accountApi) query(ctx echo.Context) error {
	accts := api.srv.db.QueryAllAccounts()
	sort.Slice(accts, func(i, j int) bool { return accts[i].CreatedAt.Before(accts[j].CreatedAt) })

	start, end := pageBounds(ctx, len(accts))
	return ctx.JSON(http.StatusOK, echo.Map{
		"success": true,
		"users":   accts[start:end],
		"total":   len(accts),
	})
}

func (api *accountApi) retrieve(ctx echo.Context) error {
	acct, err := api.srv.db.GetAccountByID(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "data": acct})
}

func (api *accountApi) update(ctx echo.Context) error {
	acct, err := api.srv.db.GetAccountByID(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	var data UpdateAccountRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAccountRequest")
	}
	if err = data.Validate(api.srv.deps.Validate); err != nil {
		return err
	}

	if data.Name != "" {
		acct.Name = data.Name
	}
	if data.Role != "" {
		acct.Role = data.Role
	}
	if data.Theme != "" {
		acct.Theme = data.Theme
	}
	if data.Currency != "" {
		acct.Currency = data.Currency
	}

	acct, err = api.srv.db.UpdateAccount(acct)
	if err != nil {
		return errors.Wrap(err, "updating account")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "data": acct})
}

func (api *accountApi) destroy(ctx echo.Context) error {
	if err := api.srv.db.DeleteAccount(ctx.Param("id")); err != nil {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "message": "deleted"})
}
