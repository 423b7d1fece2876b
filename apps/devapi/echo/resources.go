package echoapi

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

type collectionApi struct {
	col *collection
}

func registerCollectionAPI(g *echo.Group, jwt echo.MiddlewareFunc, col *collection) {
	api := collectionApi{col: col}

	cg := g.Group("/"+col.name, jwt)
	cg.GET("", api.list)
	cg.POST("", api.create)

	dg := cg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
}

func (api *collectionApi) list(ctx echo.Context) error {
	recs := api.col.All()
	sort.Slice(recs, func(i, j int) bool {
		ci, _ := recs[i]["created_at"].(string)
		cj, _ := recs[j]["created_at"].(string)
		if ci != cj {
			return ci < cj
		}
		ii, _ := recs[i]["id"].(string)
		ij, _ := recs[j]["id"].(string)
		return ii < ij
	})

	start, end := pageBounds(ctx, len(recs))
	return ctx.JSON(http.StatusOK, echo.Map{
		"success":    true,
		api.col.name: recs[start:end],
		"total":      len(recs),
	})
}

func (api *collectionApi) create(ctx echo.Context) error {
	data := echo.Map{}
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding record")
	}
	if len(data) == 0 {
		return core.NewValidationError(errors.New("empty payload"))
	}

	rec := api.col.Create(data)
	return ctx.JSON(http.StatusCreated, echo.Map{"success": true, "message": "created", "data": rec})
}

func (api *collectionApi) retrieve(ctx echo.Context) error {
	rec, err := api.col.Get(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "data": rec})
}

func (api *collectionApi) update(ctx echo.Context) error {
	data := echo.Map{}
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding record")
	}

	rec, err := api.col.Update(ctx.Param("id"), data)
	if err != nil {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "data": rec})
}

func (api *collectionApi) destroy(ctx echo.Context) error {
	if err := api.col.Delete(ctx.Param("id")); err != nil {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "message": "deleted"})
}

// pageBounds applies the `current_page`/`per_page` query parameters; absent
// parameters mean the whole collection.
func pageBounds(ctx echo.Context, total int) (int, int) {
	perPage, err := strconv.Atoi(ctx.QueryParam("per_page"))
	if err != nil || perPage < 1 {
		return 0, total
	}
	page, err := strconv.Atoi(ctx.QueryParam("current_page"))
	if err != nil || page < 1 {
		page = 1
	}

	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return start, end
}
