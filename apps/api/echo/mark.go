package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/jounabs52/datesheet/core/mark"
)

type markApi struct {
	svc      *mark.Service
	validate *validator.Validate
}

func registerMarkAPI(g *echo.Group, svc *mark.Service, validate *validator.Validate) {
	api := markApi{svc: svc, validate: validate}

	mg := g.Group("/marks")
	mg.POST("", api.submit)
	mg.GET("", api.query)
	mg.GET("/summary", api.summary)
}

// Handlers

func (api *markApi) submit(ctx echo.Context) error {
	var data mark.Submission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Submission")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	res, err := api.svc.Submit(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "submitting marks")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *markApi) query(ctx echo.Context) error {
	var filter mark.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}

	results, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying marks")
	}
	return ctx.JSON(http.StatusOK, results)
}

func (api *markApi) summary(ctx echo.Context) error {
	summaries, err := api.svc.Summary(ctx.Request().Context(), ctx.QueryParam("test_id"))
	if err != nil {
		return errors.Wrap(err, "summarizing marks")
	}
	return ctx.JSON(http.StatusOK, summaries)
}
