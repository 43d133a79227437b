package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/jounabs52/datesheet/core/exam"
)

type slotApi struct {
	svc      *exam.Service
	validate *validator.Validate
}

func registerSlotAPI(g *echo.Group, svc *exam.Service, validate *validator.Validate) {
	api := slotApi{svc: svc, validate: validate}

	sg := g.Group("/slots/:id")
	sg.GET("", api.retrieve)
	sg.PUT("", api.assign)
	sg.DELETE("/subject", api.clear)
}

// Handlers

func (api *slotApi) retrieve(ctx echo.Context) error {
	slot, err := api.svc.GetSlot(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding slot by ID")
	}
	return ctx.JSON(http.StatusOK, newSlotView(slot))
}

func (api *slotApi) assign(ctx echo.Context) error {
	var data exam.AssignSlot
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssignSlot")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	slot, err := api.svc.Assign(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "assigning slot")
	}
	return ctx.JSON(http.StatusOK, newSlotView(slot))
}

func (api *slotApi) clear(ctx echo.Context) error {
	slot, err := api.svc.Clear(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "clearing slot")
	}
	return ctx.JSON(http.StatusOK, newSlotView(slot))
}
