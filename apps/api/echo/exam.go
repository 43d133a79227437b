package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/jounabs52/datesheet/core/exam"
)

type examApi struct {
	svc      *exam.Service
	validate *validator.Validate
}

func registerExamAPI(g *echo.Group, svc *exam.Service, validate *validator.Validate) {
	api := examApi{svc: svc, validate: validate}

	eg := g.Group("/exams")
	eg.POST("/calendar", api.createCalendar)
	eg.POST("/direct", api.createDirect)
	eg.GET("", api.query)

	// detail endpoints
	dg := eg.Group("/:id", ctxExamMiddleware(api.svc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.PUT("/subjects", api.updateDirect)
	dg.PUT("/status", api.setStatus)
	dg.GET("/slots", api.slots)
	dg.GET("/grid", api.grid)
}

type (
	CalendarExamResponse struct {
		Exam  exam.Exam `json:"exam"`
		Slots int       `json:"slots"` // number of slots written
	}

	DirectExamResponse struct {
		Exam  exam.Exam  `json:"exam"`
		Slots []slotView `json:"slots"`
	}

	slotView struct {
		exam.Slot
		Mode string `json:"mode"`
	}
)

func newSlotView(s exam.ScheduleSlot) slotView {
	return slotView{Slot: s.Stored(), Mode: s.Mode()}
}

func directSlotViews(slots []exam.DirectSlot) []slotView {
	views := make([]slotView, 0, len(slots))
	for _, s := range slots {
		views = append(views, newSlotView(s))
	}
	return views
}

// Handlers

func (api *examApi) createCalendar(ctx echo.Context) error {
	var data exam.NewCalendarExam
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCalendarExam")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	e, written, err := api.svc.CreateCalendarExam(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating calendar exam")
	}
	return ctx.JSON(http.StatusCreated, CalendarExamResponse{Exam: e, Slots: written})
}

func (api *examApi) createDirect(ctx echo.Context) error {
	var data exam.NewDirectExam
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDirectExam")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	e, slots, err := api.svc.CreateDirectExam(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating direct exam")
	}
	return ctx.JSON(http.StatusCreated, DirectExamResponse{Exam: e, Slots: directSlotViews(slots)})
}

func (api *examApi) query(ctx echo.Context) error {
	filter := new(exam.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	exams, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying exams")
	}
	if exams == nil {
		exams = []exam.Exam{}
	}
	return ctx.JSON(http.StatusOK, exams)
}

func (api *examApi) retrieve(ctx echo.Context) error {
	e, err := getContextExam(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, e)
}

func (api *examApi) update(ctx echo.Context) error {
	e, err := getContextExam(ctx)
	if err != nil {
		return err
	}

	var data exam.UpdateExam
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateExam")
	}
	if err = data.Validate(api.validate, e); err != nil {
		return err
	}

	e, err = api.svc.Update(ctx.Request().Context(), e.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating exam")
	}
	return ctx.JSON(http.StatusOK, e)
}

func (api *examApi) updateDirect(ctx echo.Context) error {
	e, err := getContextExam(ctx)
	if err != nil {
		return err
	}

	var data exam.UpdateDirectExam
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateDirectExam")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	e, slots, err := api.svc.UpdateDirectExam(ctx.Request().Context(), e.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating direct exam")
	}
	return ctx.JSON(http.StatusOK, DirectExamResponse{Exam: e, Slots: directSlotViews(slots)})
}

func (api *examApi) setStatus(ctx echo.Context) error {
	e, err := getContextExam(ctx)
	if err != nil {
		return err
	}

	var data exam.UpdateStatus
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStatus")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	e, err = api.svc.SetStatus(ctx.Request().Context(), e.ID, data.Status)
	if err != nil {
		return errors.Wrap(err, "setting exam status")
	}
	return ctx.JSON(http.StatusOK, e)
}

func (api *examApi) destroy(ctx echo.Context) error {
	e, err := getContextExam(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), e.ID); err != nil {
		return errors.Wrap(err, "deleting exam")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *examApi) slots(ctx echo.Context) error {
	e, err := getContextExam(ctx)
	if err != nil {
		return err
	}

	var filter exam.SlotFilter
	if err = ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to SlotFilter")
	}

	slots, err := api.svc.Slots(ctx.Request().Context(), e, filter)
	if err != nil {
		return errors.Wrap(err, "listing slots")
	}
	views := make([]slotView, 0, len(slots))
	for _, s := range slots {
		views = append(views, newSlotView(s))
	}
	return ctx.JSON(http.StatusOK, views)
}

func (api *examApi) grid(ctx echo.Context) error {
	e, err := getContextExam(ctx)
	if err != nil {
		return err
	}

	grid, err := api.svc.Grid(ctx.Request().Context(), e.ID)
	if err != nil {
		return errors.Wrap(err, "building grid")
	}
	return ctx.JSON(http.StatusOK, grid)
}
