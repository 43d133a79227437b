package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/jounabs52/datesheet/core"
	"github.com/jounabs52/datesheet/core/exam"
)

var errExamNotFoundInCtx = errors.New("exam object not found in echo.Context")

// ctxExamMiddleware loads the exam of the ":id" param into the "object" context key.
func ctxExamMiddleware(svc *exam.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			e, err := svc.Get(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				if core.IsNotFound(err) {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding exam by ID")
			}
			ctx.Set("object", e)
			return next(ctx)
		}
	}
}

func getContextExam(ctx echo.Context) (exam.Exam, error) {
	e, ok := ctx.Get("object").(exam.Exam)
	if !ok {
		return exam.Exam{}, errors.Wrap(errExamNotFoundInCtx, "retrieving object from context")
	}
	return e, nil
}
