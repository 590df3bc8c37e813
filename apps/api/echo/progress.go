package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/material"
	"github.com/trezcool/darasa/core/progress"
	"github.com/trezcool/darasa/core/quiz"
	"github.com/trezcool/darasa/core/user"
)

type progressApi struct {
	svc       *progress.Service
	courseSvc *course.Service
	matSvc    *material.Service
	quizSvc   *quiz.Service
	userSvc   user.Service
}

func registerProgressAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := progressApi{
		svc:       deps.ProgressSvc,
		courseSvc: deps.CourseSvc,
		matSvc:    deps.MaterialSvc,
		quizSvc:   deps.QuizSvc,
		userSvc:   deps.UserSvc,
	}

	pg := g.Group("/progress", jwt)
	pg.GET("/course/:courseID", api.retrieve)
	pg.GET("/course/:courseID/analytics", api.analytics)
	pg.POST("/materials/:id/complete", api.completeMaterial)
	pg.POST("/quizzes/:id/complete", api.completeQuiz)
}

// Handlers

// retrieve returns ctxUser's own progress record for the course,
// creating an empty one on first access.
func (api *progressApi) retrieve(ctx echo.Context) error {
	crs, ctxUsr, err := api.getCourse(ctx, ctx.Param("courseID"))
	if err != nil {
		return err
	}
	if !ctxUsr.IsAdmin() && !crs.IsEnrolled(ctxUsr.ID) {
		return errHttpForbidden
	}

	rec, err := api.svc.Get(ctx.Request().Context(), ctxUsr.ID, crs.ID)
	if err != nil {
		return errors.Wrap(err, "getting progress record")
	}
	return ctx.JSON(http.StatusOK, rec)
}

// analytics aggregates the course's progress and quiz statistics for its
// owner or an admin.
func (api *progressApi) analytics(ctx echo.Context) error {
	crs, ctxUsr, err := api.getCourse(ctx, ctx.Param("courseID"))
	if err != nil {
		return err
	}
	if !crs.CanEdit(ctxUsr) {
		return errHttpForbidden
	}

	an, err := api.svc.Analytics(ctx.Request().Context(), crs.ID, len(crs.StudentIDs))
	if err != nil {
		return errors.Wrap(err, "computing analytics")
	}
	return ctx.JSON(http.StatusOK, an)
}

func (api *progressApi) completeMaterial(ctx echo.Context) error {
	mat, err := api.matSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == material.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding material by ID")
	}

	crs, ctxUsr, err := api.getCourse(ctx, mat.CourseID)
	if err != nil {
		return err
	}
	if !crs.IsEnrolled(ctxUsr.ID) {
		return errHttpForbidden
	}

	rec, err := api.svc.CompleteMaterial(ctx.Request().Context(), ctxUsr.ID, crs.ID, mat.ID)
	if err != nil {
		return errors.Wrap(err, "completing material")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *progressApi) completeQuiz(ctx echo.Context) error {
	qz, err := api.quizSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == quiz.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding quiz by ID")
	}

	crs, ctxUsr, err := api.getCourse(ctx, qz.CourseID)
	if err != nil {
		return err
	}
	if !crs.IsEnrolled(ctxUsr.ID) {
		return errHttpForbidden
	}

	rec, err := api.svc.CompleteQuiz(ctx.Request().Context(), ctxUsr.ID, crs.ID, qz.ID)
	if err != nil {
		return errors.Wrap(err, "completing quiz")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *progressApi) getCourse(ctx echo.Context, id string) (course.Course, user.User, error) {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return course.Course{}, user.User{}, errors.Wrap(err, "getting context user")
	}

	crs, err := api.courseSvc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return course.Course{}, user.User{}, errHttpNotFound
		}
		return course.Course{}, user.User{}, errors.Wrap(err, "finding course by ID")
	}
	if !crs.CanView(ctxUsr) {
		return course.Course{}, user.User{}, errHttpNotFound
	}
	return crs, ctxUsr, nil
}
