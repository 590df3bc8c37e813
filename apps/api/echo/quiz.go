package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/progress"
	"github.com/trezcool/darasa/core/quiz"
	"github.com/trezcool/darasa/core/user"
)

type quizApi struct {
	svc         *quiz.Service
	courseSvc   *course.Service
	progressSvc *progress.Service
	userSvc     user.Service
	validate    *validator.Validate
}

func registerQuizAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := quizApi{
		svc:         deps.QuizSvc,
		courseSvc:   deps.CourseSvc,
		progressSvc: deps.ProgressSvc,
		userSvc:     deps.UserSvc,
		validate:    deps.Validate,
	}

	qg := g.Group("/quizzes", jwt)
	qg.POST("", api.create, instructorMiddleware())
	qg.GET("/course/:courseID", api.queryByCourse)
	qg.GET("/:id", api.retrieve)
	qg.DELETE("/:id", api.destroy)
	qg.POST("/:id/submit", api.submit)
}

// Handlers

func (api *quizApi) create(ctx echo.Context) error {
	var data quiz.NewQuiz
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuiz")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	crs, ctxUsr, err := api.getCourse(ctx, data.CourseID)
	if err != nil {
		return err
	}
	if !crs.CanEdit(ctxUsr) {
		return errHttpForbidden
	}

	qz, err := api.svc.Create(ctx.Request().Context(), ctxUsr, data)
	if err != nil {
		return errors.Wrap(err, "creating quiz")
	}
	return ctx.JSON(http.StatusCreated, qz)
}

// queryByCourse lists a course's quizzes; answer keys are stripped for
// students.
func (api *quizApi) queryByCourse(ctx echo.Context) error {
	crs, ctxUsr, err := api.getCourse(ctx, ctx.Param("courseID"))
	if err != nil {
		return err
	}

	quizzes, err := api.svc.QueryByCourse(ctx.Request().Context(), crs.ID)
	if err != nil {
		return errors.Wrap(err, "querying quizzes")
	}
	if quizzes == nil {
		quizzes = []quiz.Quiz{}
	}
	if !crs.CanEdit(ctxUsr) {
		for i, qz := range quizzes {
			quizzes[i] = qz.Sanitized()
		}
	}
	return ctx.JSON(http.StatusOK, quizzes)
}

func (api *quizApi) retrieve(ctx echo.Context) error {
	qz, crs, ctxUsr, err := api.getQuiz(ctx)
	if err != nil {
		return err
	}
	if !crs.CanEdit(ctxUsr) {
		qz = qz.Sanitized()
	}
	return ctx.JSON(http.StatusOK, qz)
}

func (api *quizApi) destroy(ctx echo.Context) error {
	qz, crs, ctxUsr, err := api.getQuiz(ctx)
	if err != nil {
		return err
	}
	if !crs.CanEdit(ctxUsr) {
		return errHttpForbidden
	}

	if err := api.svc.Delete(ctx.Request().Context(), qz.ID); err != nil {
		return errors.Wrap(err, "deleting quiz")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// submit scores an enrolled student's answer sheet and marks the quiz
// complete on their progress record. Resubmission returns the existing
// submission unchanged.
func (api *quizApi) submit(ctx echo.Context) error {
	qz, crs, ctxUsr, err := api.getQuiz(ctx)
	if err != nil {
		return err
	}
	if !crs.IsEnrolled(ctxUsr.ID) {
		return errHttpForbidden
	}

	var data quiz.NewSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubmission")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sub, err := api.svc.Submit(ctx.Request().Context(), qz, ctxUsr, data)
	if err != nil {
		return errors.Wrap(err, "submitting quiz")
	}

	if _, err := api.progressSvc.CompleteQuiz(ctx.Request().Context(), ctxUsr.ID, crs.ID, qz.ID); err != nil {
		return errors.Wrap(err, "recording quiz completion")
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *quizApi) getCourse(ctx echo.Context, id string) (course.Course, user.User, error) {
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

func (api *quizApi) getQuiz(ctx echo.Context) (quiz.Quiz, course.Course, user.User, error) {
	qz, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == quiz.ErrNotFound {
			return quiz.Quiz{}, course.Course{}, user.User{}, errHttpNotFound
		}
		return quiz.Quiz{}, course.Course{}, user.User{}, errors.Wrap(err, "finding quiz by ID")
	}

	crs, ctxUsr, err := api.getCourse(ctx, qz.CourseID)
	if err != nil {
		return quiz.Quiz{}, course.Course{}, user.User{}, err
	}
	return qz, crs, ctxUsr, nil
}
