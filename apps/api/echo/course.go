package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/user"
)

type courseApi struct {
	svc      *course.Service
	userSvc  user.Service
	validate *validator.Validate
}

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := courseApi{
		svc:      deps.CourseSvc,
		userSvc:  deps.UserSvc,
		validate: deps.Validate,
	}

	cg := g.Group("/courses", jwt)
	cg.POST("", api.create, instructorMiddleware())
	cg.GET("", api.query)
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update)
	cg.DELETE("/:id", api.destroy)
	cg.POST("/:id/students/:userID", api.enroll)
	cg.DELETE("/:id/students/:userID", api.unenroll)
}

// Handlers

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	crs, err := api.svc.Create(ctx.Request().Context(), ctxUsr, data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *courseApi) query(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	filter := new(course.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []course.Course{})
	}
	filter.Clean()

	courses, err := api.svc.QueryVisible(ctx.Request().Context(), ctxUsr, filter)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	crs, _, err := api.getViewableCourse(ctx, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) update(ctx echo.Context) error {
	crs, _, err := api.getEditableCourse(ctx, ctx.Param("id"))
	if err != nil {
		return err
	}

	var data course.UpdateCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	if err := data.Validate(crs, api.validate); err != nil {
		return err
	}

	crs, err = api.svc.Update(ctx.Request().Context(), crs.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	crs, _, err := api.getEditableCourse(ctx, ctx.Param("id"))
	if err != nil {
		return err
	}

	if err := api.svc.Delete(ctx.Request().Context(), crs.ID); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// enroll adds a student to the course; only the owner and admins may
// manage the roster.
func (api *courseApi) enroll(ctx echo.Context) error {
	crs, _, studentID, err := api.getEnrollmentParties(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Enroll(ctx.Request().Context(), crs, studentID); err != nil {
		return errors.Wrap(err, "enrolling student")
	}

	crs, err = api.svc.GetByID(ctx.Request().Context(), crs.ID)
	if err != nil {
		return errors.Wrap(err, "reloading course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) unenroll(ctx echo.Context) error {
	crs, _, studentID, err := api.getEnrollmentParties(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Unenroll(ctx.Request().Context(), crs, studentID); err != nil {
		return errors.Wrap(err, "unenrolling student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// getViewableCourse loads the course and masks its existence with a 404
// when ctxUser may not see it.
func (api *courseApi) getViewableCourse(ctx echo.Context, id string) (course.Course, user.User, error) {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return course.Course{}, user.User{}, errors.Wrap(err, "getting context user")
	}

	crs, err := api.svc.GetByID(ctx.Request().Context(), id)
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

// getEditableCourse loads the course for mutation: an unknown ID is a 404,
// a found course that ctxUser may not edit is a 403.
func (api *courseApi) getEditableCourse(ctx echo.Context, id string) (course.Course, user.User, error) {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return course.Course{}, user.User{}, errors.Wrap(err, "getting context user")
	}

	crs, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return course.Course{}, user.User{}, errHttpNotFound
		}
		return course.Course{}, user.User{}, errors.Wrap(err, "finding course by ID")
	}
	if !crs.CanEdit(ctxUsr) {
		return course.Course{}, user.User{}, errHttpForbidden
	}
	return crs, ctxUsr, nil
}

func (api *courseApi) getEnrollmentParties(ctx echo.Context) (course.Course, user.User, string, error) {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return course.Course{}, user.User{}, "", errors.Wrap(err, "getting context user")
	}

	crs, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return course.Course{}, user.User{}, "", errHttpNotFound
		}
		return course.Course{}, user.User{}, "", errors.Wrap(err, "finding course by ID")
	}

	if !crs.CanEdit(ctxUsr) {
		return course.Course{}, user.User{}, "", errHttpForbidden
	}
	studentID := ctx.Param("userID")

	student, err := api.userSvc.GetByID(ctx.Request().Context(), studentID)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return course.Course{}, user.User{}, "", errHttpNotFound
		}
		return course.Course{}, user.User{}, "", errors.Wrap(err, "finding student by ID")
	}

	return crs, ctxUsr, student.ID, nil
}
