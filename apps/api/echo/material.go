package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/material"
	"github.com/trezcool/darasa/core/user"
)

type materialApi struct {
	svc       *material.Service
	courseSvc *course.Service
	userSvc   user.Service
	validate  *validator.Validate
}

func registerMaterialAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := materialApi{
		svc:       deps.MaterialSvc,
		courseSvc: deps.CourseSvc,
		userSvc:   deps.UserSvc,
		validate:  deps.Validate,
	}

	cg := g.Group("/courses/:courseID/materials", jwt)
	cg.POST("", api.create)
	cg.GET("", api.query)
	cg.PUT("/order", api.reorder)

	mg := g.Group("/materials/:id", jwt)
	mg.GET("", api.retrieve)
	mg.PUT("", api.update)
	mg.DELETE("", api.destroy)
}

// Handlers

func (api *materialApi) create(ctx echo.Context) error {
	crs, ctxUsr, err := api.getCourse(ctx, ctx.Param("courseID"))
	if err != nil {
		return err
	}
	if !crs.CanEdit(ctxUsr) {
		return errHttpForbidden
	}

	var data material.NewMaterial
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMaterial")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	mat, err := api.svc.Create(ctx.Request().Context(), crs.ID, ctxUsr, data)
	if err != nil {
		return errors.Wrap(err, "creating material")
	}
	return ctx.JSON(http.StatusCreated, mat)
}

func (api *materialApi) query(ctx echo.Context) error {
	crs, _, err := api.getCourse(ctx, ctx.Param("courseID"))
	if err != nil {
		return err
	}

	mats, err := api.svc.QueryByCourse(ctx.Request().Context(), crs.ID)
	if err != nil {
		return errors.Wrap(err, "querying materials")
	}
	if mats == nil {
		mats = []material.Material{}
	}
	return ctx.JSON(http.StatusOK, mats)
}

func (api *materialApi) reorder(ctx echo.Context) error {
	crs, ctxUsr, err := api.getCourse(ctx, ctx.Param("courseID"))
	if err != nil {
		return err
	}
	if !crs.CanEdit(ctxUsr) {
		return errHttpForbidden
	}

	var data material.Reorder
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Reorder")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	mats, err := api.svc.ReorderCourse(ctx.Request().Context(), crs.ID, data)
	if err != nil {
		return errors.Wrap(err, "reordering materials")
	}
	return ctx.JSON(http.StatusOK, mats)
}

func (api *materialApi) retrieve(ctx echo.Context) error {
	mat, _, _, err := api.getMaterial(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, mat)
}

func (api *materialApi) update(ctx echo.Context) error {
	mat, crs, ctxUsr, err := api.getMaterial(ctx)
	if err != nil {
		return err
	}
	if !crs.CanEdit(ctxUsr) {
		return errHttpForbidden
	}

	var data material.UpdateMaterial
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateMaterial")
	}
	if err := data.Validate(mat, api.validate); err != nil {
		return err
	}

	mat, err = api.svc.Update(ctx.Request().Context(), mat.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating material")
	}
	return ctx.JSON(http.StatusOK, mat)
}

func (api *materialApi) destroy(ctx echo.Context) error {
	mat, crs, ctxUsr, err := api.getMaterial(ctx)
	if err != nil {
		return err
	}
	if !crs.CanEdit(ctxUsr) {
		return errHttpForbidden
	}

	if err := api.svc.Delete(ctx.Request().Context(), mat.ID); err != nil {
		return errors.Wrap(err, "deleting material")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// getCourse loads the course and masks its existence with a 404 when
// ctxUser may not see it.
func (api *materialApi) getCourse(ctx echo.Context, id string) (course.Course, user.User, error) {
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

func (api *materialApi) getMaterial(ctx echo.Context) (material.Material, course.Course, user.User, error) {
	mat, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == material.ErrNotFound {
			return material.Material{}, course.Course{}, user.User{}, errHttpNotFound
		}
		return material.Material{}, course.Course{}, user.User{}, errors.Wrap(err, "finding material by ID")
	}

	crs, ctxUsr, err := api.getCourse(ctx, mat.CourseID)
	if err != nil {
		return material.Material{}, course.Course{}, user.User{}, err
	}
	return mat, crs, ctxUsr, nil
}
