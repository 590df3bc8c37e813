package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/material"
	"github.com/trezcool/darasa/core/progress"
	"github.com/trezcool/darasa/core/quiz"
	"github.com/trezcool/darasa/core/user"
)

// activeWindow is how far back a login still counts as "active".
const activeWindow = 7 * 24 * time.Hour

type adminApi struct {
	userSvc     user.Service
	courseSvc   *course.Service
	matSvc      *material.Service
	quizSvc     *quiz.Service
	progressSvc *progress.Service
}

func registerAdminAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := adminApi{
		userSvc:     deps.UserSvc,
		courseSvc:   deps.CourseSvc,
		matSvc:      deps.MaterialSvc,
		quizSvc:     deps.QuizSvc,
		progressSvc: deps.ProgressSvc,
	}

	ag := g.Group("/admin", jwt, adminMiddleware())
	ag.GET("/dashboard", api.dashboard)
}

type DashboardStats struct {
	TotalUsers       int `json:"total_users"`
	ActiveUsers      int `json:"active_users"`
	TotalStudents    int `json:"total_students"`
	TotalInstructors int `json:"total_instructors"`
	TotalCourses     int `json:"total_courses"`
	TotalMaterials   int `json:"total_materials"`
	TotalQuizzes     int `json:"total_quizzes"`
	TotalEnrollments int `json:"total_enrollments"`
	CompletedCourses int `json:"completed_courses"`
}

// dashboard aggregates platform-wide counters for the admin landing page.
func (api *adminApi) dashboard(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	var stats DashboardStats

	users, err := api.userSvc.Query(reqCtx, nil, nil)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	cutoff := time.Now().UTC().Add(-activeWindow)
	for i := range users {
		usr := users[i]
		stats.TotalUsers++
		if usr.LastLogin.After(cutoff) {
			stats.ActiveUsers++
		}
		if usr.IsStudent() {
			stats.TotalStudents++
		}
		if usr.IsInstructor() {
			stats.TotalInstructors++
		}
	}

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	courses, err := api.courseSvc.QueryVisible(reqCtx, ctxUsr, nil)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	stats.TotalCourses = len(courses)

	for _, crs := range courses {
		stats.TotalEnrollments += len(crs.StudentIDs)

		mats, err := api.matSvc.QueryByCourse(reqCtx, crs.ID)
		if err != nil {
			return errors.Wrap(err, "querying materials")
		}
		stats.TotalMaterials += len(mats)

		qzs, err := api.quizSvc.QueryByCourse(reqCtx, crs.ID)
		if err != nil {
			return errors.Wrap(err, "querying quizzes")
		}
		stats.TotalQuizzes += len(qzs)

		recs, err := api.progressSvc.QueryByCourse(reqCtx, crs.ID)
		if err != nil {
			return errors.Wrap(err, "querying progress records")
		}
		for _, rec := range recs {
			if rec.Percentage >= 100 {
				stats.CompletedCourses++
			}
		}
	}

	return ctx.JSON(http.StatusOK, stats)
}
