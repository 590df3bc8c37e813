package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/assist"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/quiz"
	"github.com/trezcool/darasa/core/user"
)

type assistApi struct {
	svc       *assist.Service
	courseSvc *course.Service
	quizSvc   *quiz.Service
	userSvc   user.Service
	validate  *validator.Validate
}

func registerAssistAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := assistApi{
		svc:       deps.AssistSvc,
		courseSvc: deps.CourseSvc,
		quizSvc:   deps.QuizSvc,
		userSvc:   deps.UserSvc,
		validate:  deps.Validate,
	}

	ag := g.Group("/assist", jwt)
	ag.POST("/generate-content", api.generateContent)
	ag.POST("/course-outline", api.courseOutline, instructorMiddleware())
	ag.POST("/quiz-questions", api.quizQuestions, instructorMiddleware())
	ag.POST("/recommendations", api.recommendations)
	ag.POST("/analyze-performance", api.analyzePerformance)
}

// Handlers

func (api *assistApi) generateContent(ctx echo.Context) error {
	var data assist.ContentRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ContentRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	out, err := api.svc.GenerateContent(ctx.Request().Context(), data)
	if err != nil {
		return assistError(err, "generating content")
	}
	return ctx.JSON(http.StatusOK, assist.Reply{Content: out})
}

func (api *assistApi) courseOutline(ctx echo.Context) error {
	var data assist.OutlineRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to OutlineRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	out, err := api.svc.CourseOutline(ctx.Request().Context(), data)
	if err != nil {
		return assistError(err, "generating course outline")
	}
	return ctx.JSON(http.StatusOK, assist.Reply{Content: out})
}

func (api *assistApi) quizQuestions(ctx echo.Context) error {
	var data assist.QuizQuestionsRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to QuizQuestionsRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	out, err := api.svc.QuizQuestions(ctx.Request().Context(), data)
	if err != nil {
		return assistError(err, "generating quiz questions")
	}
	return ctx.JSON(http.StatusOK, assist.Reply{Content: out})
}

// recommendations tailors learning advice to ctxUser's own submissions
// in the course.
func (api *assistApi) recommendations(ctx echo.Context) error {
	var data assist.RecommendationsRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RecommendationsRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	crs, ctxUsr, err := api.getCourse(ctx, data.CourseID)
	if err != nil {
		return err
	}

	subs, err := api.quizSvc.QuerySubmissions(ctx.Request().Context(), quiz.SubmissionFilter{
		CourseID:  crs.ID,
		StudentID: ctxUsr.ID,
	})
	if err != nil {
		return errors.Wrap(err, "querying submissions")
	}

	out, err := api.svc.Recommendations(ctx.Request().Context(), crs.Title, subs)
	if err != nil {
		return assistError(err, "generating recommendations")
	}
	return ctx.JSON(http.StatusOK, assist.Reply{Content: out})
}

// analyzePerformance reports on a student's quiz performance in a course.
// Students may only analyze themselves; the course owner and admins may
// analyze any student.
func (api *assistApi) analyzePerformance(ctx echo.Context) error {
	var data assist.AnalysisRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AnalysisRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	crs, ctxUsr, err := api.getCourse(ctx, data.CourseID)
	if err != nil {
		return err
	}

	studentID := data.StudentID
	if studentID == "" {
		studentID = ctxUsr.ID
	}
	if studentID != ctxUsr.ID && !crs.CanEdit(ctxUsr) {
		return errHttpForbidden
	}

	subs, err := api.quizSvc.QuerySubmissions(ctx.Request().Context(), quiz.SubmissionFilter{
		CourseID:  crs.ID,
		StudentID: studentID,
	})
	if err != nil {
		return errors.Wrap(err, "querying submissions")
	}

	out, err := api.svc.AnalyzePerformance(ctx.Request().Context(), crs.Title, subs)
	if err != nil {
		return assistError(err, "analyzing performance")
	}
	return ctx.JSON(http.StatusOK, assist.Reply{Content: out})
}

func (api *assistApi) getCourse(ctx echo.Context, id string) (course.Course, user.User, error) {
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

// assistError maps generator outages to a 503 instead of a logged 500.
func assistError(err error, msg string) error {
	if errors.Cause(err) == assist.ErrUnavailable {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "assistant unavailable, try again later")
	}
	return errors.Wrap(err, msg)
}
