package course

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

var (
	// errors
	ErrNotFound        = errors.New("course not found")
	ErrAlreadyEnrolled = errors.New("student is already enrolled in this course")
	ErrNotEnrolled     = errors.New("student is not enrolled in this course")
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		// QueryCourses applies AND on available QueryFilter fields.
		QueryCourses(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Course, error)
		GetCourseByID(ctx context.Context, id string) (Course, error)
		UpdateCourse(ctx context.Context, crs Course) (Course, error)
		// DeleteCourse cascades to materials, quizzes, submissions, progress
		// records, chat rooms and messages of the course.
		DeleteCourse(ctx context.Context, id string) error
		AddStudent(ctx context.Context, courseID, studentID string) error
		RemoveStudent(ctx context.Context, courseID, studentID string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, instructor user.User, nc NewCourse) (Course, error) {
	now := time.Now().UTC()
	crs := Course{
		Title:        nc.Title,
		Description:  nc.Description,
		Objectives:   nc.Objectives,
		InstructorID: instructor.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return svc.repo.CreateCourse(ctx, crs)
}

// QueryVisible returns the courses usr may see:
// students their enrollments, instructors their own, admins everything.
func (svc *Service) QueryVisible(ctx context.Context, usr user.User, filter *QueryFilter) ([]Course, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	switch {
	case usr.IsAdmin():
	case usr.IsInstructor():
		filter.InstructorID = usr.ID
	default:
		filter.StudentID = usr.ID
	}
	if filter.IsEmpty() {
		filter = nil
	}
	return svc.repo.QueryCourses(ctx, filter, []core.DBOrdering{{Field: "created_at"}})
}

func (svc *Service) GetByID(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id string, uc UpdateCourse) (Course, error) {
	crs, err := svc.repo.GetCourseByID(ctx, id)
	if err != nil {
		return Course{}, err
	}

	crs.Title = uc.Title
	crs.Description = uc.Description
	if uc.Objectives != nil {
		crs.Objectives = uc.Objectives
	}
	crs.UpdatedAt = time.Now().UTC()

	return svc.repo.UpdateCourse(ctx, crs)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteCourse(ctx, id)
}

func (svc *Service) Enroll(ctx context.Context, crs Course, studentID string) error {
	if crs.IsEnrolled(studentID) {
		return core.NewValidationError(ErrAlreadyEnrolled)
	}
	return svc.repo.AddStudent(ctx, crs.ID, studentID)
}

func (svc *Service) Unenroll(ctx context.Context, crs Course, studentID string) error {
	if !crs.IsEnrolled(studentID) {
		return core.NewValidationError(ErrNotEnrolled)
	}
	return svc.repo.RemoveStudent(ctx, crs.ID, studentID)
}
