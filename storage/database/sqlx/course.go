package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/course"
)

type courseRow struct {
	ID           string         `db:"id"`
	Title        string         `db:"title"`
	Description  null.String    `db:"description"`
	Objectives   pq.StringArray `db:"objectives"`
	InstructorID string         `db:"instructor_id"`
	CreatedAt    null.Time      `db:"created_at"`
	UpdatedAt    null.Time      `db:"updated_at"`
}

func (r courseRow) course(studentIDs []string) course.Course {
	return course.Course{
		ID:           r.ID,
		Title:        r.Title,
		Description:  r.Description.String,
		Objectives:   r.Objectives,
		InstructorID: r.InstructorID,
		StudentIDs:   studentIDs,
		CreatedAt:    r.CreatedAt.Time,
		UpdatedAt:    r.UpdatedAt.Time,
	}
}

func newCourseRow(crs course.Course) courseRow {
	return courseRow{
		ID:           crs.ID,
		Title:        crs.Title,
		Description:  null.NewString(crs.Description, crs.Description != ""),
		Objectives:   crs.Objectives,
		InstructorID: crs.InstructorID,
		CreatedAt:    null.NewTime(crs.CreatedAt.UTC(), !crs.CreatedAt.IsZero()),
		UpdatedAt:    null.NewTime(crs.UpdatedAt.UTC(), !crs.UpdatedAt.IsZero()),
	}
}

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) *courseRepository {
	return &courseRepository{db: db}
}

func (repo courseRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return course.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo courseRepository) students(ctx context.Context, courseID string) ([]string, error) {
	var ids []string
	err := repo.db.SelectContext(ctx, &ids,
		"SELECT student_id FROM course_student WHERE course_id = $1", courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying course students")
	}
	return ids, nil
}

func (repo courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	crs.ID = uuid.New().String()
	row := newCourseRow(crs)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO course (id, title, description, objectives, instructor_id, created_at, updated_at)
		VALUES (:id, :title, :description, :objectives, :instructor_id, :created_at, :updated_at)`,
		row,
	)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return row.course(nil), nil
}

func (repo courseRepository) QueryCourses(ctx context.Context, filter *course.QueryFilter, ordering []core.DBOrdering) ([]course.Course, error) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter != nil {
		if filter.Search != "" {
			val := arg("%" + filter.Search + "%")
			conds = append(conds, fmt.Sprintf("(title ILIKE %[1]s OR description ILIKE %[1]s)", val))
		}
		if filter.InstructorID != "" {
			conds = append(conds, "instructor_id = "+arg(filter.InstructorID))
		}
		if filter.StudentID != "" {
			conds = append(conds, fmt.Sprintf(
				"id IN (SELECT course_id FROM course_student WHERE student_id = %s)", arg(filter.StudentID)))
		}
	}

	query := "SELECT * FROM course"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	if len(ordering) > 0 {
		orderList := make([]string, 0, len(ordering))
		for _, ord := range ordering {
			orderList = append(orderList, ord.String())
		}
		query += " ORDER BY " + strings.Join(orderList, ", ")
	}

	var rows []courseRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}

	courses := make([]course.Course, 0, len(rows))
	for _, row := range rows {
		students, err := repo.students(ctx, row.ID)
		if err != nil {
			return nil, err
		}
		courses = append(courses, row.course(students))
	}
	return courses, nil
}

func (repo courseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	if _, err := uuid.Parse(id); err != nil {
		return course.Course{}, course.ErrNotFound
	}

	var row courseRow
	if err := repo.db.GetContext(ctx, &row, "SELECT * FROM course WHERE id = $1", id); err != nil {
		return course.Course{}, repo.trapNoRowsErr(err, "finding course")
	}
	students, err := repo.students(ctx, id)
	if err != nil {
		return course.Course{}, err
	}
	return row.course(students), nil
}

func (repo courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	row := newCourseRow(crs)
	_, err := repo.db.NamedExecContext(ctx, `
		UPDATE course
		SET title = :title, description = :description, objectives = :objectives, updated_at = :updated_at
		WHERE id = :id`,
		row,
	)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "updating course")
	}
	return row.course(crs.StudentIDs), nil
}

// DeleteCourse relies on ON DELETE CASCADE for the course's materials,
// quizzes, submissions, progress records, rooms and messages.
func (repo courseRepository) DeleteCourse(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, "DELETE FROM course WHERE id = $1", id); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return nil
}

func (repo courseRepository) AddStudent(ctx context.Context, courseID, studentID string) error {
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO course_student (course_id, student_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`,
		courseID, studentID,
	)
	if err != nil {
		return errors.Wrap(err, "enrolling student")
	}
	return nil
}

func (repo courseRepository) RemoveStudent(ctx context.Context, courseID, studentID string) error {
	_, err := repo.db.ExecContext(ctx,
		"DELETE FROM course_student WHERE course_id = $1 AND student_id = $2", courseID, studentID)
	if err != nil {
		return errors.Wrap(err, "unenrolling student")
	}
	return nil
}
