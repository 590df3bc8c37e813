package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core/quiz"
)

type quizRow struct {
	ID          string      `db:"id"`
	CourseID    string      `db:"course_id"`
	CreatedBy   null.String `db:"created_by"`
	Title       string      `db:"title"`
	Description null.String `db:"description"`
	Questions   []byte      `db:"questions"` // JSONB
	CreatedAt   null.Time   `db:"created_at"`
	UpdatedAt   null.Time   `db:"updated_at"`
}

func (r quizRow) quiz() (quiz.Quiz, error) {
	qz := quiz.Quiz{
		ID:          r.ID,
		CourseID:    r.CourseID,
		CreatedBy:   r.CreatedBy.String,
		Title:       r.Title,
		Description: r.Description.String,
		CreatedAt:   r.CreatedAt.Time,
		UpdatedAt:   r.UpdatedAt.Time,
	}
	if err := json.Unmarshal(r.Questions, &qz.Questions); err != nil {
		return quiz.Quiz{}, errors.Wrap(err, "decoding quiz questions")
	}
	return qz, nil
}

func newQuizRow(qz quiz.Quiz) (quizRow, error) {
	questions, err := json.Marshal(qz.Questions)
	if err != nil {
		return quizRow{}, errors.Wrap(err, "encoding quiz questions")
	}
	return quizRow{
		ID:          qz.ID,
		CourseID:    qz.CourseID,
		CreatedBy:   null.NewString(qz.CreatedBy, qz.CreatedBy != ""),
		Title:       qz.Title,
		Description: null.NewString(qz.Description, qz.Description != ""),
		Questions:   questions,
		CreatedAt:   null.NewTime(qz.CreatedAt.UTC(), !qz.CreatedAt.IsZero()),
		UpdatedAt:   null.NewTime(qz.UpdatedAt.UTC(), !qz.UpdatedAt.IsZero()),
	}, nil
}

type submissionRow struct {
	ID          string    `db:"id"`
	QuizID      string    `db:"quiz_id"`
	CourseID    string    `db:"course_id"`
	StudentID   string    `db:"student_id"`
	Answers     []byte    `db:"answers"` // JSONB
	Score       float64   `db:"score"`
	MaxScore    float64   `db:"max_score"`
	SubmittedAt null.Time `db:"submitted_at"`
}

func (r submissionRow) submission() (quiz.Submission, error) {
	sub := quiz.Submission{
		ID:          r.ID,
		QuizID:      r.QuizID,
		CourseID:    r.CourseID,
		StudentID:   r.StudentID,
		Score:       r.Score,
		MaxScore:    r.MaxScore,
		SubmittedAt: r.SubmittedAt.Time,
	}
	if err := json.Unmarshal(r.Answers, &sub.Answers); err != nil {
		return quiz.Submission{}, errors.Wrap(err, "decoding submission answers")
	}
	return sub, nil
}

func newSubmissionRow(sub quiz.Submission) (submissionRow, error) {
	answers, err := json.Marshal(sub.Answers)
	if err != nil {
		return submissionRow{}, errors.Wrap(err, "encoding submission answers")
	}
	return submissionRow{
		ID:          sub.ID,
		QuizID:      sub.QuizID,
		CourseID:    sub.CourseID,
		StudentID:   sub.StudentID,
		Answers:     answers,
		Score:       sub.Score,
		MaxScore:    sub.MaxScore,
		SubmittedAt: null.NewTime(sub.SubmittedAt.UTC(), !sub.SubmittedAt.IsZero()),
	}, nil
}

type quizRepository struct {
	db *sqlx.DB
}

var _ quiz.Repository = (*quizRepository)(nil) // interface compliance check

func NewQuizRepository(db *sqlx.DB) *quizRepository {
	return &quizRepository{db: db}
}

func (repo quizRepository) CreateQuiz(ctx context.Context, qz quiz.Quiz) (quiz.Quiz, error) {
	qz.ID = uuid.New().String()
	row, err := newQuizRow(qz)
	if err != nil {
		return quiz.Quiz{}, err
	}
	_, err = repo.db.NamedExecContext(ctx, `
		INSERT INTO quiz (id, course_id, created_by, title, description, questions, created_at, updated_at)
		VALUES (:id, :course_id, :created_by, :title, :description, :questions, :created_at, :updated_at)`,
		row,
	)
	if err != nil {
		return quiz.Quiz{}, errors.Wrap(err, "inserting quiz")
	}
	return qz, nil
}

func (repo quizRepository) QueryCourseQuizzes(ctx context.Context, courseID string) ([]quiz.Quiz, error) {
	var rows []quizRow
	err := repo.db.SelectContext(ctx, &rows,
		"SELECT * FROM quiz WHERE course_id = $1 ORDER BY created_at", courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying quizzes")
	}
	qzs := make([]quiz.Quiz, 0, len(rows))
	for _, row := range rows {
		qz, err := row.quiz()
		if err != nil {
			return nil, err
		}
		qzs = append(qzs, qz)
	}
	return qzs, nil
}

func (repo quizRepository) GetQuizByID(ctx context.Context, id string) (quiz.Quiz, error) {
	if _, err := uuid.Parse(id); err != nil {
		return quiz.Quiz{}, quiz.ErrNotFound
	}

	var row quizRow
	if err := repo.db.GetContext(ctx, &row, "SELECT * FROM quiz WHERE id = $1", id); err != nil {
		if err == sql.ErrNoRows {
			return quiz.Quiz{}, quiz.ErrNotFound
		}
		return quiz.Quiz{}, errors.Wrap(err, "finding quiz")
	}
	return row.quiz()
}

func (repo quizRepository) DeleteQuiz(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, "DELETE FROM quiz WHERE id = $1", id); err != nil {
		return errors.Wrap(err, "deleting quiz")
	}
	return nil
}

func (repo quizRepository) CreateSubmission(ctx context.Context, sub quiz.Submission) (quiz.Submission, error) {
	sub.ID = uuid.New().String()
	row, err := newSubmissionRow(sub)
	if err != nil {
		return quiz.Submission{}, err
	}
	_, err = repo.db.NamedExecContext(ctx, `
		INSERT INTO quiz_submission (id, quiz_id, course_id, student_id, answers, score, max_score, submitted_at)
		VALUES (:id, :quiz_id, :course_id, :student_id, :answers, :score, :max_score, :submitted_at)`,
		row,
	)
	if err != nil {
		return quiz.Submission{}, errors.Wrap(err, "inserting submission")
	}
	return sub, nil
}

func (repo quizRepository) GetSubmission(ctx context.Context, quizID, studentID string) (quiz.Submission, error) {
	var row submissionRow
	err := repo.db.GetContext(ctx, &row,
		"SELECT * FROM quiz_submission WHERE quiz_id = $1 AND student_id = $2", quizID, studentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return quiz.Submission{}, quiz.ErrSubmissionMissing
		}
		return quiz.Submission{}, errors.Wrap(err, "finding submission")
	}
	return row.submission()
}

func (repo quizRepository) QuerySubmissions(ctx context.Context, filter quiz.SubmissionFilter) ([]quiz.Submission, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.CourseID != "" {
		args = append(args, filter.CourseID)
		conds = append(conds, argCond("course_id", len(args)))
	}
	if filter.QuizID != "" {
		args = append(args, filter.QuizID)
		conds = append(conds, argCond("quiz_id", len(args)))
	}
	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		conds = append(conds, argCond("student_id", len(args)))
	}

	query := "SELECT * FROM quiz_submission"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY submitted_at"

	var rows []submissionRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}
	subs := make([]quiz.Submission, 0, len(rows))
	for _, row := range rows {
		sub, err := row.submission()
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, nil
}
