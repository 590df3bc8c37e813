package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core/progress"
)

type progressRow struct {
	ID                 string         `db:"id"`
	StudentID          string         `db:"student_id"`
	CourseID           string         `db:"course_id"`
	CompletedMaterials pq.StringArray `db:"completed_materials"`
	CompletedQuizzes   pq.StringArray `db:"completed_quizzes"`
	CurrentMaterial    null.String    `db:"current_material"`
	Percentage         float64        `db:"percentage"`
	LastAccessed       null.Time      `db:"last_accessed"`
	CreatedAt          null.Time      `db:"created_at"`
	UpdatedAt          null.Time      `db:"updated_at"`
}

func (r progressRow) record() progress.Record {
	return progress.Record{
		ID:                 r.ID,
		StudentID:          r.StudentID,
		CourseID:           r.CourseID,
		CompletedMaterials: r.CompletedMaterials,
		CompletedQuizzes:   r.CompletedQuizzes,
		CurrentMaterial:    r.CurrentMaterial.String,
		Percentage:         r.Percentage,
		LastAccessed:       r.LastAccessed.Time,
		CreatedAt:          r.CreatedAt.Time,
		UpdatedAt:          r.UpdatedAt.Time,
	}
}

func newProgressRow(rec progress.Record) progressRow {
	return progressRow{
		ID:                 rec.ID,
		StudentID:          rec.StudentID,
		CourseID:           rec.CourseID,
		CompletedMaterials: rec.CompletedMaterials,
		CompletedQuizzes:   rec.CompletedQuizzes,
		CurrentMaterial:    null.NewString(rec.CurrentMaterial, rec.CurrentMaterial != ""),
		Percentage:         rec.Percentage,
		LastAccessed:       null.NewTime(rec.LastAccessed.UTC(), !rec.LastAccessed.IsZero()),
		CreatedAt:          null.NewTime(rec.CreatedAt.UTC(), !rec.CreatedAt.IsZero()),
		UpdatedAt:          null.NewTime(rec.UpdatedAt.UTC(), !rec.UpdatedAt.IsZero()),
	}
}

type progressRepository struct {
	db *sqlx.DB
}

var _ progress.Repository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(db *sqlx.DB) *progressRepository {
	return &progressRepository{db: db}
}

func (repo progressRepository) GetOrCreateRecord(ctx context.Context, studentID, courseID string) (progress.Record, error) {
	rec, err := repo.GetRecord(ctx, studentID, courseID)
	if err == nil {
		return rec, nil
	}
	if errors.Cause(err) != progress.ErrNotFound {
		return progress.Record{}, err
	}

	now := time.Now().UTC()
	rec = progress.Record{
		ID:                 uuid.New().String(),
		StudentID:          studentID,
		CourseID:           courseID,
		CompletedMaterials: []string{},
		CompletedQuizzes:   []string{},
		LastAccessed:       now,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	row := newProgressRow(rec)
	// the unique (student_id, course_id) constraint guards concurrent first reads
	_, err = repo.db.NamedExecContext(ctx, `
		INSERT INTO progress (id, student_id, course_id, completed_materials, completed_quizzes,
		                      current_material, percentage, last_accessed, created_at, updated_at)
		VALUES (:id, :student_id, :course_id, :completed_materials, :completed_quizzes,
		        :current_material, :percentage, :last_accessed, :created_at, :updated_at)
		ON CONFLICT (student_id, course_id) DO NOTHING`,
		row,
	)
	if err != nil {
		return progress.Record{}, errors.Wrap(err, "inserting progress record")
	}
	return repo.GetRecord(ctx, studentID, courseID)
}

func (repo progressRepository) GetRecord(ctx context.Context, studentID, courseID string) (progress.Record, error) {
	var row progressRow
	err := repo.db.GetContext(ctx, &row,
		"SELECT * FROM progress WHERE student_id = $1 AND course_id = $2", studentID, courseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return progress.Record{}, progress.ErrNotFound
		}
		return progress.Record{}, errors.Wrap(err, "finding progress record")
	}
	return row.record(), nil
}

func (repo progressRepository) UpdateRecord(ctx context.Context, rec progress.Record) (progress.Record, error) {
	row := newProgressRow(rec)
	_, err := repo.db.NamedExecContext(ctx, `
		UPDATE progress
		SET completed_materials = :completed_materials, completed_quizzes = :completed_quizzes,
		    current_material = :current_material, percentage = :percentage,
		    last_accessed = :last_accessed, updated_at = :updated_at
		WHERE id = :id`,
		row,
	)
	if err != nil {
		return progress.Record{}, errors.Wrap(err, "updating progress record")
	}
	return rec, nil
}

func (repo progressRepository) QueryCourseRecords(ctx context.Context, courseID string) ([]progress.Record, error) {
	var rows []progressRow
	err := repo.db.SelectContext(ctx, &rows,
		"SELECT * FROM progress WHERE course_id = $1 ORDER BY created_at", courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying progress records")
	}
	recs := make([]progress.Record, 0, len(rows))
	for _, row := range rows {
		recs = append(recs, row.record())
	}
	return recs, nil
}
