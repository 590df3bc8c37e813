package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core/material"
)

type materialRow struct {
	ID            string      `db:"id"`
	CourseID      string      `db:"course_id"`
	CreatedBy     null.String `db:"created_by"`
	Title         string      `db:"title"`
	Description   null.String `db:"description"`
	Type          string      `db:"type"`
	ContentURL    string      `db:"content_url"`
	Difficulty    string      `db:"difficulty"`
	EstimatedTime int         `db:"estimated_time"`
	Position      int         `db:"position"`
	IsPublished   bool        `db:"is_published"`
	CreatedAt     null.Time   `db:"created_at"`
	UpdatedAt     null.Time   `db:"updated_at"`
}

func (r materialRow) material() material.Material {
	return material.Material{
		ID:            r.ID,
		CourseID:      r.CourseID,
		CreatedBy:     r.CreatedBy.String,
		Title:         r.Title,
		Description:   r.Description.String,
		Type:          r.Type,
		ContentURL:    r.ContentURL,
		Difficulty:    r.Difficulty,
		EstimatedTime: r.EstimatedTime,
		Position:      r.Position,
		IsPublished:   r.IsPublished,
		CreatedAt:     r.CreatedAt.Time,
		UpdatedAt:     r.UpdatedAt.Time,
	}
}

func newMaterialRow(mat material.Material) materialRow {
	return materialRow{
		ID:            mat.ID,
		CourseID:      mat.CourseID,
		CreatedBy:     null.NewString(mat.CreatedBy, mat.CreatedBy != ""),
		Title:         mat.Title,
		Description:   null.NewString(mat.Description, mat.Description != ""),
		Type:          mat.Type,
		ContentURL:    mat.ContentURL,
		Difficulty:    mat.Difficulty,
		EstimatedTime: mat.EstimatedTime,
		Position:      mat.Position,
		IsPublished:   mat.IsPublished,
		CreatedAt:     null.NewTime(mat.CreatedAt.UTC(), !mat.CreatedAt.IsZero()),
		UpdatedAt:     null.NewTime(mat.UpdatedAt.UTC(), !mat.UpdatedAt.IsZero()),
	}
}

type materialRepository struct {
	db *sqlx.DB
}

var _ material.Repository = (*materialRepository)(nil) // interface compliance check

func NewMaterialRepository(db *sqlx.DB) *materialRepository {
	return &materialRepository{db: db}
}

func (repo materialRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return material.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo materialRepository) CreateMaterial(ctx context.Context, mat material.Material) (material.Material, error) {
	mat.ID = uuid.New().String()
	row := newMaterialRow(mat)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO material (id, course_id, created_by, title, description, type, content_url,
		                      difficulty, estimated_time, position, is_published, created_at, updated_at)
		VALUES (:id, :course_id, :created_by, :title, :description, :type, :content_url,
		        :difficulty, :estimated_time, :position, :is_published, :created_at, :updated_at)`,
		row,
	)
	if err != nil {
		return material.Material{}, errors.Wrap(err, "inserting material")
	}
	return row.material(), nil
}

func (repo materialRepository) QueryCourseMaterials(ctx context.Context, courseID string) ([]material.Material, error) {
	var rows []materialRow
	err := repo.db.SelectContext(ctx, &rows,
		"SELECT * FROM material WHERE course_id = $1 ORDER BY position", courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying materials")
	}
	mats := make([]material.Material, 0, len(rows))
	for _, row := range rows {
		mats = append(mats, row.material())
	}
	return mats, nil
}

func (repo materialRepository) GetMaterialByID(ctx context.Context, id string) (material.Material, error) {
	if _, err := uuid.Parse(id); err != nil {
		return material.Material{}, material.ErrNotFound
	}

	var row materialRow
	if err := repo.db.GetContext(ctx, &row, "SELECT * FROM material WHERE id = $1", id); err != nil {
		return material.Material{}, repo.trapNoRowsErr(err, "finding material")
	}
	return row.material(), nil
}

func (repo materialRepository) UpdateMaterial(ctx context.Context, mat material.Material) (material.Material, error) {
	row := newMaterialRow(mat)
	_, err := repo.db.NamedExecContext(ctx, `
		UPDATE material
		SET title = :title, description = :description, type = :type, content_url = :content_url,
		    difficulty = :difficulty, estimated_time = :estimated_time, position = :position,
		    is_published = :is_published, updated_at = :updated_at
		WHERE id = :id`,
		row,
	)
	if err != nil {
		return material.Material{}, errors.Wrap(err, "updating material")
	}
	return row.material(), nil
}

func (repo materialRepository) DeleteMaterial(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, "DELETE FROM material WHERE id = $1", id); err != nil {
		return errors.Wrap(err, "deleting material")
	}
	return nil
}

func (repo materialRepository) NextPosition(ctx context.Context, courseID string) (int, error) {
	var next int
	err := repo.db.GetContext(ctx, &next,
		"SELECT COALESCE(MAX(position), 0) + 1 FROM material WHERE course_id = $1", courseID)
	if err != nil {
		return 0, errors.Wrap(err, "getting next material position")
	}
	return next, nil
}

func (repo materialRepository) SetPositions(ctx context.Context, courseID string, positions map[string]int) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "starting transaction")
	}
	defer func() { _ = tx.Rollback() }()

	for id, pos := range positions {
		_, err = tx.ExecContext(ctx,
			"UPDATE material SET position = $1 WHERE id = $2 AND course_id = $3", pos, id, courseID)
		if err != nil {
			return errors.Wrap(err, "setting material position")
		}
	}
	return errors.Wrap(tx.Commit(), "committing positions")
}
