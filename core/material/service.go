package material

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

var (
	// errors
	ErrNotFound   = errors.New("material not found")
	ErrBadReorder = errors.New("reorder must list every material of the course exactly once")
)

type (
	Repository interface {
		CreateMaterial(ctx context.Context, mat Material) (Material, error)
		// QueryCourseMaterials returns the course's materials ordered by position.
		QueryCourseMaterials(ctx context.Context, courseID string) ([]Material, error)
		GetMaterialByID(ctx context.Context, id string) (Material, error)
		UpdateMaterial(ctx context.Context, mat Material) (Material, error)
		DeleteMaterial(ctx context.Context, id string) error
		// NextPosition returns max(position)+1 within the course.
		NextPosition(ctx context.Context, courseID string) (int, error)
		// SetPositions persists the given id -> position assignment.
		SetPositions(ctx context.Context, courseID string, positions map[string]int) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, courseID string, author user.User, nm NewMaterial) (Material, error) {
	pos, err := svc.repo.NextPosition(ctx, courseID)
	if err != nil {
		return Material{}, errors.Wrap(err, "getting next position")
	}

	now := time.Now().UTC()
	mat := Material{
		CourseID:      courseID,
		CreatedBy:     author.ID,
		Title:         nm.Title,
		Description:   nm.Description,
		Type:          nm.Type,
		ContentURL:    nm.ContentURL,
		Difficulty:    nm.Difficulty,
		EstimatedTime: nm.EstimatedTime,
		Position:      pos,
		IsPublished:   true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return svc.repo.CreateMaterial(ctx, mat)
}

func (svc *Service) QueryByCourse(ctx context.Context, courseID string) ([]Material, error) {
	return svc.repo.QueryCourseMaterials(ctx, courseID)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Material, error) {
	return svc.repo.GetMaterialByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id string, um UpdateMaterial) (Material, error) {
	mat, err := svc.repo.GetMaterialByID(ctx, id)
	if err != nil {
		return Material{}, err
	}

	mat.Title = um.Title
	mat.Description = um.Description
	mat.Type = um.Type
	mat.ContentURL = um.ContentURL
	mat.Difficulty = um.Difficulty
	mat.EstimatedTime = um.EstimatedTime
	if um.IsPublished != nil {
		mat.IsPublished = *um.IsPublished
	}
	mat.UpdatedAt = time.Now().UTC()

	return svc.repo.UpdateMaterial(ctx, mat)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteMaterial(ctx, id)
}

// ReorderCourse replaces the ordering of a course's materials.
// The id list must be a permutation of the course's material ids.
func (svc *Service) ReorderCourse(ctx context.Context, courseID string, r Reorder) ([]Material, error) {
	mats, err := svc.repo.QueryCourseMaterials(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if len(mats) != len(r.MaterialIDs) {
		return nil, core.NewValidationError(ErrBadReorder)
	}

	known := make(map[string]bool, len(mats))
	for _, mat := range mats {
		known[mat.ID] = true
	}
	positions := make(map[string]int, len(r.MaterialIDs))
	for i, id := range r.MaterialIDs {
		if !known[id] {
			return nil, core.NewValidationError(ErrBadReorder)
		}
		if _, dup := positions[id]; dup {
			return nil, core.NewValidationError(ErrBadReorder)
		}
		positions[id] = i + 1
	}

	if err = svc.repo.SetPositions(ctx, courseID, positions); err != nil {
		return nil, err
	}
	return svc.repo.QueryCourseMaterials(ctx, courseID)
}
