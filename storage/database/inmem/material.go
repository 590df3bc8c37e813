package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core/material"
)

type materialRepository struct {
	db *DB
}

var _ material.Repository = (*materialRepository)(nil) // interface compliance check

func NewMaterialRepository(db *DB) *materialRepository {
	return &materialRepository{db: db}
}

func (repo *materialRepository) CreateMaterial(_ context.Context, mat material.Material) (material.Material, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	mat.ID = uuid.New().String()
	repo.db.materials[mat.ID] = &mat
	return mat, nil
}

func (repo *materialRepository) QueryCourseMaterials(_ context.Context, courseID string) ([]material.Material, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var mats []material.Material
	for _, mat := range repo.db.materials {
		if mat.CourseID == courseID {
			mats = append(mats, *mat)
		}
	}
	sort.SliceStable(mats, func(i, j int) bool { return mats[i].Position < mats[j].Position })
	return mats, nil
}

func (repo *materialRepository) GetMaterialByID(_ context.Context, id string) (material.Material, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if mat, ok := repo.db.materials[id]; ok {
		return *mat, nil
	}
	return material.Material{}, material.ErrNotFound
}

func (repo *materialRepository) UpdateMaterial(_ context.Context, mat material.Material) (material.Material, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.materials[mat.ID]; !ok {
		return material.Material{}, material.ErrNotFound
	}
	repo.db.materials[mat.ID] = &mat
	return mat, nil
}

func (repo *materialRepository) DeleteMaterial(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	delete(repo.db.materials, id)
	return nil
}

func (repo *materialRepository) NextPosition(_ context.Context, courseID string) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var max int
	for _, mat := range repo.db.materials {
		if mat.CourseID == courseID && mat.Position > max {
			max = mat.Position
		}
	}
	return max + 1, nil
}

func (repo *materialRepository) SetPositions(_ context.Context, courseID string, positions map[string]int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for id, pos := range positions {
		if mat, ok := repo.db.materials[id]; ok && mat.CourseID == courseID {
			mat.Position = pos
		}
	}
	return nil
}
