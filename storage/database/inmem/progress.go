package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core/progress"
)

type progressRepository struct {
	db *DB
}

var _ progress.Repository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(db *DB) *progressRepository {
	return &progressRepository{db: db}
}

func (repo *progressRepository) GetOrCreateRecord(_ context.Context, studentID, courseID string) (progress.Record, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if rec := repo.find(studentID, courseID); rec != nil {
		return *rec, nil
	}

	now := time.Now().UTC()
	rec := progress.Record{
		ID:                 uuid.New().String(),
		StudentID:          studentID,
		CourseID:           courseID,
		CompletedMaterials: []string{},
		CompletedQuizzes:   []string{},
		LastAccessed:       now,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	repo.db.records[rec.ID] = &rec
	return rec, nil
}

func (repo *progressRepository) GetRecord(_ context.Context, studentID, courseID string) (progress.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if rec := repo.find(studentID, courseID); rec != nil {
		return *rec, nil
	}
	return progress.Record{}, progress.ErrNotFound
}

func (repo *progressRepository) UpdateRecord(_ context.Context, rec progress.Record) (progress.Record, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.records[rec.ID]; !ok {
		return progress.Record{}, progress.ErrNotFound
	}
	repo.db.records[rec.ID] = &rec
	return rec, nil
}

func (repo *progressRepository) QueryCourseRecords(_ context.Context, courseID string) ([]progress.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var recs []progress.Record
	for _, rec := range repo.db.records {
		if rec.CourseID == courseID {
			recs = append(recs, *rec)
		}
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].CreatedAt.Before(recs[j].CreatedAt) })
	return recs, nil
}

func (repo *progressRepository) find(studentID, courseID string) *progress.Record {
	for _, rec := range repo.db.records {
		if rec.StudentID == studentID && rec.CourseID == courseID {
			return rec
		}
	}
	return nil
}
