package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/course"
)

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) *courseRepository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) CreateCourse(_ context.Context, crs course.Course) (course.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	crs.ID = uuid.New().String()
	repo.db.courses[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) QueryCourses(_ context.Context, filter *course.QueryFilter, ordering []core.DBOrdering) ([]course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var courses []course.Course
	for _, crs := range repo.db.courses {
		if matchCourseFilter(*crs, filter) {
			courses = append(courses, *crs)
		}
	}
	sort.SliceStable(courses, func(i, j int) bool { return courses[i].CreatedAt.Before(courses[j].CreatedAt) })
	return courses, nil
}

func (repo *courseRepository) GetCourseByID(_ context.Context, id string) (course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if crs, ok := repo.db.courses[id]; ok {
		return *crs, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) UpdateCourse(_ context.Context, crs course.Course) (course.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.courses[crs.ID]
	if !ok {
		return course.Course{}, course.ErrNotFound
	}
	crs.StudentIDs = orig.StudentIDs
	repo.db.courses[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) DeleteCourse(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	delete(repo.db.courses, id)

	// cascade to the course's children, like the FK constraints do in postgres
	for mid, mat := range repo.db.materials {
		if mat.CourseID == id {
			delete(repo.db.materials, mid)
		}
	}
	for qid, qz := range repo.db.quizzes {
		if qz.CourseID == id {
			delete(repo.db.quizzes, qid)
		}
	}
	for sid, sub := range repo.db.submissions {
		if sub.CourseID == id {
			delete(repo.db.submissions, sid)
		}
	}
	for rid, rec := range repo.db.records {
		if rec.CourseID == id {
			delete(repo.db.records, rid)
		}
	}
	for roomID, room := range repo.db.rooms {
		if room.CourseID != id {
			continue
		}
		for mid, msg := range repo.db.messages {
			if msg.RoomID == roomID {
				delete(repo.db.messages, mid)
			}
		}
		delete(repo.db.rooms, roomID)
	}
	return nil
}

func (repo *courseRepository) AddStudent(_ context.Context, courseID, studentID string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	crs, ok := repo.db.courses[courseID]
	if !ok {
		return course.ErrNotFound
	}
	for _, id := range crs.StudentIDs {
		if id == studentID {
			return nil
		}
	}
	crs.StudentIDs = append(crs.StudentIDs, studentID)
	return nil
}

func (repo *courseRepository) RemoveStudent(_ context.Context, courseID, studentID string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	crs, ok := repo.db.courses[courseID]
	if !ok {
		return course.ErrNotFound
	}
	students := crs.StudentIDs[:0]
	for _, id := range crs.StudentIDs {
		if id != studentID {
			students = append(students, id)
		}
	}
	crs.StudentIDs = students
	return nil
}

func matchCourseFilter(crs course.Course, filter *course.QueryFilter) bool {
	if filter == nil {
		return true
	}
	if filter.Search != "" {
		val := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(crs.Title), val) &&
			!strings.Contains(strings.ToLower(crs.Description), val) {
			return false
		}
	}
	if filter.InstructorID != "" && crs.InstructorID != filter.InstructorID {
		return false
	}
	if filter.StudentID != "" && !crs.IsEnrolled(filter.StudentID) {
		return false
	}
	return true
}
