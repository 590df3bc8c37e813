package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core/quiz"
)

type quizRepository struct {
	db *DB
}

var _ quiz.Repository = (*quizRepository)(nil) // interface compliance check

func NewQuizRepository(db *DB) *quizRepository {
	return &quizRepository{db: db}
}

func (repo *quizRepository) CreateQuiz(_ context.Context, qz quiz.Quiz) (quiz.Quiz, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	qz.ID = uuid.New().String()
	repo.db.quizzes[qz.ID] = &qz
	return qz, nil
}

func (repo *quizRepository) QueryCourseQuizzes(_ context.Context, courseID string) ([]quiz.Quiz, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var qzs []quiz.Quiz
	for _, qz := range repo.db.quizzes {
		if qz.CourseID == courseID {
			qzs = append(qzs, *qz)
		}
	}
	sort.SliceStable(qzs, func(i, j int) bool { return qzs[i].CreatedAt.Before(qzs[j].CreatedAt) })
	return qzs, nil
}

func (repo *quizRepository) GetQuizByID(_ context.Context, id string) (quiz.Quiz, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if qz, ok := repo.db.quizzes[id]; ok {
		return *qz, nil
	}
	return quiz.Quiz{}, quiz.ErrNotFound
}

func (repo *quizRepository) DeleteQuiz(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	delete(repo.db.quizzes, id)
	for sid, sub := range repo.db.submissions {
		if sub.QuizID == id {
			delete(repo.db.submissions, sid)
		}
	}
	return nil
}

func (repo *quizRepository) CreateSubmission(_ context.Context, sub quiz.Submission) (quiz.Submission, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	sub.ID = uuid.New().String()
	repo.db.submissions[sub.ID] = &sub
	return sub, nil
}

func (repo *quizRepository) GetSubmission(_ context.Context, quizID, studentID string) (quiz.Submission, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, sub := range repo.db.submissions {
		if sub.QuizID == quizID && sub.StudentID == studentID {
			return *sub, nil
		}
	}
	return quiz.Submission{}, quiz.ErrSubmissionMissing
}

func (repo *quizRepository) QuerySubmissions(_ context.Context, filter quiz.SubmissionFilter) ([]quiz.Submission, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var subs []quiz.Submission
	for _, sub := range repo.db.submissions {
		if filter.CourseID != "" && sub.CourseID != filter.CourseID {
			continue
		}
		if filter.QuizID != "" && sub.QuizID != filter.QuizID {
			continue
		}
		if filter.StudentID != "" && sub.StudentID != filter.StudentID {
			continue
		}
		subs = append(subs, *sub)
	}
	sort.SliceStable(subs, func(i, j int) bool { return subs[i].SubmittedAt.Before(subs[j].SubmittedAt) })
	return subs, nil
}
