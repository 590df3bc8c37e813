package progress

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/material"
	"github.com/trezcool/darasa/core/quiz"
)

var (
	// errors
	ErrNotFound = errors.New("progress record not found")
)

type (
	Repository interface {
		// GetOrCreateRecord returns the (student, course) record, creating an
		// empty one on first access.
		GetOrCreateRecord(ctx context.Context, studentID, courseID string) (Record, error)
		GetRecord(ctx context.Context, studentID, courseID string) (Record, error)
		UpdateRecord(ctx context.Context, rec Record) (Record, error)
		QueryCourseRecords(ctx context.Context, courseID string) ([]Record, error)
	}

	Service struct {
		repo    Repository
		matSvc  *material.Service
		quizSvc *quiz.Service
	}
)

func NewService(repo Repository, matSvc *material.Service, quizSvc *quiz.Service) *Service {
	return &Service{
		repo:    repo,
		matSvc:  matSvc,
		quizSvc: quizSvc,
	}
}

func (svc *Service) Get(ctx context.Context, studentID, courseID string) (Record, error) {
	rec, err := svc.repo.GetOrCreateRecord(ctx, studentID, courseID)
	if err != nil {
		return Record{}, err
	}
	return svc.touch(ctx, rec)
}

// CompleteMaterial marks a material done for the student. Completing the
// same material twice is a no-op.
func (svc *Service) CompleteMaterial(ctx context.Context, studentID, courseID, materialID string) (Record, error) {
	rec, err := svc.repo.GetOrCreateRecord(ctx, studentID, courseID)
	if err != nil {
		return Record{}, err
	}
	if !rec.hasMaterial(materialID) {
		rec.CompletedMaterials = append(rec.CompletedMaterials, materialID)
	}
	rec.CurrentMaterial = materialID
	return svc.touch(ctx, rec)
}

// CompleteQuiz marks a quiz done for the student. Idempotent.
func (svc *Service) CompleteQuiz(ctx context.Context, studentID, courseID, quizID string) (Record, error) {
	rec, err := svc.repo.GetOrCreateRecord(ctx, studentID, courseID)
	if err != nil {
		return Record{}, err
	}
	if !rec.hasQuiz(quizID) {
		rec.CompletedQuizzes = append(rec.CompletedQuizzes, quizID)
	}
	return svc.touch(ctx, rec)
}

func (svc *Service) QueryByCourse(ctx context.Context, courseID string) ([]Record, error) {
	return svc.repo.QueryCourseRecords(ctx, courseID)
}

// Analytics aggregates progress records and quiz submissions for a course.
func (svc *Service) Analytics(ctx context.Context, courseID string, enrolled int) (CourseAnalytics, error) {
	recs, err := svc.repo.QueryCourseRecords(ctx, courseID)
	if err != nil {
		return CourseAnalytics{}, err
	}

	an := CourseAnalytics{TotalStudents: enrolled}
	var sum float64
	for _, rec := range recs {
		sum += rec.Percentage
		if rec.Percentage >= 100 {
			an.CompletedStudents++
		}
	}
	if enrolled > 0 {
		an.AverageProgress = round2(sum / float64(enrolled))
	}

	subs, err := svc.quizSvc.QuerySubmissions(ctx, quiz.SubmissionFilter{CourseID: courseID})
	if err != nil {
		return CourseAnalytics{}, errors.Wrap(err, "querying submissions")
	}
	if len(subs) > 0 {
		stats := QuizStats{
			HighestScore: pct(subs[0]),
			LowestScore:  pct(subs[0]),
		}
		var scoreSum float64
		for _, sub := range subs {
			p := pct(sub)
			scoreSum += p
			if p > stats.HighestScore {
				stats.HighestScore = p
			}
			if p < stats.LowestScore {
				stats.LowestScore = p
			}
		}
		stats.AverageScore = round2(scoreSum / float64(len(subs)))

		qzs, err := svc.quizSvc.QueryByCourse(ctx, courseID)
		if err != nil {
			return CourseAnalytics{}, errors.Wrap(err, "querying quizzes")
		}
		if total := len(qzs) * enrolled; total > 0 {
			stats.CompletionRate = round2(float64(len(subs)) / float64(total) * 100)
		}
		an.QuizStatistics = stats
	}
	return an, nil
}

// touch recomputes the completion percentage against the course's current
// material and quiz counts, then persists the record.
func (svc *Service) touch(ctx context.Context, rec Record) (Record, error) {
	mats, err := svc.matSvc.QueryByCourse(ctx, rec.CourseID)
	if err != nil {
		return Record{}, errors.Wrap(err, "querying materials")
	}
	qzs, err := svc.quizSvc.QueryByCourse(ctx, rec.CourseID)
	if err != nil {
		return Record{}, errors.Wrap(err, "querying quizzes")
	}

	if total := len(mats) + len(qzs); total > 0 {
		done := len(rec.CompletedMaterials) + len(rec.CompletedQuizzes)
		rec.Percentage = round2(float64(done) / float64(total) * 100)
		if rec.Percentage > 100 {
			rec.Percentage = 100
		}
	} else {
		rec.Percentage = 0
	}

	now := time.Now().UTC()
	rec.LastAccessed = now
	rec.UpdatedAt = now
	return svc.repo.UpdateRecord(ctx, rec)
}

func pct(sub quiz.Submission) float64 {
	if sub.MaxScore == 0 {
		return 0
	}
	return sub.Score / sub.MaxScore * 100
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
