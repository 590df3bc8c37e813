package quiz

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

var (
	// errors
	ErrNotFound          = errors.New("quiz not found")
	ErrUnknownQuestion   = errors.New("submission answers an unknown question")
	ErrOptionOutOfRange  = errors.New("submission chooses an option that does not exist")
	ErrSubmissionMissing = errors.New("submission not found")
)

type (
	Repository interface {
		CreateQuiz(ctx context.Context, qz Quiz) (Quiz, error)
		QueryCourseQuizzes(ctx context.Context, courseID string) ([]Quiz, error)
		GetQuizByID(ctx context.Context, id string) (Quiz, error)
		DeleteQuiz(ctx context.Context, id string) error

		CreateSubmission(ctx context.Context, sub Submission) (Submission, error)
		GetSubmission(ctx context.Context, quizID, studentID string) (Submission, error)
		QuerySubmissions(ctx context.Context, filter SubmissionFilter) ([]Submission, error)
	}

	// SubmissionFilter applies AND on its non-empty fields.
	SubmissionFilter struct {
		CourseID  string
		QuizID    string
		StudentID string
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, author user.User, nq NewQuiz) (Quiz, error) {
	now := time.Now().UTC()
	qz := Quiz{
		CourseID:    nq.CourseID,
		CreatedBy:   author.ID,
		Title:       nq.Title,
		Description: nq.Description,
		Questions:   make([]Question, 0, len(nq.Questions)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, qn := range nq.Questions {
		qz.Questions = append(qz.Questions, Question{
			ID:            uuid.New().String(),
			Text:          core.CleanString(qn.Text),
			Options:       qn.Options,
			CorrectOption: qn.CorrectOption,
			Explanation:   qn.Explanation,
		})
	}
	return svc.repo.CreateQuiz(ctx, qz)
}

func (svc *Service) QueryByCourse(ctx context.Context, courseID string) ([]Quiz, error) {
	return svc.repo.QueryCourseQuizzes(ctx, courseID)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Quiz, error) {
	return svc.repo.GetQuizByID(ctx, id)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteQuiz(ctx, id)
}

// Submit scores a student's answer sheet and persists it.
// Resubmission returns the existing submission unchanged (idempotent).
func (svc *Service) Submit(ctx context.Context, qz Quiz, student user.User, ns NewSubmission) (Submission, error) {
	if sub, err := svc.repo.GetSubmission(ctx, qz.ID, student.ID); err == nil {
		return sub, nil
	} else if errors.Cause(err) != ErrSubmissionMissing {
		return Submission{}, err
	}

	sub := Submission{
		QuizID:      qz.ID,
		CourseID:    qz.CourseID,
		StudentID:   student.ID,
		Answers:     ns.Answers,
		MaxScore:    float64(len(qz.Questions)),
		SubmittedAt: time.Now().UTC(),
	}

	questions := make(map[string]Question, len(qz.Questions))
	for _, qn := range qz.Questions {
		questions[qn.ID] = qn
	}
	for qid, chosen := range ns.Answers {
		qn, ok := questions[qid]
		if !ok {
			return Submission{}, core.NewValidationError(ErrUnknownQuestion)
		}
		if chosen < 0 || chosen >= len(qn.Options) {
			return Submission{}, core.NewValidationError(ErrOptionOutOfRange)
		}
		if chosen == qn.CorrectOption {
			sub.Score++
		}
	}

	return svc.repo.CreateSubmission(ctx, sub)
}

func (svc *Service) QuerySubmissions(ctx context.Context, filter SubmissionFilter) ([]Submission, error) {
	return svc.repo.QuerySubmissions(ctx, filter)
}
