package quiz

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

type (
	Question struct {
		ID            string   `json:"id"`
		Text          string   `json:"text"`
		Options       []string `json:"options"`
		CorrectOption int      `json:"correct_option"` // index into Options
		Explanation   string   `json:"explanation,omitempty"`
	}

	Quiz struct {
		ID          string     `json:"id"`
		CourseID    string     `json:"course_id"`
		CreatedBy   string     `json:"created_by"`
		Title       string     `json:"title"`
		Description string     `json:"description"`
		Questions   []Question `json:"questions"`
		CreatedAt   time.Time  `json:"created_at"` // UTC
		UpdatedAt   time.Time  `json:"updated_at"` // UTC
	}

	// Submission is a student's answer sheet for a Quiz;
	// multiple-choice answers are scored on write.
	Submission struct {
		ID          string         `json:"id"`
		QuizID      string         `json:"quiz_id"`
		CourseID    string         `json:"course_id"`
		StudentID   string         `json:"student_id"`
		Answers     map[string]int `json:"answers"` // question id -> chosen option index
		Score       float64        `json:"score"`
		MaxScore    float64        `json:"max_score"`
		SubmittedAt time.Time      `json:"submitted_at"` // UTC
	}
)

// Sanitized returns a copy safe to show students: correct answers and
// explanations stripped.
func (q Quiz) Sanitized() Quiz {
	questions := make([]Question, len(q.Questions))
	for i, qn := range q.Questions {
		qn.CorrectOption = -1
		qn.Explanation = ""
		questions[i] = qn
	}
	q.Questions = questions
	return q
}

// NewQuiz contains information needed to create a new Quiz.
type NewQuiz struct {
	CourseID    string        `json:"course_id" validate:"required"`
	Title       string        `json:"title" validate:"required"`
	Description string        `json:"description"`
	Questions   []NewQuestion `json:"questions" validate:"required,min=1,dive"`
}

type NewQuestion struct {
	Text          string   `json:"text" validate:"required"`
	Options       []string `json:"options" validate:"required,min=2,dive,required"`
	CorrectOption int      `json:"correct_option" validate:"min=0"`
	Explanation   string   `json:"explanation"`
}

func (nq *NewQuiz) Validate(validate *validator.Validate) error {
	nq.Title = core.CleanString(nq.Title)
	nq.Description = core.CleanString(nq.Description)
	if err := validate.Struct(nq); err != nil {
		return err
	}
	for _, qn := range nq.Questions {
		if qn.CorrectOption >= len(qn.Options) {
			return core.NewValidationError(
				nil,
				core.FieldError{Field: "questions", Error: "correct_option is out of range"},
			)
		}
	}
	return nil
}

// NewSubmission is a student's submitted answer sheet.
type NewSubmission struct {
	Answers map[string]int `json:"answers" validate:"required,min=1"`
}

func (ns NewSubmission) Validate(validate *validator.Validate) error {
	return validate.Struct(ns)
}
