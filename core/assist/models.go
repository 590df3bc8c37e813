package assist

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

type (
	// ContentRequest asks for generated learning content on a topic.
	ContentRequest struct {
		Topic      string `json:"topic" validate:"required"`
		Difficulty string `json:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced"`
	}

	// OutlineRequest asks for a structured course outline.
	OutlineRequest struct {
		Title       string `json:"title" validate:"required"`
		Description string `json:"description" validate:"required"`
	}

	// QuizQuestionsRequest asks for quiz questions on given content.
	QuizQuestionsRequest struct {
		Topic        string `json:"topic" validate:"required"`
		Content      string `json:"content" validate:"required"`
		NumQuestions int    `json:"num_questions" validate:"omitempty,min=1,max=20"`
	}

	// RecommendationsRequest asks for learning recommendations for one
	// student in one course.
	RecommendationsRequest struct {
		CourseID string `json:"course_id" validate:"required"`
	}

	// AnalysisRequest asks for a performance analysis of a student in a
	// course. StudentID defaults to the caller.
	AnalysisRequest struct {
		CourseID  string `json:"course_id" validate:"required"`
		StudentID string `json:"student_id"`
	}

	// Reply wraps generated text for the API.
	Reply struct {
		Content string `json:"content"`
	}
)

func (r *ContentRequest) Validate(validate *validator.Validate) error {
	r.Topic = core.CleanString(r.Topic)
	if r.Difficulty == "" {
		r.Difficulty = "intermediate"
	}
	return validate.Struct(r)
}

func (r *OutlineRequest) Validate(validate *validator.Validate) error {
	r.Title = core.CleanString(r.Title)
	r.Description = core.CleanString(r.Description)
	return validate.Struct(r)
}

func (r *QuizQuestionsRequest) Validate(validate *validator.Validate) error {
	r.Topic = core.CleanString(r.Topic)
	if r.NumQuestions == 0 {
		r.NumQuestions = 5
	}
	return validate.Struct(r)
}

func (r *RecommendationsRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(r)
}

func (r *AnalysisRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(r)
}
