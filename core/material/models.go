package material

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

// Material types
const (
	TypeDocument   = "document"
	TypeVideo      = "video"
	TypeLink       = "link"
	TypeAssignment = "assignment"
)

// Difficulty levels
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

type Material struct {
	ID            string    `json:"id"`
	CourseID      string    `json:"course_id"`
	CreatedBy     string    `json:"created_by"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Type          string    `json:"type"`
	ContentURL    string    `json:"content_url"`
	Difficulty    string    `json:"difficulty_level"`
	EstimatedTime int       `json:"estimated_time"` // minutes
	Position      int       `json:"position"`       // 1-based order within the course
	IsPublished   bool      `json:"is_published"`
	CreatedAt     time.Time `json:"created_at"` // UTC
	UpdatedAt     time.Time `json:"updated_at"` // UTC
}

// NewMaterial contains information needed to create a new Material.
type NewMaterial struct {
	Title         string `json:"title" validate:"required"`
	Description   string `json:"description"`
	Type          string `json:"type" validate:"required,oneof=document video link assignment"`
	ContentURL    string `json:"content_url" validate:"required,url"`
	Difficulty    string `json:"difficulty_level" validate:"required,oneof=beginner intermediate advanced"`
	EstimatedTime int    `json:"estimated_time" validate:"omitempty,min=1"`
}

func (nm *NewMaterial) Validate(validate *validator.Validate) error {
	nm.Title = core.CleanString(nm.Title)
	nm.Description = core.CleanString(nm.Description)
	return validate.Struct(nm)
}

// UpdateMaterial defines what information may be provided to modify an existing Material.
type UpdateMaterial struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	Type          string `json:"type" validate:"omitempty,oneof=document video link assignment"`
	ContentURL    string `json:"content_url" validate:"omitempty,url"`
	Difficulty    string `json:"difficulty_level" validate:"omitempty,oneof=beginner intermediate advanced"`
	EstimatedTime int    `json:"estimated_time" validate:"omitempty,min=1"`
	IsPublished   *bool  `json:"is_published"`
}

func (um *UpdateMaterial) Validate(origMat Material, validate *validator.Validate) error {
	if title := core.CleanString(um.Title); title != "" {
		um.Title = title
	} else {
		um.Title = origMat.Title
	}
	if desc := core.CleanString(um.Description); desc != "" {
		um.Description = desc
	} else {
		um.Description = origMat.Description
	}
	if um.Type == "" {
		um.Type = origMat.Type
	}
	if um.ContentURL == "" {
		um.ContentURL = origMat.ContentURL
	}
	if um.Difficulty == "" {
		um.Difficulty = origMat.Difficulty
	}
	if um.EstimatedTime == 0 {
		um.EstimatedTime = origMat.EstimatedTime
	}
	return validate.Struct(um)
}

// Reorder sets the full ordering of a course's materials.
type Reorder struct {
	MaterialIDs []string `json:"material_ids" validate:"required,min=1,dive,required"`
}

func (r Reorder) Validate(validate *validator.Validate) error {
	return validate.Struct(r)
}
