package course

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

type Course struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Objectives   []string  `json:"objectives"`
	InstructorID string    `json:"instructor_id"`
	StudentIDs   []string  `json:"student_ids"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

func (c *Course) IsOwner(usr user.User) bool {
	return c.InstructorID == usr.ID
}

func (c *Course) IsEnrolled(userID string) bool {
	for _, id := range c.StudentIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// CanView reports whether usr may read this course and its children.
func (c *Course) CanView(usr user.User) bool {
	return usr.IsAdmin() || c.IsOwner(usr) || c.IsEnrolled(usr.ID)
}

// CanEdit reports whether usr may mutate or delete this course and its children.
func (c *Course) CanEdit(usr user.User) bool {
	return usr.IsAdmin() || c.IsOwner(usr)
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Objectives  []string `json:"objectives" validate:"omitempty,dive,required"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Title = core.CleanString(nc.Title)
	nc.Description = core.CleanString(nc.Description)
	return validate.Struct(nc)
}

// UpdateCourse defines what information may be provided to modify an existing Course.
type UpdateCourse struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Objectives  []string `json:"objectives" validate:"omitempty,dive,required"`
}

func (uc *UpdateCourse) Validate(origCrs Course, validate *validator.Validate) error {
	if title := core.CleanString(uc.Title); title != "" {
		uc.Title = title
	} else {
		uc.Title = origCrs.Title
	}

	if desc := core.CleanString(uc.Description); desc != "" {
		uc.Description = desc
	} else {
		uc.Description = origCrs.Description
	}

	return validate.Struct(uc)
}

type QueryFilter struct {
	Search       string `query:"search"`
	InstructorID string `query:"instructor_id"`
	StudentID    string `query:"student_id"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.InstructorID == "" && qf.StudentID == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
