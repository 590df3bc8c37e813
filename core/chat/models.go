package chat

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

type (
	// Room is a discussion channel scoped to a course.
	Room struct {
		ID        string    `json:"id"`
		CourseID  string    `json:"course_id"`
		Name      string    `json:"name"`
		CreatedBy string    `json:"created_by"`
		CreatedAt time.Time `json:"created_at"` // UTC
	}

	Message struct {
		ID        string    `json:"id"`
		RoomID    string    `json:"room_id"`
		UserID    string    `json:"user_id"`
		Username  string    `json:"username"`
		Content   string    `json:"content"`
		IsPinned  bool      `json:"is_pinned"`
		CreatedAt time.Time `json:"created_at"` // UTC
	}
)

// NewRoom contains information needed to create a new Room.
type NewRoom struct {
	Name string `json:"name" validate:"required"`
}

func (nr *NewRoom) Validate(validate *validator.Validate) error {
	nr.Name = core.CleanString(nr.Name)
	return validate.Struct(nr)
}

// NewMessage is a message posted to a Room.
type NewMessage struct {
	Content string `json:"content" validate:"required,max=2000"`
}

func (nm *NewMessage) Validate(validate *validator.Validate) error {
	nm.Content = core.CleanString(nm.Content)
	return validate.Struct(nm)
}
