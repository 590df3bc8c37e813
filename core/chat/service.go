package chat

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

var (
	// errors
	ErrRoomNotFound    = errors.New("chat room not found")
	ErrMessageNotFound = errors.New("chat message not found")
)

// DefaultMessageLimit caps history queries that do not pass an explicit limit.
const DefaultMessageLimit = 50

type (
	Repository interface {
		CreateRoom(ctx context.Context, room Room) (Room, error)
		QueryCourseRooms(ctx context.Context, courseID string) ([]Room, error)
		GetRoomByID(ctx context.Context, id string) (Room, error)

		CreateMessage(ctx context.Context, msg Message) (Message, error)
		// QueryRoomMessages returns at most limit messages, newest first.
		QueryRoomMessages(ctx context.Context, roomID string, limit int) ([]Message, error)
		GetMessageByID(ctx context.Context, id string) (Message, error)
		UpdateMessage(ctx context.Context, msg Message) (Message, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CreateRoom(ctx context.Context, courseID string, author user.User, nr NewRoom) (Room, error) {
	room := Room{
		CourseID:  courseID,
		Name:      nr.Name,
		CreatedBy: author.ID,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateRoom(ctx, room)
}

func (svc *Service) QueryRooms(ctx context.Context, courseID string) ([]Room, error) {
	return svc.repo.QueryCourseRooms(ctx, courseID)
}

func (svc *Service) GetRoom(ctx context.Context, id string) (Room, error) {
	return svc.repo.GetRoomByID(ctx, id)
}

// Post appends a message to the room on behalf of usr.
func (svc *Service) Post(ctx context.Context, room Room, usr user.User, nm NewMessage) (Message, error) {
	msg := Message{
		RoomID:    room.ID,
		UserID:    usr.ID,
		Username:  usr.Username,
		Content:   core.CleanString(nm.Content),
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateMessage(ctx, msg)
}

func (svc *Service) GetMessage(ctx context.Context, id string) (Message, error) {
	return svc.repo.GetMessageByID(ctx, id)
}

func (svc *Service) QueryMessages(ctx context.Context, roomID string, limit int) ([]Message, error) {
	if limit <= 0 || limit > DefaultMessageLimit {
		limit = DefaultMessageLimit
	}
	return svc.repo.QueryRoomMessages(ctx, roomID, limit)
}

// Pin toggles the pinned flag on a message.
func (svc *Service) Pin(ctx context.Context, id string, pinned bool) (Message, error) {
	msg, err := svc.repo.GetMessageByID(ctx, id)
	if err != nil {
		return Message{}, err
	}
	msg.IsPinned = pinned
	return svc.repo.UpdateMessage(ctx, msg)
}
