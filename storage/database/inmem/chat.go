package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core/chat"
)

type chatRepository struct {
	db *DB
}

var _ chat.Repository = (*chatRepository)(nil) // interface compliance check

func NewChatRepository(db *DB) *chatRepository {
	return &chatRepository{db: db}
}

func (repo *chatRepository) CreateRoom(_ context.Context, room chat.Room) (chat.Room, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	room.ID = uuid.New().String()
	repo.db.rooms[room.ID] = &room
	return room, nil
}

func (repo *chatRepository) QueryCourseRooms(_ context.Context, courseID string) ([]chat.Room, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var rooms []chat.Room
	for _, room := range repo.db.rooms {
		if room.CourseID == courseID {
			rooms = append(rooms, *room)
		}
	}
	sort.SliceStable(rooms, func(i, j int) bool { return rooms[i].CreatedAt.Before(rooms[j].CreatedAt) })
	return rooms, nil
}

func (repo *chatRepository) GetRoomByID(_ context.Context, id string) (chat.Room, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if room, ok := repo.db.rooms[id]; ok {
		return *room, nil
	}
	return chat.Room{}, chat.ErrRoomNotFound
}

func (repo *chatRepository) CreateMessage(_ context.Context, msg chat.Message) (chat.Message, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	msg.ID = uuid.New().String()
	repo.db.messages[msg.ID] = &msg
	return msg, nil
}

func (repo *chatRepository) QueryRoomMessages(_ context.Context, roomID string, limit int) ([]chat.Message, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var msgs []chat.Message
	for _, msg := range repo.db.messages {
		if msg.RoomID == roomID {
			msgs = append(msgs, *msg)
		}
	}
	// newest first
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].CreatedAt.After(msgs[j].CreatedAt) })
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return msgs, nil
}

func (repo *chatRepository) GetMessageByID(_ context.Context, id string) (chat.Message, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if msg, ok := repo.db.messages[id]; ok {
		return *msg, nil
	}
	return chat.Message{}, chat.ErrMessageNotFound
}

func (repo *chatRepository) UpdateMessage(_ context.Context, msg chat.Message) (chat.Message, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.messages[msg.ID]; !ok {
		return chat.Message{}, chat.ErrMessageNotFound
	}
	repo.db.messages[msg.ID] = &msg
	return msg, nil
}
