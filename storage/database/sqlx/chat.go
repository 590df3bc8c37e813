package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core/chat"
)

type roomRow struct {
	ID        string      `db:"id"`
	CourseID  string      `db:"course_id"`
	Name      string      `db:"name"`
	CreatedBy null.String `db:"created_by"`
	CreatedAt null.Time   `db:"created_at"`
}

func (r roomRow) room() chat.Room {
	return chat.Room{
		ID:        r.ID,
		CourseID:  r.CourseID,
		Name:      r.Name,
		CreatedBy: r.CreatedBy.String,
		CreatedAt: r.CreatedAt.Time,
	}
}

type messageRow struct {
	ID        string      `db:"id"`
	RoomID    string      `db:"room_id"`
	UserID    null.String `db:"user_id"`
	Username  null.String `db:"username"`
	Content   string      `db:"content"`
	IsPinned  bool        `db:"is_pinned"`
	CreatedAt null.Time   `db:"created_at"`
}

func (r messageRow) message() chat.Message {
	return chat.Message{
		ID:        r.ID,
		RoomID:    r.RoomID,
		UserID:    r.UserID.String,
		Username:  r.Username.String,
		Content:   r.Content,
		IsPinned:  r.IsPinned,
		CreatedAt: r.CreatedAt.Time,
	}
}

type chatRepository struct {
	db *sqlx.DB
}

var _ chat.Repository = (*chatRepository)(nil) // interface compliance check

func NewChatRepository(db *sqlx.DB) *chatRepository {
	return &chatRepository{db: db}
}

func (repo chatRepository) CreateRoom(ctx context.Context, room chat.Room) (chat.Room, error) {
	room.ID = uuid.New().String()
	row := roomRow{
		ID:        room.ID,
		CourseID:  room.CourseID,
		Name:      room.Name,
		CreatedBy: null.NewString(room.CreatedBy, room.CreatedBy != ""),
		CreatedAt: null.NewTime(room.CreatedAt.UTC(), !room.CreatedAt.IsZero()),
	}
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO chat_room (id, course_id, name, created_by, created_at)
		VALUES (:id, :course_id, :name, :created_by, :created_at)`,
		row,
	)
	if err != nil {
		return chat.Room{}, errors.Wrap(err, "inserting chat room")
	}
	return room, nil
}

func (repo chatRepository) QueryCourseRooms(ctx context.Context, courseID string) ([]chat.Room, error) {
	var rows []roomRow
	err := repo.db.SelectContext(ctx, &rows,
		"SELECT * FROM chat_room WHERE course_id = $1 ORDER BY created_at", courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying chat rooms")
	}
	rooms := make([]chat.Room, 0, len(rows))
	for _, row := range rows {
		rooms = append(rooms, row.room())
	}
	return rooms, nil
}

func (repo chatRepository) GetRoomByID(ctx context.Context, id string) (chat.Room, error) {
	if _, err := uuid.Parse(id); err != nil {
		return chat.Room{}, chat.ErrRoomNotFound
	}

	var row roomRow
	if err := repo.db.GetContext(ctx, &row, "SELECT * FROM chat_room WHERE id = $1", id); err != nil {
		if err == sql.ErrNoRows {
			return chat.Room{}, chat.ErrRoomNotFound
		}
		return chat.Room{}, errors.Wrap(err, "finding chat room")
	}
	return row.room(), nil
}

func (repo chatRepository) CreateMessage(ctx context.Context, msg chat.Message) (chat.Message, error) {
	msg.ID = uuid.New().String()
	row := messageRow{
		ID:        msg.ID,
		RoomID:    msg.RoomID,
		UserID:    null.NewString(msg.UserID, msg.UserID != ""),
		Username:  null.NewString(msg.Username, msg.Username != ""),
		Content:   msg.Content,
		IsPinned:  msg.IsPinned,
		CreatedAt: null.NewTime(msg.CreatedAt.UTC(), !msg.CreatedAt.IsZero()),
	}
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO chat_message (id, room_id, user_id, username, content, is_pinned, created_at)
		VALUES (:id, :room_id, :user_id, :username, :content, :is_pinned, :created_at)`,
		row,
	)
	if err != nil {
		return chat.Message{}, errors.Wrap(err, "inserting chat message")
	}
	return msg, nil
}

func (repo chatRepository) QueryRoomMessages(ctx context.Context, roomID string, limit int) ([]chat.Message, error) {
	var rows []messageRow
	err := repo.db.SelectContext(ctx, &rows,
		"SELECT * FROM chat_message WHERE room_id = $1 ORDER BY created_at DESC LIMIT $2", roomID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "querying chat messages")
	}
	msgs := make([]chat.Message, 0, len(rows))
	for _, row := range rows {
		msgs = append(msgs, row.message())
	}
	return msgs, nil
}

func (repo chatRepository) GetMessageByID(ctx context.Context, id string) (chat.Message, error) {
	if _, err := uuid.Parse(id); err != nil {
		return chat.Message{}, chat.ErrMessageNotFound
	}

	var row messageRow
	if err := repo.db.GetContext(ctx, &row, "SELECT * FROM chat_message WHERE id = $1", id); err != nil {
		if err == sql.ErrNoRows {
			return chat.Message{}, chat.ErrMessageNotFound
		}
		return chat.Message{}, errors.Wrap(err, "finding chat message")
	}
	return row.message(), nil
}

func (repo chatRepository) UpdateMessage(ctx context.Context, msg chat.Message) (chat.Message, error) {
	_, err := repo.db.ExecContext(ctx,
		"UPDATE chat_message SET content = $1, is_pinned = $2 WHERE id = $3",
		msg.Content, msg.IsPinned, msg.ID)
	if err != nil {
		return chat.Message{}, errors.Wrap(err, "updating chat message")
	}
	return msg, nil
}
