package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/trezcool/darasa/core/chat"
	"github.com/trezcool/darasa/core/user"
	testutil "github.com/trezcool/darasa/tests"
)

func Test_chatApi_rooms(t *testing.T) {
	db.Reset()

	student := testutil.CreateUser(t, usrRepo, "Student", "chrstud1", "chrstud@test.cd", "", []string{user.RoleStudent}, true)
	instructor := testutil.CreateUser(t, usrRepo, "Instructor", "chrinst1", "chrinst@test.cd", "", []string{user.RoleInstructor}, true)
	outsider := testutil.CreateUser(t, usrRepo, "Outsider", "chrouts1", "chrouts@test.cd", "", []string{user.RoleStudent}, true)

	crs := testutil.CreateCourse(t, crsRepo, "Go 101", instructor, student)

	body := marchallObj(t, map[string]string{"course_id": crs.ID, "name": "general"})

	createTests := []httpTest{
		{
			name: "students cannot create rooms", token: getToken(t, student), body: body,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "masked for outsiders", token: getToken(t, outsider), body: body,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{name: "missing name", token: getToken(t, instructor), body: marchallObj(t, map[string]string{"course_id": crs.ID}), wantCode: http.StatusBadRequest},
		{name: "owner creates", token: getToken(t, instructor), body: body, wantCode: http.StatusCreated},
	}
	for _, tt := range createTests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/api/chat/rooms", tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			}
		})
	}

	t.Run("enrolled student lists rooms", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/chat/rooms/"+crs.ID, getToken(t, student))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var rooms []chat.Room
		if err := json.Unmarshal(rec.Body.Bytes(), &rooms); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if len(rooms) != 1 || rooms[0].Name != "general" {
			t.Errorf("rooms = %+v; want the one created above", rooms)
		}
	})
}

func Test_chatApi_messages(t *testing.T) {
	db.Reset()

	student := testutil.CreateUser(t, usrRepo, "Student", "chmstud1", "chmstud@test.cd", "", []string{user.RoleStudent}, true)
	instructor := testutil.CreateUser(t, usrRepo, "Instructor", "chminst1", "chminst@test.cd", "", []string{user.RoleInstructor}, true)
	outsider := testutil.CreateUser(t, usrRepo, "Outsider", "chmouts1", "chmouts@test.cd", "", []string{user.RoleStudent}, true)

	crs := testutil.CreateCourse(t, crsRepo, "Go 101", instructor, student)
	room := testutil.CreateRoom(t, chatRepo, crs, "general")
	path := "/api/chat/messages/" + room.ID

	t.Run("enrolled student posts", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, path, getToken(t, student), marchallObj(t, map[string]string{"content": "hello!"}))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var msg chat.Message
		if err := json.Unmarshal(rec.Body.Bytes(), &msg); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if msg.Username != student.Username {
			t.Errorf("username = %s; want %s", msg.Username, student.Username)
		}
	})

	t.Run("empty content is rejected", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, path, getToken(t, student), []byte(`{"content":"  "}`))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("outsiders cannot post", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, path, getToken(t, outsider), marchallObj(t, map[string]string{"content": "hi"}))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("history is newest first and capped by limit", func(t *testing.T) {
		ctx := context.Background()
		now := time.Now().UTC()
		for i := 0; i < 5; i++ {
			if _, err := chatRepo.CreateMessage(ctx, chat.Message{
				RoomID:    room.ID,
				UserID:    student.ID,
				Username:  student.Username,
				Content:   "msg " + strconv.Itoa(i),
				CreatedAt: now.Add(time.Duration(i) * time.Second),
			}); err != nil {
				t.Fatalf("CreateMessage(): %v", err)
			}
		}

		req, rec := newAuthRequest(http.MethodGet, path+"?limit=3", getToken(t, student))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var msgs []chat.Message
		if err := json.Unmarshal(rec.Body.Bytes(), &msgs); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if len(msgs) != 3 {
			t.Errorf("messages = %d; want 3", len(msgs))
		}
		for i := 1; i < len(msgs); i++ {
			if msgs[i].CreatedAt.After(msgs[i-1].CreatedAt) {
				t.Error("messages should be newest first")
			}
		}
	})
}

func Test_chatApi_pin(t *testing.T) {
	db.Reset()

	student := testutil.CreateUser(t, usrRepo, "Student", "chpstud1", "chpstud@test.cd", "", []string{user.RoleStudent}, true)
	instructor := testutil.CreateUser(t, usrRepo, "Instructor", "chpinst1", "chpinst@test.cd", "", []string{user.RoleInstructor}, true)

	crs := testutil.CreateCourse(t, crsRepo, "Go 101", instructor, student)
	room := testutil.CreateRoom(t, chatRepo, crs, "general")

	msg, err := chatRepo.CreateMessage(context.Background(), chat.Message{
		RoomID:   room.ID,
		UserID:   student.ID,
		Username: student.Username,
		Content:  "pin me",
	})
	if err != nil {
		t.Fatalf("CreateMessage(): %v", err)
	}
	path := "/api/chat/messages/pin/" + msg.ID

	t.Run("students cannot pin", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, path, getToken(t, student))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("owner toggles the pin", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, path, getToken(t, instructor))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var pinned chat.Message
		if err := json.Unmarshal(rec.Body.Bytes(), &pinned); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if !pinned.IsPinned {
			t.Error("message should be pinned")
		}

		// a second call unpins
		req, rec = newAuthRequest(http.MethodPut, path, getToken(t, instructor))
		app.ServeHTTP(rec, req)
		if err := json.Unmarshal(rec.Body.Bytes(), &pinned); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if pinned.IsPinned {
			t.Error("message should be unpinned")
		}
	})

	t.Run("unknown message", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/api/chat/messages/pin/deadbeef", getToken(t, instructor))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
	})
}
