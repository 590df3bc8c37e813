package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/trezcool/darasa/core/quiz"
	"github.com/trezcool/darasa/core/user"
	testutil "github.com/trezcool/darasa/tests"
)

func Test_quizApi_create(t *testing.T) {
	db.Reset()

	student := testutil.CreateUser(t, usrRepo, "Student", "qzcstud1", "qzcstud@test.cd", "", []string{user.RoleStudent}, true)
	instructor := testutil.CreateUser(t, usrRepo, "Instructor", "qzcinst1", "qzcinst@test.cd", "", []string{user.RoleInstructor}, true)
	rival := testutil.CreateUser(t, usrRepo, "Rival", "qzcriva1", "qzcriva@test.cd", "", []string{user.RoleInstructor}, true)

	crs := testutil.CreateCourse(t, crsRepo, "Go 101", instructor, student)

	body := func(courseID string, correct int) []byte {
		return marchallObj(t, map[string]interface{}{
			"course_id": courseID,
			"title":     "Basics",
			"questions": []map[string]interface{}{
				{
					"text":           "2 + 2 = ?",
					"options":        []string{"3", "4", "5"},
					"correct_option": correct,
					"explanation":    "basic arithmetic",
				},
			},
		})
	}

	tests := []httpTest{
		{
			name: "students cannot create quizzes", token: getToken(t, student), body: body(crs.ID, 1),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "non-owner instructor is masked", token: getToken(t, rival), body: body(crs.ID, 1),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{name: "correct_option out of range", token: getToken(t, instructor), body: body(crs.ID, 7), wantCode: http.StatusBadRequest},
		{name: "owner creates", token: getToken(t, instructor), body: body(crs.ID, 1), wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/api/quizzes", tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			}
			if tt.wantCode == http.StatusCreated {
				var qz quiz.Quiz
				if err := json.Unmarshal(rec.Body.Bytes(), &qz); err != nil {
					t.Fatalf("unmarshalling response: %v", err)
				}
				if len(qz.Questions) != 1 || qz.Questions[0].ID == "" {
					t.Errorf("questions should get server-side ids: %+v", qz.Questions)
				}
			}
		})
	}
}

func Test_quizApi_sanitizedForStudents(t *testing.T) {
	db.Reset()

	student := testutil.CreateUser(t, usrRepo, "Student", "qzsstud1", "qzsstud@test.cd", "", []string{user.RoleStudent}, true)
	instructor := testutil.CreateUser(t, usrRepo, "Instructor", "qzsinst1", "qzsinst@test.cd", "", []string{user.RoleInstructor}, true)

	crs := testutil.CreateCourse(t, crsRepo, "Go 101", instructor, student)
	qz := testutil.CreateQuiz(t, quizRepo, crs, "Basics")

	assertSanitized := func(t *testing.T, got quiz.Quiz) {
		t.Helper()
		for _, qn := range got.Questions {
			if qn.CorrectOption != -1 {
				t.Errorf("correct_option leaked: %d", qn.CorrectOption)
			}
			if qn.Explanation != "" {
				t.Errorf("explanation leaked: %s", qn.Explanation)
			}
		}
	}

	t.Run("course listing is sanitized for students", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/quizzes/course/"+crs.ID, getToken(t, student))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var quizzes []quiz.Quiz
		if err := json.Unmarshal(rec.Body.Bytes(), &quizzes); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if len(quizzes) != 1 {
			t.Fatalf("quizzes = %d; want 1", len(quizzes))
		}
		assertSanitized(t, quizzes[0])
	})

	t.Run("detail is sanitized for students", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/quizzes/"+qz.ID, getToken(t, student))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var got quiz.Quiz
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		assertSanitized(t, got)
	})

	t.Run("owner sees the answer key", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/quizzes/"+qz.ID, getToken(t, instructor))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var got quiz.Quiz
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if got.Questions[0].CorrectOption != 1 {
			t.Errorf("correct_option = %d; want 1", got.Questions[0].CorrectOption)
		}
	})
}

func Test_quizApi_submit(t *testing.T) {
	db.Reset()

	student := testutil.CreateUser(t, usrRepo, "Student", "qzbstud1", "qzbstud@test.cd", "", []string{user.RoleStudent}, true)
	instructor := testutil.CreateUser(t, usrRepo, "Instructor", "qzbinst1", "qzbinst@test.cd", "", []string{user.RoleInstructor}, true)

	crs := testutil.CreateCourse(t, crsRepo, "Go 101", instructor, student)
	qz := testutil.CreateQuiz(t, quizRepo, crs, "Basics",
		quiz.Question{ID: "qn1", Text: "2 + 2 = ?", Options: []string{"3", "4", "5"}, CorrectOption: 1},
		quiz.Question{ID: "qn2", Text: "3 * 3 = ?", Options: []string{"6", "9"}, CorrectOption: 1},
	)

	path := "/api/quizzes/" + qz.ID + "/submit"
	answers := func(m map[string]int) []byte {
		return marchallObj(t, map[string]interface{}{"answers": m})
	}

	tests := []httpTest{
		{
			name: "owner cannot submit", token: getToken(t, instructor),
			body:     answers(map[string]int{"qn1": 1, "qn2": 1}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "no answers", token: getToken(t, student), body: []byte("{}"), wantCode: http.StatusBadRequest},
		{
			name: "unknown question", token: getToken(t, student),
			body:     answers(map[string]int{"lol": 0}),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "option out of range", token: getToken(t, student),
			body:     answers(map[string]int{"qn1": 9}),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "scored submission", token: getToken(t, student),
			body:     answers(map[string]int{"qn1": 1, "qn2": 0}),
			wantCode: http.StatusCreated,
			extra:    1.0, // one correct answer out of two
		},
		{
			name: "resubmission returns the original", token: getToken(t, student),
			body:     answers(map[string]int{"qn1": 1, "qn2": 1}),
			wantCode: http.StatusCreated,
			extra:    1.0, // not rescored
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			}
			if wantScore, ok := tt.extra.(float64); ok {
				var sub quiz.Submission
				if err := json.Unmarshal(rec.Body.Bytes(), &sub); err != nil {
					t.Fatalf("unmarshalling response: %v", err)
				}
				if sub.Score != wantScore {
					t.Errorf("score = %v; want %v", sub.Score, wantScore)
				}
				if sub.MaxScore != 2 {
					t.Errorf("max_score = %v; want 2", sub.MaxScore)
				}
			}
		})
	}

	// submitting marks the quiz done on the student's progress record
	rec, err := progSvc.Get(context.Background(), student.ID, crs.ID)
	if err != nil {
		t.Fatalf("progress.Get(): %v", err)
	}
	if len(rec.CompletedQuizzes) != 1 || rec.CompletedQuizzes[0] != qz.ID {
		t.Errorf("completed quizzes = %v; want [%s]", rec.CompletedQuizzes, qz.ID)
	}
}
