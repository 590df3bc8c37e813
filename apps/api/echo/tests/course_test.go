package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/user"
	testutil "github.com/trezcool/darasa/tests"
)

func Test_courseApi_create(t *testing.T) {
	db.Reset()

	student := testutil.CreateUser(t, usrRepo, "Student", "crsstud1", "crsstud@test.cd", "", []string{user.RoleStudent}, true)
	instructor := testutil.CreateUser(t, usrRepo, "Instructor", "crsinst1", "crsinst@test.cd", "", []string{user.RoleInstructor}, true)

	body := marchallObj(t, map[string]interface{}{
		"title":       "Go 101",
		"description": "An introduction to Go",
		"objectives":  []string{"syntax", "tooling"},
	})

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "students cannot create courses", token: getToken(t, student), body: body,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "missing fields", token: getToken(t, instructor), body: []byte("{}"), wantCode: http.StatusBadRequest},
		{name: "ok", token: getToken(t, instructor), body: body, wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/api/courses", tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			}
			if tt.wantCode == http.StatusCreated {
				var crs course.Course
				if err := json.Unmarshal(rec.Body.Bytes(), &crs); err != nil {
					t.Fatalf("unmarshalling response: %v", err)
				}
				if crs.InstructorID != instructor.ID {
					t.Errorf("instructor_id = %s; want %s", crs.InstructorID, instructor.ID)
				}
			}
		})
	}
}

func Test_courseApi_query(t *testing.T) {
	db.Reset()

	student := testutil.CreateUser(t, usrRepo, "Student", "qrystud1", "qrystud@test.cd", "", []string{user.RoleStudent}, true)
	instructor := testutil.CreateUser(t, usrRepo, "Instructor", "qryinst1", "qryinst@test.cd", "", []string{user.RoleInstructor}, true)
	outsider := testutil.CreateUser(t, usrRepo, "Outsider", "qryouts1", "qryouts@test.cd", "", []string{user.RoleStudent}, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "qryadmn1", "qryadmn@test.cd", "", []string{user.RoleAdmin}, true)

	now := time.Now().UTC()
	enrolled := testutil.CreateCourseAt(t, crsRepo, "Go 101", now, instructor, student)
	other := testutil.CreateCourseAt(t, crsRepo, "Rust 101", now.Add(time.Second), instructor)

	empty := marchallList(t, []interface{}{}...)

	tests := []httpTest{
		{
			name: "students see only their enrollments", token: getToken(t, student),
			wantCode: http.StatusOK, wantData: marchallList(t, enrolled),
		},
		{
			name: "instructors see their own courses", token: getToken(t, instructor),
			wantCode: http.StatusOK, wantData: marchallList(t, enrolled, other),
		},
		{name: "outsiders see nothing", token: getToken(t, outsider), wantCode: http.StatusOK, wantData: empty},
		{
			name: "admins see everything", token: getToken(t, admin),
			wantCode: http.StatusOK, wantData: marchallList(t, enrolled, other),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/api/courses", tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_courseApi_detail(t *testing.T) {
	db.Reset()

	student := testutil.CreateUser(t, usrRepo, "Student", "detstud1", "detstud@test.cd", "", []string{user.RoleStudent}, true)
	instructor := testutil.CreateUser(t, usrRepo, "Instructor", "detinst1", "detinst@test.cd", "", []string{user.RoleInstructor}, true)
	outsider := testutil.CreateUser(t, usrRepo, "Outsider", "detouts1", "detouts@test.cd", "", []string{user.RoleStudent}, true)

	crs := testutil.CreateCourse(t, crsRepo, "Go 101", instructor, student)

	tests := []httpTest{
		{
			name: "enrolled student sees the course", path: "/api/courses/" + crs.ID, token: getToken(t, student),
			wantCode: http.StatusOK, wantData: marchallObj(t, crs),
		},
		{
			name: "owner sees the course", path: "/api/courses/" + crs.ID, token: getToken(t, instructor),
			wantCode: http.StatusOK, wantData: marchallObj(t, crs),
		},
		{
			name: "existence is masked for outsiders", path: "/api/courses/" + crs.ID, token: getToken(t, outsider),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "unknown id", path: "/api/courses/deadbeef", token: getToken(t, instructor),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_courseApi_updateDestroy(t *testing.T) {
	db.Reset()

	student := testutil.CreateUser(t, usrRepo, "Student", "mutstud1", "mutstud@test.cd", "", []string{user.RoleStudent}, true)
	instructor := testutil.CreateUser(t, usrRepo, "Instructor", "mutinst1", "mutinst@test.cd", "", []string{user.RoleInstructor}, true)
	rival := testutil.CreateUser(t, usrRepo, "Rival", "mutriva1", "mutriva@test.cd", "", []string{user.RoleInstructor}, true)

	crs := testutil.CreateCourse(t, crsRepo, "Go 101", instructor, student)
	rivalCrs := testutil.CreateCourse(t, crsRepo, "Rust 101", rival, student)

	update := marchallObj(t, map[string]string{"title": "Go 102"})

	tests := []httpTest{
		{
			name: "enrolled student cannot edit", method: http.MethodPut, path: "/api/courses/" + crs.ID,
			token: getToken(t, student), body: update,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "non-owner instructor cannot edit", method: http.MethodPut, path: "/api/courses/" + rivalCrs.ID,
			token: getToken(t, instructor), body: update,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "non-owner instructor cannot delete", method: http.MethodDelete, path: "/api/courses/" + rivalCrs.ID,
			token:    getToken(t, instructor),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "unknown id is still a 404", method: http.MethodDelete, path: "/api/courses/deadbeef",
			token:    getToken(t, instructor),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "owner edits", method: http.MethodPut, path: "/api/courses/" + crs.ID,
			token: getToken(t, instructor), body: update, wantCode: http.StatusOK,
		},
		{
			name: "enrolled student cannot delete", method: http.MethodDelete, path: "/api/courses/" + crs.ID,
			token:    getToken(t, student),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "owner deletes", method: http.MethodDelete, path: "/api/courses/" + crs.ID,
			token: getToken(t, instructor), wantCode: http.StatusNoContent,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			}
			if tt.wantCode == http.StatusOK {
				var updated course.Course
				if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
					t.Fatalf("unmarshalling response: %v", err)
				}
				if updated.Title != "Go 102" {
					t.Errorf("title = %s; want Go 102", updated.Title)
				}
			}
		})
	}
}

func Test_courseApi_enrollment(t *testing.T) {
	db.Reset()

	student := testutil.CreateUser(t, usrRepo, "Student", "enrstud1", "enrstud@test.cd", "", []string{user.RoleStudent}, true)
	other := testutil.CreateUser(t, usrRepo, "Other", "enroths1", "enroths@test.cd", "", []string{user.RoleStudent}, true)
	instructor := testutil.CreateUser(t, usrRepo, "Instructor", "enrinst1", "enrinst@test.cd", "", []string{user.RoleInstructor}, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "enradmn1", "enradmn@test.cd", "", []string{user.RoleAdmin}, true)

	crs := testutil.CreateCourse(t, crsRepo, "Go 101", instructor)

	enrollPath := func(crsID, usrID string) string { return "/api/courses/" + crsID + "/students/" + usrID }

	tests := []httpTest{
		{
			name: "students cannot enroll themselves", method: http.MethodPost, path: enrollPath(crs.ID, student.ID),
			token:    getToken(t, student),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "students cannot enroll someone else", method: http.MethodPost, path: enrollPath(crs.ID, other.ID),
			token:    getToken(t, student),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "owner enrolls a student", method: http.MethodPost, path: enrollPath(crs.ID, student.ID),
			token: getToken(t, instructor), wantCode: http.StatusOK,
		},
		{
			name: "double enrollment is a validation error", method: http.MethodPost, path: enrollPath(crs.ID, student.ID),
			token:    getToken(t, instructor),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "admin enrolls a student", method: http.MethodPost, path: enrollPath(crs.ID, other.ID),
			token: getToken(t, admin), wantCode: http.StatusOK,
		},
		{
			name: "enrolled student cannot manage the roster", method: http.MethodDelete, path: enrollPath(crs.ID, other.ID),
			token:    getToken(t, student),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "owner unenrolls a student", method: http.MethodDelete, path: enrollPath(crs.ID, other.ID),
			token: getToken(t, instructor), wantCode: http.StatusNoContent,
		},
		{
			name: "unenrolling a non-student is a validation error", method: http.MethodDelete, path: enrollPath(crs.ID, other.ID),
			token:    getToken(t, instructor),
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			}
		})
	}
}
