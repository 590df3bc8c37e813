package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	echoapi "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core/user"
	testutil "github.com/trezcool/darasa/tests"
)

func Test_adminApi_dashboard(t *testing.T) {
	db.Reset()

	admin := testutil.CreateUser(t, usrRepo, "Admin", "dshadmn1", "dshadmn@test.cd", "", []string{user.RoleAdmin}, true)
	instructor := testutil.CreateUser(t, usrRepo, "Instructor", "dshinst1", "dshinst@test.cd", "", []string{user.RoleInstructor}, true)
	alice := testutil.CreateUser(t, usrRepo, "Alice", "dshstud1", "dshalice@test.cd", "", []string{user.RoleStudent}, true)
	bob := testutil.CreateUser(t, usrRepo, "Bob", "dshstud2", "dshbob@test.cd", "", []string{user.RoleStudent}, true)

	crs := testutil.CreateCourse(t, crsRepo, "Go 101", instructor, alice, bob)
	mat := testutil.CreateMaterial(t, matRepo, crs, "Intro", 1)
	qz := testutil.CreateQuiz(t, quizRepo, crs, "Basics")

	// alice finishes the course's only two items
	ctx := context.Background()
	if _, err := progSvc.CompleteMaterial(ctx, alice.ID, crs.ID, mat.ID); err != nil {
		t.Fatalf("CompleteMaterial(): %v", err)
	}
	if _, err := progSvc.CompleteQuiz(ctx, alice.ID, crs.ID, qz.ID); err != nil {
		t.Fatalf("CompleteQuiz(): %v", err)
	}

	t.Run("admin only", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/admin/dashboard", getToken(t, instructor))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("counters", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/admin/dashboard", getToken(t, admin))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var stats echoapi.DashboardStats
		if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}

		want := echoapi.DashboardStats{
			TotalUsers:       4,
			ActiveUsers:      0, // nobody has logged in
			TotalStudents:    2,
			TotalInstructors: 1,
			TotalCourses:     1,
			TotalMaterials:   1,
			TotalQuizzes:     1,
			TotalEnrollments: 2,
			CompletedCourses: 1,
		}
		if stats != want {
			t.Errorf("stats = %+v; want %+v", stats, want)
		}
	})
}
