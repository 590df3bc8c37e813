package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/trezcool/darasa/core/material"
	"github.com/trezcool/darasa/core/user"
	testutil "github.com/trezcool/darasa/tests"
)

func Test_materialApi_createQuery(t *testing.T) {
	db.Reset()

	student := testutil.CreateUser(t, usrRepo, "Student", "matstud1", "matstud@test.cd", "", []string{user.RoleStudent}, true)
	instructor := testutil.CreateUser(t, usrRepo, "Instructor", "matinst1", "matinst@test.cd", "", []string{user.RoleInstructor}, true)
	outsider := testutil.CreateUser(t, usrRepo, "Outsider", "matouts1", "matouts@test.cd", "", []string{user.RoleStudent}, true)

	crs := testutil.CreateCourse(t, crsRepo, "Go 101", instructor, student)
	listPath := "/api/courses/" + crs.ID + "/materials"

	body := marchallObj(t, map[string]interface{}{
		"title":            "Pointers",
		"description":      "All about pointers",
		"type":             material.TypeDocument,
		"content_url":      "https://files.test.cd/pointers.pdf",
		"difficulty_level": material.DifficultyBeginner,
		"estimated_time":   45,
	})

	createTests := []httpTest{
		{
			name: "enrolled student cannot add materials", token: getToken(t, student), body: body,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "course is masked for outsiders", token: getToken(t, outsider), body: body,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{name: "bad type", token: getToken(t, instructor), body: marchallObj(t, map[string]interface{}{
			"title": "x", "type": "hologram", "content_url": "https://files.test.cd/x", "difficulty_level": "beginner",
		}), wantCode: http.StatusBadRequest},
		{name: "owner adds a material", token: getToken(t, instructor), body: body, wantCode: http.StatusCreated},
	}
	for _, tt := range createTests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, listPath, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			}
			if tt.wantCode == http.StatusCreated {
				var mat material.Material
				if err := json.Unmarshal(rec.Body.Bytes(), &mat); err != nil {
					t.Fatalf("unmarshalling response: %v", err)
				}
				if mat.Position != 1 {
					t.Errorf("position = %d; want 1", mat.Position)
				}
				if !mat.IsPublished {
					t.Error("new material should be published")
				}
			}
		})
	}

	t.Run("enrolled student lists materials", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, listPath, getToken(t, student))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var mats []material.Material
		if err := json.Unmarshal(rec.Body.Bytes(), &mats); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if len(mats) != 1 || mats[0].Title != "Pointers" {
			t.Errorf("materials = %+v; want the one created above", mats)
		}
	})
}

func Test_materialApi_reorder(t *testing.T) {
	db.Reset()

	instructor := testutil.CreateUser(t, usrRepo, "Instructor", "ordinst1", "ordinst@test.cd", "", []string{user.RoleInstructor}, true)
	crs := testutil.CreateCourse(t, crsRepo, "Go 101", instructor)

	mat1 := testutil.CreateMaterial(t, matRepo, crs, "Intro", 1)
	mat2 := testutil.CreateMaterial(t, matRepo, crs, "Pointers", 2)
	mat3 := testutil.CreateMaterial(t, matRepo, crs, "Generics", 3)

	path := "/api/courses/" + crs.ID + "/materials/order"
	token := getToken(t, instructor)

	tests := []httpTest{
		{
			name:     "missing ids",
			body:     marchallObj(t, map[string]interface{}{"material_ids": []string{mat3.ID}}),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "unknown id",
			body:     marchallObj(t, map[string]interface{}{"material_ids": []string{mat3.ID, mat2.ID, "deadbeef"}}),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "duplicate id",
			body:     marchallObj(t, map[string]interface{}{"material_ids": []string{mat3.ID, mat2.ID, mat2.ID}}),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "ok",
			body:     marchallObj(t, map[string]interface{}{"material_ids": []string{mat3.ID, mat1.ID, mat2.ID}}),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPut, path, token, tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode == http.StatusOK {
				var mats []material.Material
				if err := json.Unmarshal(rec.Body.Bytes(), &mats); err != nil {
					t.Fatalf("unmarshalling response: %v", err)
				}
				wantOrder := []string{mat3.ID, mat1.ID, mat2.ID}
				for i, mat := range mats {
					if mat.ID != wantOrder[i] {
						t.Errorf("position %d = %s; want %s", i+1, mat.ID, wantOrder[i])
					}
					if mat.Position != i+1 {
						t.Errorf("material %s position = %d; want %d", mat.ID, mat.Position, i+1)
					}
				}
			}
		})
	}
}

func Test_materialApi_detail(t *testing.T) {
	db.Reset()

	student := testutil.CreateUser(t, usrRepo, "Student", "mdtstud1", "mdtstud@test.cd", "", []string{user.RoleStudent}, true)
	instructor := testutil.CreateUser(t, usrRepo, "Instructor", "mdtinst1", "mdtinst@test.cd", "", []string{user.RoleInstructor}, true)
	outsider := testutil.CreateUser(t, usrRepo, "Outsider", "mdtouts1", "mdtouts@test.cd", "", []string{user.RoleStudent}, true)

	crs := testutil.CreateCourse(t, crsRepo, "Go 101", instructor, student)
	mat := testutil.CreateMaterial(t, matRepo, crs, "Intro", 1)
	path := "/api/materials/" + mat.ID

	update := marchallObj(t, map[string]string{"title": "Intro v2"})

	tests := []httpTest{
		{
			name: "enrolled student reads", method: http.MethodGet, path: path, token: getToken(t, student),
			wantCode: http.StatusOK, wantData: marchallObj(t, mat),
		},
		{
			name: "masked for outsiders", method: http.MethodGet, path: path, token: getToken(t, outsider),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "student cannot update", method: http.MethodPut, path: path, token: getToken(t, student), body: update,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "owner updates", method: http.MethodPut, path: path, token: getToken(t, instructor), body: update, wantCode: http.StatusOK},
		{
			name: "student cannot delete", method: http.MethodDelete, path: path, token: getToken(t, student),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "owner deletes", method: http.MethodDelete, path: path, token: getToken(t, instructor), wantCode: http.StatusNoContent},
		{
			name: "gone after delete", method: http.MethodGet, path: path, token: getToken(t, instructor),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
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
		})
	}
}
