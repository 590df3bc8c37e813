package progress_test

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/darasa/core/material"
	"github.com/trezcool/darasa/core/progress"
	"github.com/trezcool/darasa/core/quiz"
	inmemdb "github.com/trezcool/darasa/storage/database/inmem"
)

func TestService_percentage(t *testing.T) {
	db := inmemdb.Open()
	matRepo := inmemdb.NewMaterialRepository(db)
	quizRepo := inmemdb.NewQuizRepository(db)
	matSvc := material.NewService(matRepo)
	quizSvc := quiz.NewService(quizRepo)
	svc := progress.NewService(inmemdb.NewProgressRepository(db), matSvc, quizSvc)

	ctx := context.Background()
	now := time.Now().UTC()

	mat1, err := matRepo.CreateMaterial(ctx, material.Material{
		CourseID: "crs", Title: "Intro", Type: material.TypeDocument, Position: 1, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateMaterial() failed: %v", err)
	}
	if _, err = matRepo.CreateMaterial(ctx, material.Material{
		CourseID: "crs", Title: "Pointers", Type: material.TypeDocument, Position: 2, CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("CreateMaterial() failed: %v", err)
	}
	qz, err := quizRepo.CreateQuiz(ctx, quiz.Quiz{
		CourseID: "crs", Title: "Basics",
		Questions: []quiz.Question{{ID: "qn1", Options: []string{"a", "b"}, CorrectOption: 0}},
		CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateQuiz() failed: %v", err)
	}

	// first access creates an empty record
	rec, err := svc.Get(ctx, "stud", "crs")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if rec.Percentage != 0 {
		t.Errorf("percentage = %v; want 0", rec.Percentage)
	}

	// 1 of 3 items
	if rec, err = svc.CompleteMaterial(ctx, "stud", "crs", mat1.ID); err != nil {
		t.Fatalf("CompleteMaterial() failed: %v", err)
	}
	if rec.Percentage != 33.33 {
		t.Errorf("percentage = %v; want 33.33", rec.Percentage)
	}
	if rec.CurrentMaterial != mat1.ID {
		t.Errorf("current_material = %s; want %s", rec.CurrentMaterial, mat1.ID)
	}

	// set semantics: completing the same material twice changes nothing
	if rec, err = svc.CompleteMaterial(ctx, "stud", "crs", mat1.ID); err != nil {
		t.Fatalf("CompleteMaterial() failed: %v", err)
	}
	if len(rec.CompletedMaterials) != 1 || rec.Percentage != 33.33 {
		t.Errorf("record = %+v; want a single completed material at 33.33%%", rec)
	}

	// 2 of 3 items
	if rec, err = svc.CompleteQuiz(ctx, "stud", "crs", qz.ID); err != nil {
		t.Fatalf("CompleteQuiz() failed: %v", err)
	}
	if rec.Percentage != 66.67 {
		t.Errorf("percentage = %v; want 66.67", rec.Percentage)
	}

	// still one record for the (student, course) pair
	recs, err := svc.QueryByCourse(ctx, "crs")
	if err != nil {
		t.Fatalf("QueryByCourse() failed: %v", err)
	}
	if len(recs) != 1 {
		t.Errorf("records = %d; want 1", len(recs))
	}
}
