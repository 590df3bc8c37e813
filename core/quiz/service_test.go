package quiz_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/quiz"
	"github.com/trezcool/darasa/core/user"
	inmemdb "github.com/trezcool/darasa/storage/database/inmem"
)

func TestService_Submit(t *testing.T) {
	db := inmemdb.Open()
	svc := quiz.NewService(inmemdb.NewQuizRepository(db))
	ctx := context.Background()

	instructor := user.User{ID: "inst"}
	qz, err := svc.Create(ctx, instructor, quiz.NewQuiz{
		CourseID: "crs",
		Title:    "Basics",
		Questions: []quiz.NewQuestion{
			{Text: "2 + 2 = ?", Options: []string{"3", "4", "5"}, CorrectOption: 1},
			{Text: "3 * 3 = ?", Options: []string{"6", "9"}, CorrectOption: 1},
		},
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	student := user.User{ID: "stud"}

	tests := []struct {
		name      string
		answers   map[string]int
		wantErr   error
		wantScore float64
	}{
		{name: "unknown question", answers: map[string]int{"lol": 0}, wantErr: quiz.ErrUnknownQuestion},
		{name: "option out of range", answers: map[string]int{qz.Questions[0].ID: 9}, wantErr: quiz.ErrOptionOutOfRange},
		{name: "negative option", answers: map[string]int{qz.Questions[0].ID: -1}, wantErr: quiz.ErrOptionOutOfRange},
		{name: "partial credit", answers: map[string]int{qz.Questions[0].ID: 1, qz.Questions[1].ID: 0}, wantScore: 1},
		{name: "resubmission keeps the original score", answers: map[string]int{qz.Questions[0].ID: 1, qz.Questions[1].ID: 1}, wantScore: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, err := svc.Submit(ctx, qz, student, quiz.NewSubmission{Answers: tt.answers})
			if tt.wantErr != nil {
				vErr, ok := errors.Cause(err).(*core.ValidationError)
				if !ok || vErr.Err != tt.wantErr {
					t.Fatalf("Submit() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Submit() failed: %v", err)
			}
			if sub.Score != tt.wantScore {
				t.Errorf("score = %v; want %v", sub.Score, tt.wantScore)
			}
			if sub.MaxScore != 2 {
				t.Errorf("max_score = %v; want 2", sub.MaxScore)
			}
		})
	}
}
