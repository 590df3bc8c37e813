package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/darasa/core/chat"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/material"
	"github.com/trezcool/darasa/core/quiz"
	"github.com/trezcool/darasa/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	usr.SetActive(isActive)
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateCourse(
	t *testing.T,
	repo course.Repository,
	title string,
	instructor user.User,
	students ...user.User,
) course.Course {
	return CreateCourseAt(t, repo, title, time.Now().UTC(), instructor, students...)
}

func CreateCourseAt(
	t *testing.T,
	repo course.Repository,
	title string,
	createdAt time.Time,
	instructor user.User,
	students ...user.User,
) course.Course {
	t.Helper()

	ctx := context.Background()
	now := createdAt.UTC()
	crs, err := repo.CreateCourse(ctx, course.Course{
		Title:        title,
		Description:  title + " description",
		InstructorID: instructor.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	for _, student := range students {
		if err = repo.AddStudent(ctx, crs.ID, student.ID); err != nil {
			t.Fatalf("CreateCourse() failed: %v", err)
		}
	}
	crs, err = repo.GetCourseByID(ctx, crs.ID)
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return crs
}

func CreateMaterial(
	t *testing.T,
	repo material.Repository,
	crs course.Course,
	title string,
	position int,
) material.Material {
	t.Helper()

	now := time.Now().UTC()
	mat, err := repo.CreateMaterial(context.Background(), material.Material{
		CourseID:      crs.ID,
		CreatedBy:     crs.InstructorID,
		Title:         title,
		Type:          material.TypeDocument,
		ContentURL:    "https://files.test.cd/" + title,
		Difficulty:    material.DifficultyBeginner,
		EstimatedTime: 30,
		Position:      position,
		IsPublished:   true,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		t.Fatalf("CreateMaterial() failed: %v", err)
	}
	return mat
}

func CreateQuiz(
	t *testing.T,
	repo quiz.Repository,
	crs course.Course,
	title string,
	questions ...quiz.Question,
) quiz.Quiz {
	t.Helper()

	if len(questions) == 0 {
		questions = []quiz.Question{
			{
				ID:            "qn1",
				Text:          "2 + 2 = ?",
				Options:       []string{"3", "4", "5"},
				CorrectOption: 1,
				Explanation:   "basic arithmetic",
			},
		}
	}
	now := time.Now().UTC()
	qz, err := repo.CreateQuiz(context.Background(), quiz.Quiz{
		CourseID:  crs.ID,
		CreatedBy: crs.InstructorID,
		Title:     title,
		Questions: questions,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateQuiz() failed: %v", err)
	}
	return qz
}

func CreateRoom(
	t *testing.T,
	repo chat.Repository,
	crs course.Course,
	name string,
) chat.Room {
	t.Helper()

	room, err := repo.CreateRoom(context.Background(), chat.Room{
		CourseID:  crs.ID,
		Name:      name,
		CreatedBy: crs.InstructorID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateRoom() failed: %v", err)
	}
	return room
}
