// Package inmemdb implements the core repositories in memory.
// It backs the test suites and the DB-less development mode.
package inmemdb

import (
	"sync"

	"github.com/trezcool/darasa/core/chat"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/material"
	"github.com/trezcool/darasa/core/progress"
	"github.com/trezcool/darasa/core/quiz"
	"github.com/trezcool/darasa/core/user"
)

type DB struct {
	mutex sync.RWMutex

	users       map[string]*user.User
	courses     map[string]*course.Course
	materials   map[string]*material.Material
	quizzes     map[string]*quiz.Quiz
	submissions map[string]*quiz.Submission
	records     map[string]*progress.Record
	rooms       map[string]*chat.Room
	messages    map[string]*chat.Message
}

func Open() *DB {
	db := new(DB)
	db.reset()
	return db
}

// Reset drops all stored data, used between test runs.
func (db *DB) Reset() {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.reset()
}

func (db *DB) reset() {
	db.users = make(map[string]*user.User)
	db.courses = make(map[string]*course.Course)
	db.materials = make(map[string]*material.Material)
	db.quizzes = make(map[string]*quiz.Quiz)
	db.submissions = make(map[string]*quiz.Submission)
	db.records = make(map[string]*progress.Record)
	db.rooms = make(map[string]*chat.Room)
	db.messages = make(map[string]*chat.Message)
}
