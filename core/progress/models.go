package progress

import "time"

// Record tracks a single student's advancement through a single course.
// There is exactly one Record per (student, course) pair.
type Record struct {
	ID                 string    `json:"id"`
	StudentID          string    `json:"student_id"`
	CourseID           string    `json:"course_id"`
	CompletedMaterials []string  `json:"completed_materials"`
	CompletedQuizzes   []string  `json:"completed_quizzes"`
	CurrentMaterial    string    `json:"current_material,omitempty"`
	Percentage         float64   `json:"progress_percentage"`
	LastAccessed       time.Time `json:"last_accessed"` // UTC
	CreatedAt          time.Time `json:"created_at"`    // UTC
	UpdatedAt          time.Time `json:"updated_at"`    // UTC
}

func (r *Record) hasMaterial(id string) bool {
	for _, m := range r.CompletedMaterials {
		if m == id {
			return true
		}
	}
	return false
}

func (r *Record) hasQuiz(id string) bool {
	for _, q := range r.CompletedQuizzes {
		if q == id {
			return true
		}
	}
	return false
}

// CourseAnalytics aggregates Records and quiz submissions of one course.
type CourseAnalytics struct {
	TotalStudents     int        `json:"total_students"`
	CompletedStudents int        `json:"completed_students"`
	AverageProgress   float64    `json:"average_progress"`
	QuizStatistics    QuizStats  `json:"quiz_statistics"`
}

type QuizStats struct {
	AverageScore   float64 `json:"average_score"`
	HighestScore   float64 `json:"highest_score"`
	LowestScore    float64 `json:"lowest_score"`
	CompletionRate float64 `json:"completion_rate"`
}
