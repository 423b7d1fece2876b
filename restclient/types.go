package restclient

import (
	"encoding/json"
	"time"
)

// Envelope is the response convention every backend endpoint follows: a
// success flag, an optional human-readable message and a payload field.
// Collection endpoints name the payload field after the collection; these
// are decoded by Resource instead.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// AuthResponse is the payload of the login and register endpoints.
type AuthResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Token   string `json:"token,omitempty"`
	User    *User  `json:"user,omitempty"`
}

// User is the server-defined account record. Treated as pass-through
// payload; only presence of the known fields is relied upon.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Theme     string    `json:"theme,omitempty"`
	Currency  string    `json:"currency,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

type Course struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	InstructorID string    `json:"instructor_id,omitempty"`
	Price        float64   `json:"price,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

type Module struct {
	ID       string `json:"id"`
	CourseID string `json:"course_id"`
	Title    string `json:"title"`
	Position int    `json:"position,omitempty"`
}

type Lesson struct {
	ID       string `json:"id"`
	ModuleID string `json:"module_id"`
	Title    string `json:"title"`
	Content  string `json:"content,omitempty"`
	VideoURL string `json:"video_url,omitempty"`
	Position int    `json:"position,omitempty"`
}

type Quiz struct {
	ID        string         `json:"id"`
	LessonID  string         `json:"lesson_id"`
	Title     string         `json:"title"`
	Questions []QuizQuestion `json:"questions,omitempty"`
}

type QuizQuestion struct {
	Prompt  string   `json:"prompt"`
	Choices []string `json:"choices,omitempty"`
	Answer  int      `json:"answer,omitempty"`
}

type Enrollment struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	CourseID   string    `json:"course_id"`
	Progress   float64   `json:"progress,omitempty"`
	EnrolledAt time.Time `json:"enrolled_at,omitempty"`
}

type Assignment struct {
	ID          string    `json:"id"`
	CourseID    string    `json:"course_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	DueDate     time.Time `json:"due_date,omitempty"`
	FileURL     string    `json:"file_url,omitempty"`
}
