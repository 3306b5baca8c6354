package entity

import "time"

type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityUrgent Priority = "urgent"
)

type AssignmentStatus string

const (
	StatusPending    AssignmentStatus = "pending"
	StatusUrgent     AssignmentStatus = "urgent"
	StatusCompleted  AssignmentStatus = "completed"
	StatusNotStarted AssignmentStatus = "not-started"
)

func (s AssignmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusUrgent, StatusCompleted, StatusNotStarted:
		return true
	}
	return false
}

// Collection names in the document store.
const (
	CollectionUsers         = "users"
	CollectionAnnouncements = "announcements"
	CollectionAssignments   = "assignments"
	CollectionDigests       = "digests"
)

type Announcement struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	CourseID   string    `json:"courseId"`
	CourseName string    `json:"courseName"`
	Department string    `json:"department"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	Role       string    `json:"role"`
	IsPinned   bool      `json:"isPinned"`
	Priority   Priority  `json:"priority"`
	CreatedAt  time.Time `json:"createdAt"`
	ReadBy     []string  `json:"readBy,omitempty"`
}

type Assignment struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	CourseID     string           `json:"courseId"`
	CourseName   string           `json:"courseName"`
	DueDate      *time.Time       `json:"dueDate,omitempty"`
	Status       AssignmentStatus `json:"status"`
	Progress     int              `json:"progress"`
	IsIndividual bool             `json:"isIndividual"`
	CompletedBy  string           `json:"completedBy,omitempty"`
	CompletedAt  *time.Time       `json:"completedAt,omitempty"`
}

// Digest is the daily AI summary of new announcements.
type Digest struct {
	ID            string    `json:"id"`
	Summary       string    `json:"summary"`
	Highlights    []string  `json:"highlights"`
	Announcements []string  `json:"announcements"`
	CreatedAt     time.Time `json:"createdAt"`
}

type Course struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Instructor string `json:"instructor,omitempty"`
}

var courseCatalog = map[string]Course{
	"CS301":   {ID: "CS301", Name: "Data Structures", Instructor: "Dr. Smith"},
	"CS101":   {ID: "CS101", Name: "Introduction to Programming", Instructor: "Prof. Johnson"},
	"MATH201": {ID: "MATH201", Name: "Calculus II", Instructor: "Dr. Rao"},
}

// LookupCourse resolves a course code. Unknown codes come back with the code as the name.
func LookupCourse(code string) Course {
	if c, ok := courseCatalog[code]; ok {
		return c
	}
	return Course{ID: code, Name: code}
}
