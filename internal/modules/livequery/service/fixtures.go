package service

import (
	"time"

	"github.com/Sujal06-B/hackathonproject-CampusSync/internal/entity"
)

// DemoAnnouncements is the demo announcement set, newest first. The last one is already read by
// viewer when viewer is set.
func DemoAnnouncements(viewer string, now time.Time) []entity.Announcement {
	var readBy []string
	if viewer != "" {
		readBy = []string{viewer}
	}

	return []entity.Announcement{
		{
			ID:         "1",
			Title:      "Mid-Semester Exam Schedule Released",
			Content:    "The final schedule for the upcoming mid-semester exams has been published. Please check your dates carefully. Any conflicts must be reported to the academic office by Friday.",
			CourseID:   "admin",
			Department: "CS",
			AuthorID:   "admin",
			AuthorName: "Admin",
			Role:       "Admin",
			IsPinned:   true,
			Priority:   entity.PriorityUrgent,
			CreatedAt:  now.Add(-2 * time.Hour),
		},
		{
			ID:         "2",
			Title:      "Lecture Notes Updated: Module 4",
			Content:    "Professor Smith has uploaded the revised slides for Module 4: Advanced Algorithms. This includes the new examples discussed in class.",
			CourseID:   "cs101",
			CourseName: "CS101",
			Department: "CS",
			AuthorID:   "prof1",
			AuthorName: "Prof. Smith",
			Role:       "Teacher",
			Priority:   entity.PriorityNormal,
			CreatedAt:  now.Add(-4 * time.Hour),
		},
		{
			ID:         "3",
			Title:      "Guest Lecture on AI Ethics",
			Content:    "Join us for a special session with Dr. Aruna Rao from TechInstitute this Friday at 4 PM in the main auditorium.",
			CourseID:   "council",
			Department: "All",
			AuthorID:   "council",
			AuthorName: "Student Council",
			Role:       "Council",
			Priority:   entity.PriorityNormal,
			CreatedAt:  now.Add(-26 * time.Hour),
			ReadBy:     readBy,
		},
	}
}

// FixtureAnnouncements maps DemoAnnouncements for viewer.
func FixtureAnnouncements(viewer string, now time.Time) []AnnouncementView {
	raw := DemoAnnouncements(viewer, now)
	out := make([]AnnouncementView, len(raw))
	for i, a := range raw {
		out[i] = NewAnnouncementView(a, viewer, now)
	}
	return out
}

// DemoAssignments is the demo assignment set, soonest due first.
func DemoAssignments(now time.Time) []entity.Assignment {
	due := func(d time.Duration) *time.Time {
		t := now.Add(d)
		return &t
	}

	return []entity.Assignment{
		{
			ID:           "1",
			CourseID:     "cs301",
			CourseName:   "CS301",
			Title:        "Data Structures Project",
			Description:  "Implement a Red-Black tree with insertion and deletion operations.",
			DueDate:      due(5 * time.Hour),
			Status:       entity.StatusUrgent,
			Progress:     65,
			IsIndividual: true,
		},
		{
			ID:           "2",
			CourseID:     "mat202",
			CourseName:   "MAT202",
			Title:        "Calculus Quiz Prep",
			Description:  "Review Chapter 4 on Derivatives. Complete practice problems.",
			DueDate:      due(48 * time.Hour),
			Status:       entity.StatusPending,
			Progress:     10,
			IsIndividual: true,
		},
		{
			ID:           "3",
			CourseID:     "eng105",
			CourseName:   "ENG105",
			Title:        "Modern Lit Essay",
			Description:  "Draft a 2000-word essay comparing themes of isolation.",
			DueDate:      due(120 * time.Hour),
			Status:       entity.StatusNotStarted,
			Progress:     0,
			IsIndividual: true,
		},
	}
}

func FixtureAssignments(now time.Time) []AssignmentView {
	raw := DemoAssignments(now)
	out := make([]AssignmentView, len(raw))
	for i, a := range raw {
		out[i] = NewAssignmentView(a, now)
	}
	return out
}
