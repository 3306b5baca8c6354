package service

import (
	"log"
	"slices"
	"time"

	"github.com/Sujal06-B/hackathonproject-CampusSync/internal/entity"
	"github.com/Sujal06-B/hackathonproject-CampusSync/pkg/docstore"
	"github.com/Sujal06-B/hackathonproject-CampusSync/pkg/format"
)

type AnnouncementView struct {
	entity.Announcement
	Time     string `json:"time"`
	Tag      string `json:"tag"`
	TagColor string `json:"tagColor"`
	IsUnread bool   `json:"isUnread"`
}

type AssignmentView struct {
	entity.Assignment
	DueTimeText string `json:"dueTimeText"`
	CourseCode  string `json:"courseCode"`
}

// NewAnnouncementView derives the display fields for viewer. An empty viewer sees nothing as unread.
func NewAnnouncementView(a entity.Announcement, viewer string, now time.Time) AnnouncementView {
	return AnnouncementView{
		Announcement: a,
		Time:         format.TimeAgo(a.CreatedAt, now),
		Tag:          format.Tag(a.CourseName, a.Role),
		TagColor:     format.TagColor(string(a.Priority)),
		IsUnread:     viewer != "" && !slices.Contains(a.ReadBy, viewer),
	}
}

// NewAssignmentView derives the display fields. A completed assignment always reads 100%.
func NewAssignmentView(a entity.Assignment, now time.Time) AssignmentView {
	a.Progress = format.ClampProgress(a.Progress)
	if a.Status == entity.StatusCompleted {
		a.Progress = 100
	}
	return AssignmentView{
		Assignment:  a,
		DueTimeText: format.DueText(a.DueDate, now),
		CourseCode:  a.CourseName,
	}
}

func AnnouncementMapper(viewer string) Mapper[AnnouncementView] {
	return func(rec docstore.Record, now time.Time) (AnnouncementView, bool) {
		var a entity.Announcement
		if err := rec.Decode(&a); err != nil {
			log.Printf("⚠️ Skipping malformed announcement %s: %v", rec.ID, err)
			return AnnouncementView{}, false
		}
		return NewAnnouncementView(a, viewer, now), true
	}
}

func AssignmentMapper(rec docstore.Record, now time.Time) (AssignmentView, bool) {
	var a entity.Assignment
	if err := rec.Decode(&a); err != nil {
		log.Printf("⚠️ Skipping malformed assignment %s: %v", rec.ID, err)
		return AssignmentView{}, false
	}
	return NewAssignmentView(a, now), true
}
