package dto

import (
	"time"

	"github.com/Sujal06-B/hackathonproject-CampusSync/internal/entity"
)

// OnboardingInput is bound from a multipart form so an avatar can ride along.
type OnboardingInput struct {
	DisplayName string   `form:"displayName" json:"displayName" binding:"omitempty,max=100"`
	Role        string   `form:"role" json:"role" binding:"required,oneof=student teacher"`
	University  string   `form:"university" json:"university" binding:"required,max=150"`
	Department  string   `form:"department" json:"department" binding:"required,max=150"`
	Courses     []string `form:"courses" json:"courses" binding:"omitempty,dive,required,max=20"`
}

type CreateAnnouncementInput struct {
	Title      string          `json:"title" binding:"required,max=200"`
	Content    string          `json:"content" binding:"required"`
	CourseID   string          `json:"courseId" binding:"omitempty,max=20"`
	CourseName string          `json:"courseName" binding:"omitempty,max=150"`
	Department string          `json:"department" binding:"omitempty,max=150"`
	IsPinned   bool            `json:"isPinned"`
	Priority   entity.Priority `json:"priority" binding:"omitempty,oneof=normal urgent"`
}

type CreateAssignmentInput struct {
	Title        string     `json:"title" binding:"required,max=200"`
	Description  string     `json:"description"`
	CourseID     string     `json:"courseId" binding:"required,max=20"`
	CourseName   string     `json:"courseName" binding:"omitempty,max=150"`
	DueDate      *time.Time `json:"dueDate" binding:"required"`
	IsIndividual bool       `json:"isIndividual"`
}

type DocumentURI struct {
	ID string `uri:"id" binding:"required"`
}
