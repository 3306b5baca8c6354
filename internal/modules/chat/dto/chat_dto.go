package dto

import (
	"time"

	"github.com/Sujal06-B/hackathonproject-CampusSync/internal/modules/chat/service"
)

type ChatInput struct {
	Message string         `json:"message" binding:"required,max=4000"`
	History []service.Turn `json:"history"`
}

type StudyPlanInput struct {
	Subjects []string  `json:"subjects" binding:"required,min=1,dive,required"`
	ExamDate time.Time `json:"examDate" binding:"required"`
	Level    string    `json:"level"`
}

type SummarizeInput struct {
	Announcement string `json:"announcement" binding:"required"`
}

type ChatResponse struct {
	Reply     string `json:"reply"`
	Available bool   `json:"available"`
}
