package dto

import (
	"time"

	"github.com/Sujal06-B/hackathonproject-CampusSync/internal/entity"
	"github.com/Sujal06-B/hackathonproject-CampusSync/internal/modules/session/service"
)

type SignUpInput struct {
	Email       string   `json:"email" binding:"required"`
	Password    string   `json:"password" binding:"required"`
	DisplayName string   `json:"displayName" binding:"required,max=100"`
	Role        string   `json:"role" binding:"omitempty,oneof=student teacher"`
	University  string   `json:"university" binding:"max=150"`
	Department  string   `json:"department" binding:"max=150"`
	Courses     []string `json:"courses"`
}

func (in SignUpInput) Fields() entity.ProfileFields {
	return entity.ProfileFields{
		DisplayName: in.DisplayName,
		Role:        entity.Role(in.Role),
		University:  in.University,
		Department:  in.Department,
		Courses:     in.Courses,
	}
}

type SignInInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type FederatedInput struct {
	Code string `json:"code"`
}

type SessionResponse struct {
	Token     string        `json:"token"`
	TokenType string        `json:"tokenType"`
	ExpiresAt int64         `json:"expiresAt"`
	State     service.State `json:"state"`
}

func NewSessionResponse(token string, expiresAt time.Time, state service.State) SessionResponse {
	return SessionResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expiresAt.Unix(),
		State:     state,
	}
}
