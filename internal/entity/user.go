package entity

import (
	"net/url"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleTeacher
}

// Identity is the auth provider's record of a signed-in principal.
type Identity struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL,omitempty"`
}

// Profile is the application-level user record stored in the users collection.
type Profile struct {
	UID         string    `json:"uid"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	PhotoURL    string    `json:"photoURL"`
	Role        Role      `json:"role"`
	University  string    `json:"university"`
	Department  string    `json:"department"`
	Courses     []string  `json:"courses"`
	CreatedAt   time.Time `json:"createdAt"`
	LastLogin   time.Time `json:"lastLogin"`
}

// ProfileFields is the caller-supplied part of a profile at sign-up or onboarding.
type ProfileFields struct {
	DisplayName string   `json:"displayName"`
	Role        Role     `json:"role,omitempty"`
	University  string   `json:"university,omitempty"`
	Department  string   `json:"department,omitempty"`
	Courses     []string `json:"courses,omitempty"`
}

// FallbackProfile synthesizes the profile used when the stored one cannot be loaded.
func FallbackProfile(id *Identity, now time.Time) *Profile {
	name := id.DisplayName
	if name == "" {
		name = "User"
	}
	return &Profile{
		UID:         id.UID,
		Email:       id.Email,
		DisplayName: name,
		PhotoURL:    id.PhotoURL,
		Role:        RoleStudent,
		Courses:     []string{},
		CreatedAt:   now,
		LastLogin:   now,
	}
}

// AvatarURL returns the generated initials avatar used when no photo was uploaded.
func AvatarURL(displayName string) string {
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(displayName) + "&background=10b981&color=fff"
}

// Credential is the auth provider's own account row. It never leaves the auth module.
type Credential struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string    `gorm:"size:255;not null"`
	DisplayName  string    `gorm:"size:100"`
	PhotoURL     *string   `gorm:"type:text"`
	GoogleID     *string   `gorm:"size:100;uniqueIndex"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (c *Credential) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (c *Credential) Identity() *Identity {
	id := &Identity{
		UID:         c.ID.String(),
		Email:       c.Email,
		DisplayName: c.DisplayName,
	}
	if c.PhotoURL != nil {
		id.PhotoURL = *c.PhotoURL
	}
	return id
}
