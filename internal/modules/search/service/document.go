package service

import (
	"html"
	"strings"

	"github.com/Sujal06-B/hackathonproject-CampusSync/internal/entity"
	"github.com/microcosm-cc/bluemonday"
)

// Document is one search hit. Times are unix seconds so they sort numerically.
type Document struct {
	ID           string   `json:"id"`
	Kind         string   `json:"kind"`
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	CourseID     string   `json:"course_id"`
	CourseName   string   `json:"course_name"`
	AuthorName   string   `json:"author_name,omitempty"`
	Priority     string   `json:"priority,omitempty"`
	Status       string   `json:"status,omitempty"`
	AllowedRoles []string `json:"allowed_roles"`
	CreatedAt    int64    `json:"created_at,omitempty"`
	DueDate      int64    `json:"due_date,omitempty"`
}

func (d Document) equal(o Document) bool {
	if d.ID != o.ID || d.Kind != o.Kind || d.Title != o.Title || d.Content != o.Content ||
		d.CourseID != o.CourseID || d.CourseName != o.CourseName || d.AuthorName != o.AuthorName ||
		d.Priority != o.Priority || d.Status != o.Status || d.CreatedAt != o.CreatedAt || d.DueDate != o.DueDate {
		return false
	}
	if len(d.AllowedRoles) != len(o.AllowedRoles) {
		return false
	}
	for i := range d.AllowedRoles {
		if d.AllowedRoles[i] != o.AllowedRoles[i] {
			return false
		}
	}
	return true
}

type textCleaner struct {
	policy *bluemonday.Policy
}

func newTextCleaner() *textCleaner {
	return &textCleaner{policy: bluemonday.StrictPolicy()}
}

// clean strips markup for indexing.
func (c *textCleaner) clean(content string) string {
	// Block tags become spaces so words from adjacent paragraphs don't merge.
	content = strings.ReplaceAll(content, "</p>", " ")
	content = strings.ReplaceAll(content, "<br>", " ")
	content = strings.ReplaceAll(content, "</div>", " ")
	content = strings.ReplaceAll(content, "</li>", " ")

	cleanText := html.UnescapeString(c.policy.Sanitize(content))
	return strings.Join(strings.Fields(cleanText), " ")
}

func (c *textCleaner) announcement(a entity.Announcement) Document {
	return Document{
		ID:           a.ID,
		Kind:         "announcement",
		Title:        c.clean(a.Title),
		Content:      c.clean(a.Content),
		CourseID:     a.CourseID,
		CourseName:   a.CourseName,
		AuthorName:   a.AuthorName,
		Priority:     string(a.Priority),
		AllowedRoles: []string{"public"},
		CreatedAt:    a.CreatedAt.Unix(),
	}
}

func (c *textCleaner) assignment(a entity.Assignment) Document {
	doc := Document{
		ID:           a.ID,
		Kind:         "assignment",
		Title:        c.clean(a.Title),
		Content:      c.clean(a.Description),
		CourseID:     a.CourseID,
		CourseName:   a.CourseName,
		Status:       string(a.Status),
		AllowedRoles: []string{"student", "teacher"},
	}
	if a.DueDate != nil {
		doc.DueDate = a.DueDate.Unix()
	}
	return doc
}
