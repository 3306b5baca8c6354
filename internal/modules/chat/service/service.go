package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
)

// Turn is one prior message of a conversation, in the shape the web client keeps its history.
type Turn struct {
	Role  string     `json:"role"`
	Parts []TurnPart `json:"parts"`
}

type TurnPart struct {
	Text string `json:"text"`
}

// Text joins the turn's parts.
func (t Turn) Text() string {
	texts := make([]string, 0, len(t.Parts))
	for _, p := range t.Parts {
		texts = append(texts, p.Text)
	}
	return strings.Join(texts, "\n")
}

// Completer is the remote chat completion backend. Complete continues a conversation as the
// assistant; GenerateText answers a single self-contained prompt.
type Completer interface {
	Complete(ctx context.Context, history []Turn, message string) (string, error)
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// ChatService never returns an error: failures come back as an in-character reply.
type ChatService interface {
	Available() bool
	SendMessage(ctx context.Context, message string, history []Turn) string
	StudyPlan(ctx context.Context, subjects []string, examDate time.Time, level string) string
	SummarizeAnnouncement(ctx context.Context, announcement string) string
}

const emptyReply = "I couldn't generate a response. Please try again."

type chatService struct {
	completer Completer
	now       func() time.Time
}

// NewChatService talks to the given completer.
func NewChatService(completer Completer) ChatService {
	return &chatService{completer: completer, now: time.Now}
}

func (s *chatService) Available() bool { return true }

func (s *chatService) SendMessage(ctx context.Context, message string, history []Turn) string {
	return finish(s.completer.Complete(ctx, history, message))
}

func (s *chatService) StudyPlan(ctx context.Context, subjects []string, examDate time.Time, level string) string {
	return finish(s.completer.GenerateText(ctx, studyPlanPrompt(subjects, examDate, level, s.now())))
}

func (s *chatService) SummarizeAnnouncement(ctx context.Context, announcement string) string {
	return finish(s.completer.GenerateText(ctx, summaryPrompt(announcement)))
}

func finish(reply string, err error) string {
	if err != nil {
		log.Printf("❌ Chat completion failed: %v", err)
		return Apology(err)
	}
	if strings.TrimSpace(reply) == "" {
		return emptyReply
	}
	return reply
}

type fixtureService struct {
	delay time.Duration
	now   func() time.Time
}

// NewFixtureService answers from canned keyword replies after delay.
func NewFixtureService(delay time.Duration) ChatService {
	return &fixtureService{delay: delay, now: time.Now}
}

func (s *fixtureService) Available() bool { return false }

func (s *fixtureService) SendMessage(ctx context.Context, message string, _ []Turn) string {
	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
		}
	}
	return MockReply(message)
}

func (s *fixtureService) StudyPlan(ctx context.Context, subjects []string, examDate time.Time, level string) string {
	return s.SendMessage(ctx, studyPlanPrompt(subjects, examDate, level, s.now()), nil)
}

func (s *fixtureService) SummarizeAnnouncement(ctx context.Context, announcement string) string {
	return s.SendMessage(ctx, summaryPrompt(announcement), nil)
}

// DaysUntil rounds up, so an exam later today counts as one day.
func DaysUntil(examDate, now time.Time) int {
	d := examDate.Sub(now)
	if d <= 0 {
		return 0
	}
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	return days
}

func studyPlanPrompt(subjects []string, examDate time.Time, level string, now time.Time) string {
	if level == "" {
		level = "undergraduate"
	}
	return fmt.Sprintf(`Create a detailed %d-day study plan for a %s student preparing for exams in these subjects: %s.

The exam is on %s.

Please include:
- Daily study hours for each subject
- Specific topics to cover each day
- Break times and rest days
- Revision schedule for the last 3 days
- Practice test recommendations

Make it realistic and balanced for an Indian university student.`,
		DaysUntil(examDate, now), level, strings.Join(subjects, ", "), examDate.Format("Monday, 2 January 2006"))
}

func summaryPrompt(announcement string) string {
	return "Summarize this university announcement in 2-3 bullet points, highlighting the most important information:\n\n" + announcement
}
