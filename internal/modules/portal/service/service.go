package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/Sujal06-B/hackathonproject-CampusSync/internal/entity"
	portalDto "github.com/Sujal06-B/hackathonproject-CampusSync/internal/modules/portal/dto"
	"github.com/Sujal06-B/hackathonproject-CampusSync/pkg/apperror"
	"github.com/Sujal06-B/hackathonproject-CampusSync/pkg/docstore"
	commonDto "github.com/Sujal06-B/hackathonproject-CampusSync/pkg/dto"
	"github.com/Sujal06-B/hackathonproject-CampusSync/pkg/storage"
	"github.com/microcosm-cc/bluemonday"
)

const (
	mockAnnouncementID = "mock-announcement-id"
	mockAssignmentID   = "mock-assignment-id"
)

// DefaultCourses are enrolled when onboarding does not pick any.
var DefaultCourses = []string{"CS301", "CS101"}

var ErrTeacherOnly = apperror.New(http.StatusForbidden, "only teachers can do this", apperror.ErrForbidden)

// PortalService holds the document writes made from the dashboard. With no store configured every
// write is logged and reported as a mock success.
type PortalService interface {
	SaveProfile(ctx context.Context, viewer *entity.Identity, current *entity.Profile, input portalDto.OnboardingInput, avatar *commonDto.AvatarFile) (*entity.Profile, error)
	CreateAnnouncement(ctx context.Context, author *entity.Profile, input portalDto.CreateAnnouncementInput) (*commonDto.WriteResult, error)
	CreateAssignment(ctx context.Context, author *entity.Profile, input portalDto.CreateAssignmentInput) (*commonDto.WriteResult, error)
	MarkAssignmentComplete(ctx context.Context, assignmentID, uid string) (*commonDto.WriteResult, error)
	MarkAnnouncementRead(ctx context.Context, announcementID, uid string) (*commonDto.WriteResult, error)
	Courses(ctx context.Context, uid string) ([]entity.Course, error)
	// LatestDigest returns the newest announcement digest, or nil when none was written yet.
	LatestDigest(ctx context.Context) (*entity.Digest, error)
}

type portalService struct {
	store     docstore.Store
	images    storage.ImageStorage
	sanitizer *bluemonday.Policy
	plainText *bluemonday.Policy
	now       func() time.Time
}

func NewPortalService(store docstore.Store, images storage.ImageStorage) PortalService {
	return &portalService{
		store:     store,
		images:    images,
		sanitizer: bluemonday.UGCPolicy(),
		plainText: bluemonday.StrictPolicy(),
		now:       time.Now,
	}
}

func (s *portalService) clean(v string) string {
	return strings.TrimSpace(s.plainText.Sanitize(v))
}

func (s *portalService) SaveProfile(ctx context.Context, viewer *entity.Identity, current *entity.Profile, input portalDto.OnboardingInput, avatar *commonDto.AvatarFile) (*entity.Profile, error) {
	if viewer == nil {
		return nil, apperror.ErrUnauthorized
	}

	source := input.Courses
	if len(source) == 0 {
		source = DefaultCourses
	}
	courses := make([]string, 0, len(source))
	for _, c := range source {
		if code := strings.ToUpper(s.clean(c)); code != "" {
			courses = append(courses, code)
		}
	}

	fields := map[string]any{
		"uid":        viewer.UID,
		"email":      viewer.Email,
		"role":       input.Role,
		"university": s.clean(input.University),
		"department": s.clean(input.Department),
		"courses":    courses,
		"createdAt":  docstore.ServerTimestamp,
		"lastLogin":  docstore.ServerTimestamp,
	}
	if name := s.clean(input.DisplayName); name != "" {
		fields["displayName"] = name
	}

	if avatar != nil && avatar.Reader != nil {
		if s.images == nil {
			log.Println("⚠️ Image storage not configured, skipping avatar upload")
		} else {
			url, err := s.images.UploadImage(ctx, avatar.Reader, "avatars", avatar.FileName)
			if err != nil {
				return nil, fmt.Errorf("failed to upload avatar: %w", err)
			}
			fields["photoURL"] = url
		}
	}

	if s.store == nil {
		log.Printf("ℹ️ Mock store: saving profile for %s", viewer.UID)
		return s.mockProfile(viewer, current, fields), nil
	}

	if err := s.store.SetDocument(ctx, entity.CollectionUsers, viewer.UID, fields, docstore.SetOptions{Merge: true}); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	log.Printf("✅ Profile saved (%s)", viewer.UID)

	if newURL, ok := fields["photoURL"].(string); ok && current != nil {
		s.dropReplacedAvatar(ctx, current.PhotoURL, newURL)
	}

	rec, err := s.store.GetDocument(ctx, entity.CollectionUsers, viewer.UID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload profile: %w", err)
	}
	var profile entity.Profile
	if err := rec.Decode(&profile); err != nil {
		return nil, err
	}
	profile.UID = viewer.UID
	return &profile, nil
}

// dropReplacedAvatar removes the previous upload. Generated initials avatars are not ours to delete.
func (s *portalService) dropReplacedAvatar(ctx context.Context, oldURL, newURL string) {
	if oldURL == "" || oldURL == newURL || storage.ExtractPublicID(oldURL) == "" {
		return
	}
	if err := s.images.DeleteImage(ctx, oldURL); err != nil {
		log.Printf("⚠️ Failed to delete old avatar %s: %v", oldURL, err)
	}
}

// mockProfile applies the onboarding fields to the session's current profile.
func (s *portalService) mockProfile(viewer *entity.Identity, current *entity.Profile, fields map[string]any) *entity.Profile {
	var p entity.Profile
	if current != nil {
		p = *current
	} else {
		p = *entity.FallbackProfile(viewer, s.now())
	}
	p.UID = viewer.UID
	p.Email = viewer.Email
	p.Role = entity.Role(fields["role"].(string))
	p.University = fields["university"].(string)
	p.Department = fields["department"].(string)
	p.Courses = fields["courses"].([]string)
	if name, ok := fields["displayName"].(string); ok {
		p.DisplayName = name
	}
	if url, ok := fields["photoURL"].(string); ok {
		p.PhotoURL = url
	}
	p.LastLogin = s.now()
	return &p
}

func requireTeacher(author *entity.Profile) error {
	if author == nil {
		return apperror.ErrUnauthorized
	}
	if author.Role != entity.RoleTeacher {
		return ErrTeacherOnly
	}
	return nil
}

func (s *portalService) CreateAnnouncement(ctx context.Context, author *entity.Profile, input portalDto.CreateAnnouncementInput) (*commonDto.WriteResult, error) {
	if err := requireTeacher(author); err != nil {
		return nil, err
	}

	priority := input.Priority
	if priority == "" {
		priority = entity.PriorityNormal
	}

	content := strings.TrimSpace(s.sanitizer.Sanitize(input.Content))
	if content == "" {
		return nil, apperror.New(http.StatusBadRequest, "content is empty after sanitizing", apperror.ErrInvalidInput)
	}

	fields := map[string]any{
		"title":      s.clean(input.Title),
		"content":    content,
		"courseId":   s.clean(input.CourseID),
		"courseName": s.clean(input.CourseName),
		"department": s.clean(input.Department),
		"authorId":   author.UID,
		"authorName": author.DisplayName,
		"role":       string(author.Role),
		"isPinned":   input.IsPinned,
		"priority":   string(priority),
		"readBy":     []string{},
		"createdAt":  docstore.ServerTimestamp,
	}

	if s.store == nil {
		log.Printf("ℹ️ Mock store: creating announcement %q", fields["title"])
		return &commonDto.WriteResult{ID: mockAnnouncementID, Success: true, Mock: true}, nil
	}

	id, err := s.store.AddDocument(ctx, entity.CollectionAnnouncements, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to create announcement: %w", err)
	}
	log.Printf("✅ Announcement created with ID: %s", id)
	return &commonDto.WriteResult{ID: id, Success: true}, nil
}

func (s *portalService) CreateAssignment(ctx context.Context, author *entity.Profile, input portalDto.CreateAssignmentInput) (*commonDto.WriteResult, error) {
	if err := requireTeacher(author); err != nil {
		return nil, err
	}

	courseID := strings.ToUpper(s.clean(input.CourseID))
	courseName := s.clean(input.CourseName)
	if courseName == "" {
		courseName = entity.LookupCourse(courseID).Name
	}

	fields := map[string]any{
		"title":        s.clean(input.Title),
		"description":  s.clean(input.Description),
		"courseId":     courseID,
		"courseName":   courseName,
		"dueDate":      input.DueDate.UTC(),
		"status":       string(entity.StatusPending),
		"progress":     0,
		"isIndividual": input.IsIndividual,
		"createdBy":    author.UID,
		"createdAt":    docstore.ServerTimestamp,
		"updatedAt":    docstore.ServerTimestamp,
	}

	if s.store == nil {
		log.Printf("ℹ️ Mock store: creating assignment %q", fields["title"])
		return &commonDto.WriteResult{ID: mockAssignmentID, Success: true, Mock: true}, nil
	}

	id, err := s.store.AddDocument(ctx, entity.CollectionAssignments, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}
	log.Printf("✅ Assignment created with ID: %s", id)
	return &commonDto.WriteResult{ID: id, Success: true}, nil
}

// MarkAssignmentComplete also sets progress to 100 so the stored record never reads completed at
// partial progress.
func (s *portalService) MarkAssignmentComplete(ctx context.Context, assignmentID, uid string) (*commonDto.WriteResult, error) {
	if uid == "" {
		return nil, apperror.ErrUnauthorized
	}
	if s.store == nil {
		log.Printf("ℹ️ Mock store: marking assignment %s complete for %s", assignmentID, uid)
		return &commonDto.WriteResult{ID: assignmentID, Success: true, Mock: true}, nil
	}

	err := s.store.UpdateDocument(ctx, entity.CollectionAssignments, assignmentID, map[string]any{
		"status":      string(entity.StatusCompleted),
		"progress":    100,
		"completedBy": uid,
		"completedAt": docstore.ServerTimestamp,
		"updatedAt":   docstore.ServerTimestamp,
	})
	if err != nil {
		return nil, notFound("assignment", err)
	}
	log.Printf("✅ Assignment %s marked as complete", assignmentID)
	return &commonDto.WriteResult{ID: assignmentID, Success: true}, nil
}

func (s *portalService) MarkAnnouncementRead(ctx context.Context, announcementID, uid string) (*commonDto.WriteResult, error) {
	if uid == "" {
		return nil, apperror.ErrUnauthorized
	}
	if s.store == nil {
		log.Printf("ℹ️ Mock store: marking announcement %s read for %s", announcementID, uid)
		return &commonDto.WriteResult{ID: announcementID, Success: true, Mock: true}, nil
	}

	err := s.store.UpdateDocument(ctx, entity.CollectionAnnouncements, announcementID, map[string]any{
		"readBy": docstore.ArrayUnion(uid),
	})
	if err != nil {
		return nil, notFound("announcement", err)
	}
	return &commonDto.WriteResult{ID: announcementID, Success: true}, nil
}

func (s *portalService) Courses(ctx context.Context, uid string) ([]entity.Course, error) {
	if s.store == nil {
		out := make([]entity.Course, 0, len(DefaultCourses))
		for _, code := range DefaultCourses {
			out = append(out, entity.LookupCourse(code))
		}
		return out, nil
	}

	rec, err := s.store.GetDocument(ctx, entity.CollectionUsers, uid)
	if errors.Is(err, docstore.ErrNotFound) {
		return []entity.Course{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get courses: %w", err)
	}

	var profile entity.Profile
	if err := rec.Decode(&profile); err != nil {
		return nil, err
	}
	out := make([]entity.Course, 0, len(profile.Courses))
	for _, code := range profile.Courses {
		out = append(out, entity.LookupCourse(code))
	}
	return out, nil
}

func (s *portalService) LatestDigest(ctx context.Context) (*entity.Digest, error) {
	if s.store == nil {
		return nil, nil
	}

	records, err := s.store.ListDocuments(ctx, entity.CollectionDigests, docstore.OrderBy{Field: "createdAt", Direction: docstore.Desc})
	if err != nil {
		return nil, fmt.Errorf("failed to list digests: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var d entity.Digest
	if err := records[0].Decode(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

func notFound(kind string, err error) error {
	if errors.Is(err, docstore.ErrNotFound) {
		return apperror.New(http.StatusNotFound, kind+" not found", apperror.ErrNotFound)
	}
	return fmt.Errorf("failed to update %s: %w", kind, err)
}
