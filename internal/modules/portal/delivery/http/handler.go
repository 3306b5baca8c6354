package handler

import (
	"context"
	"log"
	"net/http"

	"github.com/Sujal06-B/hackathonproject-CampusSync/internal/entity"
	"github.com/Sujal06-B/hackathonproject-CampusSync/internal/modules/portal/dto"
	"github.com/Sujal06-B/hackathonproject-CampusSync/internal/modules/portal/service"
	sessionService "github.com/Sujal06-B/hackathonproject-CampusSync/internal/modules/session/service"
	"github.com/Sujal06-B/hackathonproject-CampusSync/pkg/apperror"
	commonDto "github.com/Sujal06-B/hackathonproject-CampusSync/pkg/dto"
	"github.com/Sujal06-B/hackathonproject-CampusSync/pkg/response"
	"github.com/Sujal06-B/hackathonproject-CampusSync/pkg/validator"
	"github.com/gin-gonic/gin"
)

var errSignInRequired = apperror.New(http.StatusUnauthorized, "sign in first", apperror.ErrUnauthorized)

// DigestAgentName is the scheduler name of the announcement digest agent.
const DigestAgentName = "DigestAgent"

// DigestRunner runs a scheduled agent outside its schedule.
type DigestRunner interface {
	RunAgentByName(ctx context.Context, name string) error
}

type PortalHandler struct {
	portal   service.PortalService
	sessions *sessionService.Registry
	digests  DigestRunner
}

// NewPortalHandler builds the handler. digests may be nil when the digest agent is not running.
func NewPortalHandler(portal service.PortalService, sessions *sessionService.Registry, digests DigestRunner) *PortalHandler {
	return &PortalHandler{portal: portal, sessions: sessions, digests: digests}
}

// signedIn loads the calling session and rejects signed-out callers.
func (h *PortalHandler) signedIn(c *gin.Context) (*sessionService.Manager, sessionService.State, bool) {
	sessionID, err := response.GetSessionID(c)
	if err != nil {
		response.ResponseError(c, err)
		return nil, sessionService.State{}, false
	}

	m, err := h.sessions.Get(c.Request.Context(), sessionID.String())
	if err != nil {
		response.ResponseError(c, err)
		return nil, sessionService.State{}, false
	}

	state := m.State()
	if state.Identity == nil {
		response.ResponseError(c, errSignInRequired)
		return nil, state, false
	}
	return m, state, true
}

// SaveProfile completes onboarding. Accepts JSON or a multipart form with an "avatar" file.
func (h *PortalHandler) SaveProfile(c *gin.Context) {
	m, state, ok := h.signedIn(c)
	if !ok {
		return
	}

	var input dto.OnboardingInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	var avatar *commonDto.AvatarFile
	if fileHeader, err := c.FormFile("avatar"); err == nil && fileHeader != nil {
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read avatar"})
			return
		}
		defer file.Close()

		avatar = &commonDto.AvatarFile{
			Reader:   file,
			FileName: fileHeader.Filename,
		}
	}

	profile, err := h.portal.SaveProfile(c.Request.Context(), state.Identity, state.Profile, input, avatar)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	m.UpdateProfile(profile)
	c.JSON(http.StatusOK, m.State())
}

func (h *PortalHandler) CreateAnnouncement(c *gin.Context) {
	_, state, ok := h.signedIn(c)
	if !ok {
		return
	}

	var input dto.CreateAnnouncementInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.portal.CreateAnnouncement(c.Request.Context(), state.Profile, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *PortalHandler) CreateAssignment(c *gin.Context) {
	_, state, ok := h.signedIn(c)
	if !ok {
		return
	}

	var input dto.CreateAssignmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.portal.CreateAssignment(c.Request.Context(), state.Profile, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *PortalHandler) MarkAssignmentComplete(c *gin.Context) {
	_, state, ok := h.signedIn(c)
	if !ok {
		return
	}

	var uri dto.DocumentURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.portal.MarkAssignmentComplete(c.Request.Context(), uri.ID, state.Identity.UID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *PortalHandler) MarkAnnouncementRead(c *gin.Context) {
	_, state, ok := h.signedIn(c)
	if !ok {
		return
	}

	var uri dto.DocumentURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.portal.MarkAnnouncementRead(c.Request.Context(), uri.ID, state.Identity.UID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *PortalHandler) Courses(c *gin.Context) {
	_, state, ok := h.signedIn(c)
	if !ok {
		return
	}

	courses, err := h.portal.Courses(c.Request.Context(), state.Identity.UID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": courses})
}

func (h *PortalHandler) LatestDigest(c *gin.Context) {
	if _, _, ok := h.signedIn(c); !ok {
		return
	}

	digest, err := h.portal.LatestDigest(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": digest})
}

// RunDigest lets a teacher trigger the digest agent now instead of waiting for its schedule.
func (h *PortalHandler) RunDigest(c *gin.Context) {
	_, state, ok := h.signedIn(c)
	if !ok {
		return
	}
	if state.Profile == nil || state.Profile.Role != entity.RoleTeacher {
		response.ResponseError(c, service.ErrTeacherOnly)
		return
	}
	if h.digests == nil {
		response.ResponseError(c, apperror.ErrNotConfigured)
		return
	}

	if err := h.digests.RunAgentByName(c.Request.Context(), DigestAgentName); err != nil {
		log.Printf("❌ On-demand digest run failed: %v", err)
		response.ResponseError(c, apperror.New(http.StatusBadGateway, "digest run failed", apperror.ErrInternal))
		return
	}

	digest, err := h.portal.LatestDigest(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": digest})
}
