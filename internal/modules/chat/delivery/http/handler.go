package handler

import (
	"context"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/Sujal06-B/hackathonproject-CampusSync/internal/modules/chat/dto"
	"github.com/Sujal06-B/hackathonproject-CampusSync/internal/modules/chat/repository"
	"github.com/Sujal06-B/hackathonproject-CampusSync/internal/modules/chat/service"
	"github.com/Sujal06-B/hackathonproject-CampusSync/pkg/apperror"
	"github.com/Sujal06-B/hackathonproject-CampusSync/pkg/response"
	"github.com/Sujal06-B/hackathonproject-CampusSync/pkg/validator"
	"github.com/gin-gonic/gin"
)

const (
	actionChat = "chat"
	// Generation can take a while; the reply is still wanted if the tab stays open.
	completionTimeout = 60 * time.Second
)

type ChatHandler struct {
	chat    service.ChatService
	limiter repository.RateLimiter
	window  time.Duration
}

func NewChatHandler(chat service.ChatService, limiter repository.RateLimiter, window time.Duration) *ChatHandler {
	return &ChatHandler{chat: chat, limiter: limiter, window: window}
}

// allow enforces one completion per session per window. All chat routes share the budget.
func (h *ChatHandler) allow(c *gin.Context) bool {
	sessionID, err := response.GetSessionID(c)
	if err != nil {
		response.ResponseError(c, err)
		return false
	}

	ctx := c.Request.Context()
	ok, err := h.limiter.Allow(ctx, sessionID.String(), actionChat, h.window)
	if err != nil {
		// Redis trouble should not take the assistant down.
		log.Printf("⚠️ Chat rate limit check failed: %v", err)
		return true
	}
	if ok {
		return true
	}

	retryAfter, err := h.limiter.RetryAfter(ctx, sessionID.String(), actionChat)
	if err != nil {
		retryAfter = h.window
	}
	c.JSON(apperror.MapErrorToStatus(apperror.ErrRateLimitExceeded), gin.H{
		"error":       "You're sending messages too quickly. Please wait a moment.",
		"retry_after": int(math.Ceil(retryAfter.Seconds())),
	})
	return false
}

func (h *ChatHandler) completionContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), completionTimeout)
}

func (h *ChatHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"available": h.chat.Available()})
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	var input dto.ChatInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}
	if !h.allow(c) {
		return
	}

	ctx, cancel := h.completionContext(c)
	defer cancel()

	reply := h.chat.SendMessage(ctx, input.Message, input.History)
	c.JSON(http.StatusOK, dto.ChatResponse{Reply: reply, Available: h.chat.Available()})
}

func (h *ChatHandler) StudyPlan(c *gin.Context) {
	var input dto.StudyPlanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}
	if !h.allow(c) {
		return
	}

	ctx, cancel := h.completionContext(c)
	defer cancel()

	reply := h.chat.StudyPlan(ctx, input.Subjects, input.ExamDate, input.Level)
	c.JSON(http.StatusOK, dto.ChatResponse{Reply: reply, Available: h.chat.Available()})
}

func (h *ChatHandler) Summarize(c *gin.Context) {
	var input dto.SummarizeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}
	if !h.allow(c) {
		return
	}

	ctx, cancel := h.completionContext(c)
	defer cancel()

	reply := h.chat.SummarizeAnnouncement(ctx, input.Announcement)
	c.JSON(http.StatusOK, dto.ChatResponse{Reply: reply, Available: h.chat.Available()})
}
