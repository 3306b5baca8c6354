package response

import (
	"log"
	"net/http"

	"github.com/Sujal06-B/hackathonproject-CampusSync/pkg/apperror"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionKey is the gin context key the session middleware stores the session id under.
const SessionKey = "session_id"

// GetSessionID retrieves the authenticated session ID from the context
func GetSessionID(c *gin.Context) (uuid.UUID, error) {
	sessionIDStr, exists := c.Get(SessionKey)
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	raw, ok := sessionIDStr.(string)
	if !ok {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	sessionID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return sessionID, nil
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	// Log internal errors
	if code == http.StatusInternalServerError {
		log.Printf("[Internal Error]: %v", err)
	}

	c.JSON(code, gin.H{"error": err.Error()})
}
