package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Sujal06-B/hackathonproject-CampusSync/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "campussync"

// SessionAuth issues and verifies browsing-session tokens. A token identifies a session, not a user:
// who is signed in is the session's own state.
type SessionAuth struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionAuth(secret string, ttl time.Duration) *SessionAuth {
	if secret == "" {
		secret = "12345"
	}
	return &SessionAuth{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue creates a new session id and its signed token.
func (m *SessionAuth) Issue() (sessionID, token string, expiresAt time.Time, err error) {
	sessionID = uuid.New().String()
	now := m.now()
	expiresAt = now.Add(m.ttl)

	claims := jwt.RegisteredClaims{
		Subject:   sessionID,
		Issuer:    tokenIssuer,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", "", time.Time{}, err
	}
	return sessionID, token, expiresAt, nil
}

// Parse validates a token and returns its session id.
func (m *SessionAuth) Parse(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithTimeFunc(m.now))
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token claims")
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", fmt.Errorf("invalid session id: %w", err)
	}
	return claims.Subject, nil
}

func (m *SessionAuth) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")

		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		// Fallback to query parameter "token" (useful for WebSockets)
		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "session token required"})
			c.Abort()
			return
		}

		sessionID, err := m.Parse(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session token"})
			c.Abort()
			return
		}

		c.Set(response.SessionKey, sessionID)
		c.Next()
	}
}
