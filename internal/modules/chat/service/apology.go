package service

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
)

const (
	ApologyInvalidKey  = "⚠️ Your API key seems to be invalid. Please check GEMINI_API_KEY and make sure it's a valid Gemini API key."
	ApologyQuota       = "⚠️ API quota exceeded. Please check your Gemini API usage limits or try again later."
	ApologySafety      = "⚠️ I couldn't process that request due to safety filters. Please rephrase your question in a different way."
	ApologyUnavailable = "⚠️ The AI service is temporarily unavailable. Please try again in a few moments."
	ApologyGeneric     = "❌ Sorry, I'm having trouble connecting to the campus network right now. Please try again in a moment."
)

// httpCoder matches gax apierror.APIError.
type httpCoder interface {
	HTTPCode() int
}

func statusOf(err error) int {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code
	}
	var coder httpCoder
	if errors.As(err, &coder) {
		return coder.HTTPCode()
	}
	return 0
}

// Apology turns a completion failure into the reply shown to the student.
func Apology(err error) string {
	if err == nil {
		return ApologyGeneric
	}

	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return ApologySafety
	}

	msg := err.Error()
	status := statusOf(err)

	switch {
	case strings.Contains(msg, "API_KEY_INVALID") || status == http.StatusBadRequest:
		return ApologyInvalidKey
	case strings.Contains(strings.ToLower(msg), "quota") || status == http.StatusTooManyRequests:
		return ApologyQuota
	case strings.Contains(msg, "SAFETY") || strings.Contains(msg, "blocked"):
		return ApologySafety
	case status == http.StatusServiceUnavailable || strings.Contains(msg, "unavailable"):
		return ApologyUnavailable
	}
	return ApologyGeneric
}
