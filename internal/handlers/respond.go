package handlers

import (
	"log"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"

	"github.com/Arman-Bisht/med-connect/internal/apperr"
)

// ok writes the standard success envelope.
func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

// fail maps a classified error onto its HTTP status. Unclassified errors are
// reported and surfaced as a generic message.
func fail(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError || status == http.StatusBadGateway {
		log.Printf("❌ %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		sentry.CaptureException(err)
	}
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "an unexpected error occurred"
	}
	c.JSON(status, gin.H{"error": msg})
}
