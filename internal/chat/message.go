// Package chat builds entries for a case's append-only message log. Messages
// are immutable once appended; persisted array order is the display order.
package chat

import (
	"encoding/base64"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Arman-Bisht/med-connect/internal/apperr"
	"github.com/Arman-Bisht/med-connect/internal/models"
)

// NewMessage assembles a chat message from sender input. Content may be empty
// only when an attachment is present. The attachment, when present, gets its
// kind and byte size derived from the inline data URL if the sender omitted
// them.
func NewMessage(senderID, content string, att *models.Attachment, now time.Time) (models.ChatMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" && att == nil {
		return models.ChatMessage{}, apperr.Validation("a message needs text or an attachment")
	}
	if att != nil {
		if att.URL == "" {
			return models.ChatMessage{}, apperr.Validation("attachment %q has no content", att.Name)
		}
		normalizeAttachment(att)
	}
	return models.ChatMessage{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		Content:    content,
		CreatedAt:  now.UTC(),
		Attachment: att,
	}, nil
}

func normalizeAttachment(att *models.Attachment) {
	if att.Kind == "" {
		if strings.HasPrefix(att.URL, "data:image/") {
			att.Kind = models.AttachmentImage
		} else {
			att.Kind = models.AttachmentFile
		}
	}
	if att.Size == 0 {
		att.Size = inlineSize(att.URL)
	}
}

// inlineSize is the decoded byte size of a base64 data URL, 0 for anything else.
func inlineSize(url string) int64 {
	if !strings.HasPrefix(url, "data:") {
		return 0
	}
	i := strings.Index(url, ",")
	if i < 0 || !strings.Contains(url[:i], ";base64") {
		return 0
	}
	payload := url[i+1:]
	n := len(payload)
	if n == 0 {
		return 0
	}
	if decoded, err := base64.StdEncoding.DecodeString(payload); err == nil {
		return int64(len(decoded))
	}
	// Padding-less estimate when the payload is not strictly valid base64.
	return int64(n/4) * 3
}

// SystemGreeting is the first log entry seeded when a case is created,
// referencing the patient and the shared summary.
func SystemGreeting(senderID, patientName, summary string, now time.Time) models.ChatMessage {
	return models.ChatMessage{
		ID:        uuid.NewString(),
		SenderID:  senderID,
		Content:   "Case created for " + patientName + ". Summary: " + summary,
		CreatedAt: now.UTC(),
	}
}
