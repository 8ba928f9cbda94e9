// Package mailer sends the assignment notification a specialist receives
// when a referring physician opens a case with them. Delivery is best-effort
// and fire-and-forget; failures are logged, never surfaced to the referrer.
package mailer

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"

	"github.com/Arman-Bisht/med-connect/internal/models"
)

// Mailer wraps an SMTP dialer. A nil Mailer is valid and sends nothing.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

// FromEnv builds a Mailer from SMTP_* environment variables, or nil when
// SMTP_HOST is unset (notifications disabled).
func FromEnv() *Mailer {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		log.Println("⚠️ SMTP_HOST not set; assignment notifications disabled")
		return nil
	}
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		port = 587
	}
	from := os.Getenv("SMTP_EMAIL")
	return &Mailer{
		dialer: gomail.NewDialer(host, port, from, os.Getenv("SMTP_PASSWORD")),
		from:   from,
	}
}

// NotifyAssignment emails the specialist that a new case was opened with
// them. Call from a goroutine; errors are logged only.
func (m *Mailer) NotifyAssignment(cs *models.Case) {
	if m == nil {
		return
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", cs.AssignedTo.Email)
	msg.SetHeader("Subject", fmt.Sprintf("New case referral: %s", cs.Patient.Name))
	msg.SetBody("text/plain", fmt.Sprintf(
		"%s,\n\n%s has referred the case of %s to you for review.\n\nSummary:\n%s\n",
		cs.AssignedTo.Name, cs.CreatedBy.Name, cs.Patient.Name, cs.Summary))

	if err := m.dialer.DialAndSend(msg); err != nil {
		log.Printf("❌ Failed to send assignment notification for case %s: %v", cs.ID, err)
		return
	}
	log.Printf("✅ Assignment notification sent to %s", cs.AssignedTo.Email)
}
