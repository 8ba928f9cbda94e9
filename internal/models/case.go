package models

import "time"

// CaseStatus is the lifecycle state of a case.
type CaseStatus string

const (
	StatusAssigned      CaseStatus = "Assigned"
	StatusInProgress    CaseStatus = "In Progress"
	StatusPendingReview CaseStatus = "Pending Review"
	StatusClosed        CaseStatus = "Closed"
	StatusArchived      CaseStatus = "Archived"
)

// AttachmentKind distinguishes inline images from other files.
type AttachmentKind string

const (
	AttachmentImage AttachmentKind = "image"
	AttachmentFile  AttachmentKind = "file"
)

// Attachment is a payload bound to a single chat message. It has no lifecycle
// of its own; content is inline-encoded (data URL) or externally hosted.
type Attachment struct {
	Name string         `json:"name" bson:"name"`
	URL  string         `json:"url" bson:"url"`
	Kind AttachmentKind `json:"type" bson:"type"`
	Size int64          `json:"size" bson:"size"`
}

// ChatMessage is one immutable entry in a case's append-only chat log.
// Content may be empty only when an attachment is present.
type ChatMessage struct {
	ID         string      `json:"id" bson:"id"`
	SenderID   string      `json:"senderId" bson:"senderId"`
	Content    string      `json:"content" bson:"content"`
	CreatedAt  time.Time   `json:"createdAt" bson:"createdAt"`
	Attachment *Attachment `json:"attachment,omitempty" bson:"attachment,omitempty"`
}

// ScheduleStatus is the state of one video-call negotiation thread.
type ScheduleStatus string

const (
	ScheduleProposed  ScheduleStatus = "Proposed"
	ScheduleConfirmed ScheduleStatus = "Confirmed"
	ScheduleCancelled ScheduleStatus = "Cancelled"
	ScheduleCompleted ScheduleStatus = "Completed"
)

// VideoCallSchedule is a negotiation thread for one proposed meeting.
// ConfirmedSlot is set iff status is Confirmed, and is always one of
// ProposedSlots.
type VideoCallSchedule struct {
	ID            string         `json:"id" bson:"id"`
	RequesterID   string         `json:"requesterId" bson:"requesterId"`
	ResponderID   string         `json:"responderId" bson:"responderId"`
	ProposedSlots []time.Time    `json:"proposedSlots" bson:"proposedSlots"`
	ConfirmedSlot *time.Time     `json:"confirmedSlot,omitempty" bson:"confirmedSlot,omitempty"`
	Status        ScheduleStatus `json:"status" bson:"status"`
}

// Case is the unit of collaboration between a referring physician and a
// specialist about one patient snapshot. The id is positional (assigned by
// the document store) and is never written into the document body.
//
// CreatedBy and AssignedTo are fixed at creation. ClosedAt is set iff the
// case is in a terminal state (Closed or Archived).
type Case struct {
	ID             string              `json:"id" bson:"-"`
	Patient        Patient             `json:"patient" bson:"patient"`
	CreatedBy      User                `json:"createdBy" bson:"createdBy"`
	AssignedTo     User                `json:"assignedTo" bson:"assignedTo"`
	CreatedAt      time.Time           `json:"createdAt" bson:"createdAt"`
	Status         CaseStatus          `json:"status" bson:"status"`
	Summary        string              `json:"summary" bson:"summary"`
	Chat           []ChatMessage       `json:"chat" bson:"chat"`
	VideoCalls     []VideoCallSchedule `json:"videoCalls,omitempty" bson:"videoCalls,omitempty"`
	FinalReportURL string              `json:"finalReportUrl,omitempty" bson:"finalReportUrl,omitempty"`
	ClosedAt       *time.Time          `json:"closedAt,omitempty" bson:"closedAt,omitempty"`
}

// Participant reports whether userID is one of the two case participants.
func (c *Case) Participant(userID string) bool {
	return userID == c.CreatedBy.ID || userID == c.AssignedTo.ID
}

// OtherParticipant returns the participant opposite userID. Empty string if
// userID is not a participant.
func (c *Case) OtherParticipant(userID string) string {
	switch userID {
	case c.CreatedBy.ID:
		return c.AssignedTo.ID
	case c.AssignedTo.ID:
		return c.CreatedBy.ID
	}
	return ""
}

// Schedule returns the video-call schedule with the given id, or nil.
func (c *Case) Schedule(id string) *VideoCallSchedule {
	for i := range c.VideoCalls {
		if c.VideoCalls[i].ID == id {
			return &c.VideoCalls[i]
		}
	}
	return nil
}
