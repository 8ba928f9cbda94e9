// Package scheduling manages the two-party video-call negotiation: a
// requester proposes up to three absolute time instants, the other
// participant confirms exactly one of them. Instants are stored UTC and
// rendered in both participants' fixed reference timezones.
package scheduling

import (
	"time"

	"github.com/google/uuid"

	"github.com/Arman-Bisht/med-connect/internal/apperr"
	"github.com/Arman-Bisht/med-connect/internal/models"
)

// MaxProposedSlots is the cap on candidate instants per proposal.
const MaxProposedSlots = 3

// Propose opens a new negotiation thread on the case. Zero-value slots are
// dropped; at least one valid instant is required. The responder is computed
// as the participant opposite the requester.
func Propose(c *models.Case, requesterID string, slots []time.Time) (*models.VideoCallSchedule, error) {
	responderID := c.OtherParticipant(requesterID)
	if responderID == "" {
		return nil, apperr.Forbidden("user %s is not a participant of case %s", requesterID, c.ID)
	}

	valid := make([]time.Time, 0, len(slots))
	for _, s := range slots {
		if !s.IsZero() {
			valid = append(valid, s.UTC())
		}
	}
	if len(valid) == 0 {
		return nil, apperr.Validation("a proposal needs at least one valid time slot")
	}
	if len(valid) > MaxProposedSlots {
		return nil, apperr.Validation("a proposal may carry at most %d time slots", MaxProposedSlots)
	}

	sched := models.VideoCallSchedule{
		ID:            uuid.NewString(),
		RequesterID:   requesterID,
		ResponderID:   responderID,
		ProposedSlots: valid,
		Status:        models.ScheduleProposed,
	}
	c.VideoCalls = append(c.VideoCalls, sched)
	return &c.VideoCalls[len(c.VideoCalls)-1], nil
}

// Confirm records the responder's choice of one proposed slot. Only the
// responder may confirm, only while the thread is still Proposed, and only
// for an instant that is a member of the proposed set.
func Confirm(c *models.Case, scheduleID, actorID string, slot time.Time) error {
	sched := c.Schedule(scheduleID)
	if sched == nil {
		return apperr.Validation("case %s has no schedule %s", c.ID, scheduleID)
	}
	if actorID != sched.ResponderID {
		return apperr.Forbidden("only the responder may confirm a proposed call")
	}
	if sched.Status != models.ScheduleProposed {
		return apperr.Forbidden("schedule %s is %s and can no longer be confirmed", scheduleID, sched.Status)
	}

	var chosen *time.Time
	for i := range sched.ProposedSlots {
		if sched.ProposedSlots[i].Equal(slot) {
			chosen = &sched.ProposedSlots[i]
			break
		}
	}
	if chosen == nil {
		return apperr.Validation("confirmed slot is not one of the proposed slots")
	}

	t := chosen.UTC()
	sched.ConfirmedSlot = &t
	sched.Status = models.ScheduleConfirmed
	return nil
}

// Cancel withdraws a still-unconfirmed proposal. Either participant may
// cancel; there is no timed expiry.
func Cancel(c *models.Case, scheduleID, actorID string) error {
	sched := c.Schedule(scheduleID)
	if sched == nil {
		return apperr.Validation("case %s has no schedule %s", c.ID, scheduleID)
	}
	if !c.Participant(actorID) {
		return apperr.Forbidden("only a case participant may cancel a proposed call")
	}
	if sched.Status != models.ScheduleProposed {
		return apperr.Forbidden("schedule %s is %s and cannot be cancelled", scheduleID, sched.Status)
	}
	sched.Status = models.ScheduleCancelled
	return nil
}

// Complete marks a confirmed call whose slot has passed as Completed.
func Complete(c *models.Case, scheduleID string, now time.Time) error {
	sched := c.Schedule(scheduleID)
	if sched == nil {
		return apperr.Validation("case %s has no schedule %s", c.ID, scheduleID)
	}
	if sched.Status != models.ScheduleConfirmed || sched.ConfirmedSlot == nil {
		return apperr.Forbidden("schedule %s is %s; only confirmed calls complete", scheduleID, sched.Status)
	}
	if now.Before(*sched.ConfirmedSlot) {
		return apperr.Forbidden("schedule %s has not taken place yet", scheduleID)
	}
	sched.Status = models.ScheduleCompleted
	return nil
}
