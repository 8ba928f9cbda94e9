// Package caseflow is the case lifecycle state machine. All operations are
// pure mutations of an in-memory Case; persisting the result is the caller's
// concern. Wrong-role or wrong-state attempts return a forbidden error and
// leave the case untouched.
package caseflow

import (
	"time"

	"github.com/Arman-Bisht/med-connect/internal/apperr"
	"github.com/Arman-Bisht/med-connect/internal/models"
)

// Terminal reports whether s is a terminal state. Terminal cases keep their
// chat log readable but accept no new messages.
func Terminal(s models.CaseStatus) bool {
	return s == models.StatusClosed || s == models.StatusArchived
}

// ChatOpen reports whether new chat messages may be appended.
func ChatOpen(s models.CaseStatus) bool { return !Terminal(s) }

// StartProgress moves an Assigned case to In Progress. It is invoked by the
// chat append handler when work begins, not by a user action; appending to a
// case already In Progress (or Pending Review) leaves the status unchanged.
func StartProgress(c *models.Case) error {
	if Terminal(c.Status) {
		return apperr.Forbidden("case %s is %s; chat is read-only", c.ID, c.Status)
	}
	if c.Status == models.StatusAssigned {
		c.Status = models.StatusInProgress
	}
	return nil
}

// MarkPendingReview records that the specialist's review is done. Only the
// assigned specialist may do this, and only from Assigned or In Progress.
func MarkPendingReview(c *models.Case, actorID string) error {
	if actorID != c.AssignedTo.ID {
		return apperr.Forbidden("only the assigned specialist may mark a case ready for review")
	}
	if c.Status != models.StatusAssigned && c.Status != models.StatusInProgress {
		return apperr.Forbidden("case %s cannot move to review from %s", c.ID, c.Status)
	}
	c.Status = models.StatusPendingReview
	return nil
}

// Close records the referring physician's final acceptance. Only the creator
// may close, and only from Pending Review. Sets ClosedAt to now.
func Close(c *models.Case, actorID string, now time.Time) error {
	if actorID != c.CreatedBy.ID {
		return apperr.Forbidden("only the referring physician may close a case")
	}
	if c.Status != models.StatusPendingReview {
		return apperr.Forbidden("case %s cannot be closed from %s", c.ID, c.Status)
	}
	c.Status = models.StatusClosed
	c.ClosedAt = &now
	return nil
}

// Archive moves a case to the Archived terminal state. Either participant may
// archive from any non-terminal state. ClosedAt is stamped so that the
// "closedAt set iff terminal" invariant holds for both terminal states.
func Archive(c *models.Case, actorID string, now time.Time) error {
	if !c.Participant(actorID) {
		return apperr.Forbidden("only a case participant may archive it")
	}
	if Terminal(c.Status) {
		return apperr.Forbidden("case %s is already %s", c.ID, c.Status)
	}
	c.Status = models.StatusArchived
	c.ClosedAt = &now
	return nil
}
