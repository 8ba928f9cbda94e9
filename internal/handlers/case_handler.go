package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Arman-Bisht/med-connect/internal/apperr"
	"github.com/Arman-Bisht/med-connect/internal/auth"
	"github.com/Arman-Bisht/med-connect/internal/caseflow"
	"github.com/Arman-Bisht/med-connect/internal/chat"
	"github.com/Arman-Bisht/med-connect/internal/mailer"
	"github.com/Arman-Bisht/med-connect/internal/models"
	"github.com/Arman-Bisht/med-connect/internal/scheduling"
	"github.com/Arman-Bisht/med-connect/internal/snapshot"
	"github.com/Arman-Bisht/med-connect/internal/store"
)

// CaseHandler serves the case lifecycle: creation, chat, status transitions,
// and video-call negotiation. Domain rules live in caseflow and scheduling;
// this layer binds requests, loads the latest case snapshot, applies the
// operation, and writes the result back.
type CaseHandler struct {
	st   store.Store
	mail *mailer.Mailer
	now  func() time.Time
}

func NewCaseHandler(st store.Store, mail *mailer.Mailer) *CaseHandler {
	return &CaseHandler{st: st, mail: mail, now: time.Now}
}

// CreateCaseRequest opens a referral: the patient to snapshot, the specialist
// to consult, and the AI summary to share.
type CreateCaseRequest struct {
	PatientID    string `json:"patientId"`
	SpecialistID string `json:"specialistId"`
	Summary      string `json:"summary"`
}

func (h *CaseHandler) Create(c *gin.Context) {
	var req CreateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("invalid case payload"))
		return
	}
	if req.PatientID == "" || req.SpecialistID == "" || req.Summary == "" {
		fail(c, apperr.Validation("patientId, specialistId and summary are required"))
		return
	}

	ctx := c.Request.Context()
	claims := auth.ClaimsFrom(c)

	creator, err := h.loadUser(c, claims.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	if !creator.IsReferrer() {
		fail(c, apperr.Forbidden("only a referring physician may open a case"))
		return
	}
	specialist, err := h.loadUser(c, req.SpecialistID)
	if err != nil {
		fail(c, err)
		return
	}
	if !specialist.IsSpecialist() {
		fail(c, apperr.Validation("cases can only be assigned to a specialist"))
		return
	}

	patientDoc, err := h.st.GetOne(ctx, store.Patients, req.PatientID)
	if err != nil {
		fail(c, apperr.Validation("patient %s not found", req.PatientID))
		return
	}
	patient, err := snapshot.DecodePatient(patientDoc)
	if err != nil {
		fail(c, apperr.Remote("corrupt patient record", err))
		return
	}

	now := h.now()
	newCase := &models.Case{
		Patient:    *patient, // point-in-time copy, detached from the live record
		CreatedBy:  *creator,
		AssignedTo: *specialist,
		CreatedAt:  now.UTC(),
		Status:     models.StatusAssigned,
		Summary:    req.Summary,
		Chat: []models.ChatMessage{
			chat.SystemGreeting(creator.ID, patient.Name, req.Summary, now),
		},
	}

	doc, err := snapshot.EncodeCase(newCase)
	if err != nil {
		fail(c, apperr.Remote("could not encode case", err))
		return
	}
	id, err := h.st.Create(ctx, store.Cases, doc)
	if err != nil {
		fail(c, apperr.Remote("could not save case", err))
		return
	}
	newCase.ID = id

	go h.mail.NotifyAssignment(newCase)

	ok(c, newCase)
}

func (h *CaseHandler) List(c *gin.Context) {
	docs, err := h.st.List(c.Request.Context(), store.Cases)
	if err != nil {
		fail(c, apperr.Remote("could not load cases", err))
		return
	}
	cases := make([]*models.Case, 0, len(docs))
	for _, doc := range docs {
		cs, err := snapshot.DecodeCase(doc)
		if err != nil {
			fail(c, apperr.Remote("corrupt case record", err))
			return
		}
		cases = append(cases, cs)
	}
	ok(c, cases)
}

func (h *CaseHandler) Get(c *gin.Context) {
	cs := h.loadCase(c)
	if cs == nil {
		return
	}
	ok(c, cs)
}

// AppendMessageRequest is one chat entry: text, an attachment, or both.
type AppendMessageRequest struct {
	Content    string             `json:"content"`
	Attachment *models.Attachment `json:"attachment,omitempty"`
}

// AppendMessage adds one immutable entry to the case chat log with a single
// atomic array-append write. Appending marks work as started, so the
// Assigned -> In Progress transition rides the same write.
func (h *CaseHandler) AppendMessage(c *gin.Context) {
	cs := h.loadCase(c)
	if cs == nil {
		return
	}
	claims := auth.ClaimsFrom(c)
	if !cs.Participant(claims.UserID) {
		fail(c, apperr.Forbidden("only case participants may chat"))
		return
	}

	var req AppendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("invalid message payload"))
		return
	}
	msg, err := chat.NewMessage(claims.UserID, req.Content, req.Attachment, h.now())
	if err != nil {
		fail(c, err)
		return
	}

	prev := cs.Status
	if err := caseflow.StartProgress(cs); err != nil {
		fail(c, err)
		return
	}

	encoded, err := snapshot.EncodeMessage(&msg)
	if err != nil {
		fail(c, apperr.Remote("could not encode message", err))
		return
	}
	var set bson.M
	if cs.Status != prev {
		set = bson.M{"status": string(cs.Status)}
	}
	if err := h.st.Append(c.Request.Context(), store.Cases, cs.ID, "chat", encoded, set); err != nil {
		fail(c, apperr.Remote("could not append message", err))
		return
	}

	ok(c, gin.H{"message": msg, "status": cs.Status})
}

// ChangeStatusRequest names a lifecycle action rather than a raw target
// state, so the role gate stays in the state machine.
type ChangeStatusRequest struct {
	Action string `json:"action"` // review | close | archive
}

func (h *CaseHandler) ChangeStatus(c *gin.Context) {
	cs := h.loadCase(c)
	if cs == nil {
		return
	}
	var req ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("invalid status payload"))
		return
	}

	claims := auth.ClaimsFrom(c)
	var err error
	switch req.Action {
	case "review":
		err = caseflow.MarkPendingReview(cs, claims.UserID)
	case "close":
		err = caseflow.Close(cs, claims.UserID, h.now().UTC())
	case "archive":
		err = caseflow.Archive(cs, claims.UserID, h.now().UTC())
	default:
		err = apperr.Validation("unknown action %q", req.Action)
	}
	if err != nil {
		fail(c, err)
		return
	}

	if !h.persistCase(c, cs) {
		return
	}
	ok(c, cs)
}

// ProposeCallRequest carries up to three candidate instants, captured from a
// local-time input and converted to absolute instants client-side.
type ProposeCallRequest struct {
	Slots []time.Time `json:"slots"`
}

func (h *CaseHandler) ProposeCall(c *gin.Context) {
	cs := h.loadCase(c)
	if cs == nil {
		return
	}
	if caseflow.Terminal(cs.Status) {
		fail(c, apperr.Forbidden("case %s is %s; no new calls can be proposed", cs.ID, cs.Status))
		return
	}
	var req ProposeCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("invalid proposal payload"))
		return
	}

	claims := auth.ClaimsFrom(c)
	sched, err := scheduling.Propose(cs, claims.UserID, req.Slots)
	if err != nil {
		fail(c, err)
		return
	}
	if !h.persistCase(c, cs) {
		return
	}
	ok(c, scheduleView(sched))
}

// ConfirmCallRequest picks one instant out of the proposed set.
type ConfirmCallRequest struct {
	Slot time.Time `json:"slot"`
}

func (h *CaseHandler) ConfirmCall(c *gin.Context) {
	cs := h.loadCase(c)
	if cs == nil {
		return
	}
	var req ConfirmCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("invalid confirmation payload"))
		return
	}

	claims := auth.ClaimsFrom(c)
	callID := c.Param("callID")
	if err := scheduling.Confirm(cs, callID, claims.UserID, req.Slot); err != nil {
		fail(c, err)
		return
	}
	if !h.persistCase(c, cs) {
		return
	}
	ok(c, scheduleView(cs.Schedule(callID)))
}

// CompleteCall marks a confirmed call whose slot has passed as held.
func (h *CaseHandler) CompleteCall(c *gin.Context) {
	cs := h.loadCase(c)
	if cs == nil {
		return
	}
	claims := auth.ClaimsFrom(c)
	if !cs.Participant(claims.UserID) {
		fail(c, apperr.Forbidden("only case participants may complete a call"))
		return
	}
	callID := c.Param("callID")
	if err := scheduling.Complete(cs, callID, h.now().UTC()); err != nil {
		fail(c, err)
		return
	}
	if !h.persistCase(c, cs) {
		return
	}
	ok(c, scheduleView(cs.Schedule(callID)))
}

func (h *CaseHandler) CancelCall(c *gin.Context) {
	cs := h.loadCase(c)
	if cs == nil {
		return
	}
	claims := auth.ClaimsFrom(c)
	callID := c.Param("callID")
	if err := scheduling.Cancel(cs, callID, claims.UserID); err != nil {
		fail(c, err)
		return
	}
	if !h.persistCase(c, cs) {
		return
	}
	ok(c, scheduleView(cs.Schedule(callID)))
}

// scheduleView decorates a schedule with the dual-timezone labels both
// participants see, so rendering never depends on a device clock.
func scheduleView(vc *models.VideoCallSchedule) gin.H {
	labels := make([]string, len(vc.ProposedSlots))
	for i, s := range vc.ProposedSlots {
		labels[i] = scheduling.FormatSlot(s)
	}
	view := gin.H{
		"schedule":   vc,
		"slotLabels": labels,
	}
	if vc.ConfirmedSlot != nil {
		view["confirmedSlotLabel"] = scheduling.FormatSlot(*vc.ConfirmedSlot)
	}
	return view
}

// loadCase fetches the :id case, writing the error response itself and
// returning nil when the request cannot proceed.
func (h *CaseHandler) loadCase(c *gin.Context) *models.Case {
	doc, err := h.st.GetOne(c.Request.Context(), store.Cases, c.Param("id"))
	if err != nil {
		if _, notFound := err.(store.ErrNotFound); notFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Case not found"})
			return nil
		}
		fail(c, apperr.Remote("could not load case", err))
		return nil
	}
	cs, err := snapshot.DecodeCase(doc)
	if err != nil {
		fail(c, apperr.Remote("corrupt case record", err))
		return nil
	}
	return cs
}

func (h *CaseHandler) persistCase(c *gin.Context, cs *models.Case) bool {
	doc, err := snapshot.EncodeCase(cs)
	if err != nil {
		fail(c, apperr.Remote("could not encode case", err))
		return false
	}
	if err := h.st.Update(c.Request.Context(), store.Cases, cs.ID, doc); err != nil {
		fail(c, apperr.Remote("could not save case", err))
		return false
	}
	return true
}

func (h *CaseHandler) loadUser(c *gin.Context, id string) (*models.User, error) {
	doc, err := h.st.GetOne(c.Request.Context(), store.Users, id)
	if err != nil {
		if _, notFound := err.(store.ErrNotFound); notFound {
			return nil, apperr.Validation("user %s not found", id)
		}
		return nil, apperr.Remote("could not load user", err)
	}
	u, err := snapshot.DecodeUser(doc)
	if err != nil {
		return nil, err
	}
	// The profile gets embedded into case documents; the credential hash
	// must never travel with it.
	u.PasswordHash = ""
	return u, nil
}
