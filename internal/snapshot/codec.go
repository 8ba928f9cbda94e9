// Package snapshot translates document-store snapshots into domain entities
// and back. It is the only place that knows the store's native timestamp
// type; every instant-typed field is converted explicitly, everything else
// passes through unchanged. Decoding replaces the previous view of an entity
// wholesale; there is no merging.
package snapshot

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Arman-Bisht/med-connect/internal/models"
)

// DecodeCase rebuilds a Case from a raw case document. The document id is
// positional: it is read from the store's id key, never from the body.
// Missing optional timestamps decode to absent, not an error.
func DecodeCase(doc bson.M) (*models.Case, error) {
	c := &models.Case{}
	c.ID, _ = doc["_id"].(string)

	if err := decodeInto(doc["patient"], &c.Patient); err != nil {
		return nil, fmt.Errorf("decode case %s patient: %w", c.ID, err)
	}
	if err := decodeInto(doc["createdBy"], &c.CreatedBy); err != nil {
		return nil, fmt.Errorf("decode case %s createdBy: %w", c.ID, err)
	}
	if err := decodeInto(doc["assignedTo"], &c.AssignedTo); err != nil {
		return nil, fmt.Errorf("decode case %s assignedTo: %w", c.ID, err)
	}

	c.Status = models.CaseStatus(asString(doc["status"]))
	c.Summary = asString(doc["summary"])
	c.FinalReportURL = asString(doc["finalReportUrl"])

	c.CreatedAt, _ = asTime(doc["createdAt"])
	if t, ok := asTime(doc["closedAt"]); ok {
		c.ClosedAt = &t
	}

	for i, v := range asArray(doc["chat"]) {
		msg, err := decodeMessage(v)
		if err != nil {
			return nil, fmt.Errorf("decode case %s chat[%d]: %w", c.ID, i, err)
		}
		c.Chat = append(c.Chat, msg)
	}
	for i, v := range asArray(doc["videoCalls"]) {
		vc, err := decodeSchedule(v)
		if err != nil {
			return nil, fmt.Errorf("decode case %s videoCalls[%d]: %w", c.ID, i, err)
		}
		c.VideoCalls = append(c.VideoCalls, vc)
	}
	return c, nil
}

func decodeMessage(v any) (models.ChatMessage, error) {
	m, ok := v.(bson.M)
	if !ok {
		return models.ChatMessage{}, fmt.Errorf("message is %T, want document", v)
	}
	msg := models.ChatMessage{
		ID:       asString(m["id"]),
		SenderID: asString(m["senderId"]),
		Content:  asString(m["content"]),
	}
	msg.CreatedAt, _ = asTime(m["createdAt"])
	if att, ok := m["attachment"]; ok && att != nil {
		msg.Attachment = &models.Attachment{}
		if err := decodeInto(att, msg.Attachment); err != nil {
			return models.ChatMessage{}, fmt.Errorf("attachment: %w", err)
		}
	}
	return msg, nil
}

func decodeSchedule(v any) (models.VideoCallSchedule, error) {
	m, ok := v.(bson.M)
	if !ok {
		return models.VideoCallSchedule{}, fmt.Errorf("schedule is %T, want document", v)
	}
	vc := models.VideoCallSchedule{
		ID:          asString(m["id"]),
		RequesterID: asString(m["requesterId"]),
		ResponderID: asString(m["responderId"]),
		Status:      models.ScheduleStatus(asString(m["status"])),
	}
	for _, s := range asArray(m["proposedSlots"]) {
		if t, ok := asTime(s); ok {
			vc.ProposedSlots = append(vc.ProposedSlots, t)
		}
	}
	if t, ok := asTime(m["confirmedSlot"]); ok {
		vc.ConfirmedSlot = &t
	}
	return vc, nil
}

// EncodeCase is the inverse mapping, used when persisting a locally mutated
// case. Only instant-typed fields need conversion to the store's timestamp
// type; the case's own id is positional and is never written into the body.
func EncodeCase(c *models.Case) (bson.M, error) {
	patient, err := encodeDoc(c.Patient)
	if err != nil {
		return nil, fmt.Errorf("encode case %s patient: %w", c.ID, err)
	}
	createdBy, err := encodeDoc(c.CreatedBy)
	if err != nil {
		return nil, fmt.Errorf("encode case %s createdBy: %w", c.ID, err)
	}
	assignedTo, err := encodeDoc(c.AssignedTo)
	if err != nil {
		return nil, fmt.Errorf("encode case %s assignedTo: %w", c.ID, err)
	}

	chat := bson.A{}
	for i := range c.Chat {
		m, err := EncodeMessage(&c.Chat[i])
		if err != nil {
			return nil, fmt.Errorf("encode case %s chat[%d]: %w", c.ID, i, err)
		}
		chat = append(chat, m)
	}

	doc := bson.M{
		"patient":    patient,
		"createdBy":  createdBy,
		"assignedTo": assignedTo,
		"createdAt":  primitive.NewDateTimeFromTime(c.CreatedAt),
		"status":     string(c.Status),
		"summary":    c.Summary,
		"chat":       chat,
	}
	if c.ClosedAt != nil {
		doc["closedAt"] = primitive.NewDateTimeFromTime(*c.ClosedAt)
	}
	if c.FinalReportURL != "" {
		doc["finalReportUrl"] = c.FinalReportURL
	}
	if len(c.VideoCalls) > 0 {
		calls := bson.A{}
		for i := range c.VideoCalls {
			calls = append(calls, encodeSchedule(&c.VideoCalls[i]))
		}
		doc["videoCalls"] = calls
	}
	return doc, nil
}

// EncodeMessage converts one chat message into its document form, for the
// atomic array-append write.
func EncodeMessage(msg *models.ChatMessage) (bson.M, error) {
	m := bson.M{
		"id":        msg.ID,
		"senderId":  msg.SenderID,
		"content":   msg.Content,
		"createdAt": primitive.NewDateTimeFromTime(msg.CreatedAt),
	}
	if msg.Attachment != nil {
		att, err := encodeDoc(*msg.Attachment)
		if err != nil {
			return nil, fmt.Errorf("attachment: %w", err)
		}
		m["attachment"] = att
	}
	return m, nil
}

func encodeSchedule(vc *models.VideoCallSchedule) bson.M {
	slots := bson.A{}
	for _, s := range vc.ProposedSlots {
		slots = append(slots, primitive.NewDateTimeFromTime(s))
	}
	m := bson.M{
		"id":            vc.ID,
		"requesterId":   vc.RequesterID,
		"responderId":   vc.ResponderID,
		"proposedSlots": slots,
		"status":        string(vc.Status),
	}
	if vc.ConfirmedSlot != nil {
		m["confirmedSlot"] = primitive.NewDateTimeFromTime(*vc.ConfirmedSlot)
	}
	return m
}

// DecodeUser rebuilds a User from a users-collection document.
func DecodeUser(doc bson.M) (*models.User, error) {
	u := &models.User{}
	if err := decodeInto(doc, u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	if u.ID == "" {
		u.ID, _ = doc["_id"].(string)
	}
	return u, nil
}

// DecodePatient rebuilds a Patient from a patients-collection document.
func DecodePatient(doc bson.M) (*models.Patient, error) {
	p := &models.Patient{}
	if err := decodeInto(doc, p); err != nil {
		return nil, fmt.Errorf("decode patient: %w", err)
	}
	if p.ID == "" {
		p.ID, _ = doc["_id"].(string)
	}
	return p, nil
}

// asTime reads the store's native timestamp type (or an already-converted
// time.Time) as a UTC instant. Reports false for absent or foreign values.
func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case primitive.DateTime:
		return t.Time().UTC(), true
	case time.Time:
		return t.UTC(), true
	default:
		return time.Time{}, false
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asArray(v any) bson.A {
	switch a := v.(type) {
	case bson.A:
		return a
	case []any:
		return bson.A(a)
	default:
		return nil
	}
}

// decodeInto / encodeDoc move non-instant structures between document and
// struct form through the bson codec, leaving field values untouched.
func decodeInto(v any, out any) error {
	if v == nil {
		return fmt.Errorf("missing document")
	}
	raw, err := bson.Marshal(v)
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, out)
}

func encodeDoc(v any) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
