package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Arman-Bisht/med-connect/internal/apperr"
	"github.com/Arman-Bisht/med-connect/internal/models"
	"github.com/Arman-Bisht/med-connect/internal/snapshot"
	"github.com/Arman-Bisht/med-connect/internal/store"
	"github.com/Arman-Bisht/med-connect/internal/summarizer"
)

// PatientHandler serves the patients collection and the AI consult summary.
type PatientHandler struct {
	st store.Store
	ai *summarizer.Client
}

func NewPatientHandler(st store.Store, ai *summarizer.Client) *PatientHandler {
	return &PatientHandler{st: st, ai: ai}
}

func (h *PatientHandler) List(c *gin.Context) {
	docs, err := h.st.List(c.Request.Context(), store.Patients)
	if err != nil {
		fail(c, apperr.Remote("could not load patients", err))
		return
	}
	patients := make([]*models.Patient, 0, len(docs))
	for _, doc := range docs {
		p, err := snapshot.DecodePatient(doc)
		if err != nil {
			fail(c, apperr.Remote("corrupt patient record", err))
			return
		}
		patients = append(patients, p)
	}
	ok(c, patients)
}

func (h *PatientHandler) Get(c *gin.Context) {
	p := h.loadPatient(c)
	if p == nil {
		return
	}
	ok(c, p)
}

func (h *PatientHandler) Create(c *gin.Context) {
	var p models.Patient
	if err := c.ShouldBindJSON(&p); err != nil {
		fail(c, apperr.Validation("invalid patient payload"))
		return
	}
	if p.Name == "" {
		fail(c, apperr.Validation("patient name is required"))
		return
	}
	doc := bson.M{
		"name":               p.Name,
		"age":                p.Age,
		"gender":             p.Gender,
		"bloodType":          p.BloodType,
		"medicalHistory":     p.MedicalHistory,
		"currentMedications": p.CurrentMedications,
		"doctorNotes":        p.DoctorNotes,
	}
	id, err := h.st.Create(c.Request.Context(), store.Patients, doc)
	if err != nil {
		fail(c, apperr.Remote("could not save patient", err))
		return
	}
	p.ID = id
	ok(c, p)
}

// Summarize runs the blocking AI call for one patient record. The response is
// always 200; failure is tagged in the body so the portal can surface it
// inline next to the record.
func (h *PatientHandler) Summarize(c *gin.Context) {
	p := h.loadPatient(c)
	if p == nil {
		return
	}

	res := h.ai.Summarize(c.Request.Context(), p)
	body := gin.H{
		"success": res.Ok(),
		"summary": res.Legacy(),
	}
	if !res.Ok() {
		body["error"] = res.Reason
	}
	c.JSON(http.StatusOK, body)
}

// loadPatient fetches the :id patient, writing the error response itself and
// returning nil when the request cannot proceed.
func (h *PatientHandler) loadPatient(c *gin.Context) *models.Patient {
	doc, err := h.st.GetOne(c.Request.Context(), store.Patients, c.Param("id"))
	if err != nil {
		if _, notFound := err.(store.ErrNotFound); notFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Patient not found"})
			return nil
		}
		fail(c, apperr.Remote("could not load patient", err))
		return nil
	}
	p, err := snapshot.DecodePatient(doc)
	if err != nil {
		fail(c, apperr.Remote("corrupt patient record", err))
		return nil
	}
	return p
}
