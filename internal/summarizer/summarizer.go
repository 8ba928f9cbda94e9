// Package summarizer is the AI collaborator: one blocking generateContent
// call that condenses a patient record for the consulted specialist. The
// outcome is a tagged Result rather than a sentinel-prefixed string, so
// callers branch on Ok instead of inspecting text.
package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/Arman-Bisht/med-connect/internal/models"
)

const defaultModel = "gemini-2.5-flash"

// Result is the outcome of one summarization call.
type Result struct {
	Text   string
	Reason string
}

// Ok reports whether the call produced a summary.
func (r Result) Ok() bool { return r.Reason == "" }

// Legacy renders the result the way the original wire format did: the
// summary text, or a recognizable "Error: "-prefixed failure marker.
func (r Result) Legacy() string {
	if r.Ok() {
		return r.Text
	}
	return "Error: " + r.Reason
}

// Client calls the LLM HTTP API. No retry, no streaming.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

// New builds a client. An empty apiKey disables the collaborator: calls
// return a configuration-failure result instead of being attempted.
func New(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}
	return &Client{
		apiKey:  apiKey,
		model:   defaultModel,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 120 * time.Second},
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}
type content struct {
	Parts []part `json:"parts"`
}
type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Summarize condenses the patient record into a sectioned consult summary.
func (c *Client) Summarize(ctx context.Context, patient *models.Patient) Result {
	if c.apiKey == "" {
		return Result{Reason: "AI service is not configured. Please ensure the API key is set."}
	}

	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: buildPrompt(patient)}}}},
	})
	if err != nil {
		return Result{Reason: fmt.Sprintf("could not build request: %v", err)}
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return Result{Reason: fmt.Sprintf("could not create request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		log.Printf("❌ AI summarization call failed: %v", err)
		return Result{Reason: fmt.Sprintf("Could not generate summary. The AI service may be unavailable. Details: %v", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{Reason: fmt.Sprintf("could not read response: %v", err)}
	}
	if resp.StatusCode != http.StatusOK {
		log.Printf("❌ AI service returned status %d: %s", resp.StatusCode, body)
		return Result{Reason: fmt.Sprintf("AI service returned status %d", resp.StatusCode)}
	}

	var out generateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return Result{Reason: fmt.Sprintf("could not parse response: %v", err)}
	}
	if out.Error != nil {
		return Result{Reason: out.Error.Message}
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return Result{Reason: "AI service returned an empty response"}
	}

	text := strings.TrimSpace(out.Candidates[0].Content.Parts[0].Text)
	log.Printf("✅ Summary generated for patient %s (%d chars)", patient.Name, len(text))
	return Result{Text: text}
}

func buildPrompt(p *models.Patient) string {
	return fmt.Sprintf(`You are a helpful medical assistant. Your task is to summarize a patient's record for a consultation with a specialist.
The summary should be concise, professional, and highlight the most critical information for the specialist.
Structure the summary into the following sections:
- Patient Profile: A brief one-liner.
- Key Medical History: Bullet points of relevant history.
- Current Medications: List of current medications.
- Physician's Notes / Reason for Consultation: A clear summary of the primary doctor's observations and the reason for the referral.

Here is the patient data:
- Name: %s
- Age: %d
- Gender: %s
- Blood Type: %s
- Medical History: %s
- Current Medications: %s
- Doctor's Notes: %s

Please generate the summary now.`,
		p.Name, p.Age, p.Gender, p.BloodType,
		strings.Join(p.MedicalHistory, ", "),
		strings.Join(p.CurrentMedications, ", "),
		p.DoctorNotes)
}
