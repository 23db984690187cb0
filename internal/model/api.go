package model

import "time"

// ChatRequest is the request to run the customer bot for one message.
type ChatRequest struct {
	Query    string `json:"query"`
	Platform string `json:"platform"`
	SenderID string `json:"sender_id"`
	ThreadID string `json:"thread_id,omitempty"`
}

// ChatResponse is the response after a completed run.
type ChatResponse struct {
	Response      string `json:"response"`
	Handover      bool   `json:"handover"`
	Platform      string `json:"platform"`
	SenderID      string `json:"sender_id"`
	VerifiedEmail string `json:"verified_email,omitempty"`
}

// RunEventType distinguishes published run outcomes.
type RunEventType string

const (
	RunEventAnswered RunEventType = "answered"
	RunEventHandover RunEventType = "handover"
)

// RunEvent is published to JetStream after every completed run so channel
// adapters and escalation workers can react.
type RunEvent struct {
	RunID       string       `json:"run_id"`
	ThreadID    string       `json:"thread_id"`
	Type        RunEventType `json:"type"`
	Platform    Platform     `json:"platform"`
	SenderID    string       `json:"sender_id"`
	Query       string       `json:"query"`
	Response    string       `json:"response"`
	Confidence  float64      `json:"confidence"`
	AuthorEmail string       `json:"author_email,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}
