package model

import "time"

// IdentityLink is a persisted mapping from a platform handle to a verified
// author email. At most one primary email exists per (platform, handle).
type IdentityLink struct {
	Platform     Platform  `json:"platform"`
	HandleOrID   string    `json:"handle_or_id"`
	PrimaryEmail string    `json:"primary_email"`
	CreatedAt    time.Time `json:"created_at"`
}

// Candidate match reasons.
const (
	ReasonEmailMatch = "Email Match"
	ReasonTitleMatch = "Title Match"
)

// Candidate is an ephemeral fuzzy-match candidate produced during identity
// resolution. Never persisted.
type Candidate struct {
	Email  string `json:"email"`
	Score  int    `json:"score"`
	Reason string `json:"reason"`
}

// AuthorRef is one entry in the author matching pool.
type AuthorRef struct {
	Email     string
	BookTitle string
}

// AuthorStatusRecord is the external author status row, keyed by email.
type AuthorStatusRecord struct {
	Email            string
	BookTitle        string
	ISBN             string
	PublishingStatus string
	RoyaltyStatus    string
	SubmissionDate   string
	GoLiveDate       string
}

// KnowledgeChunk is a retrieved knowledge base fragment with its source
// attribution and any links extracted at ingestion time.
type KnowledgeChunk struct {
	Content    string
	SourceFile string
	Links      []string
}

// InteractionLog is one audit-log row, written exactly once per completed run.
type InteractionLog struct {
	Query       string
	Response    string
	Confidence  float64
	AuthorEmail string // empty when no identity was resolved
	Platform    Platform
	CreatedAt   time.Time
}
