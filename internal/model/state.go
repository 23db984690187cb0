package model

// ConversationState is the per-run state driven by the dialogue orchestrator.
// Turns are append-only; identity and provenance fields are assigned once at
// construction and never mutated afterwards.
type ConversationState struct {
	ThreadID string
	Platform Platform
	SenderID string

	// AuthorEmail is the verified identity injected by the resolver, or
	// empty when resolution produced no identity.
	AuthorEmail string

	Turns []Turn

	// Confidence is the last computed routing confidence. It stays at 1.0
	// until the evaluator runs.
	Confidence       float64
	HandoverRequired bool
}

// NewConversationState creates the initial state for one run from a single
// user message plus the resolved identity.
func NewConversationState(userInput string, platform Platform, senderID, threadID, authorEmail string) *ConversationState {
	return &ConversationState{
		ThreadID:    threadID,
		Platform:    platform,
		SenderID:    senderID,
		AuthorEmail: authorEmail,
		Turns:       []Turn{UserTurn(userInput)},
		Confidence:  1.0,
	}
}

// Append adds a turn to the conversation. Turns are never reordered or
// truncated within a run.
func (s *ConversationState) Append(t Turn) {
	s.Turns = append(s.Turns, t)
}

// Last returns the most recent turn.
func (s *ConversationState) Last() Turn {
	return s.Turns[len(s.Turns)-1]
}

// UserQuery returns the original user message that started the run.
func (s *ConversationState) UserQuery() string {
	return s.Turns[0].Content
}
