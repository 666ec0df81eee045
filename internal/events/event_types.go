package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventIssueResolved  EventType = "issue_resolved"
	EventCommentAdded   EventType = "comment_added"
	EventTokenRequested EventType = "token_requested"
	EventTokenCommitted EventType = "token_committed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID           string      `json:"id"`
	Type         EventType   `json:"type"`
	IssueKey     string      `json:"issue_key,omitempty"`
	UserIdentity string      `json:"user_identity,omitempty"`
	Timestamp    time.Time   `json:"timestamp"`
	Payload      interface{} `json:"payload"`
}

// IssueResolvedPayload payload.
type IssueResolvedPayload struct {
	Resolution   string `json:"resolution"`
	TransitionID string `json:"transition_id"`
	Comment      string `json:"comment,omitempty"`
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	BodyPreview string `json:"body_preview"`
}

// TokenRequestedPayload payload.
type TokenRequestedPayload struct {
	Forced bool `json:"forced"`
}
