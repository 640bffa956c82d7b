// ABOUTME: Typed domain events emitted after each successful mutation
// ABOUTME: Delivered to an injected sink, fire-and-forget

package vcs

import "time"

// EventType names a domain event
type EventType string

const (
	EventVersionCreated      EventType = "versionCreated"
	EventVersionReverted     EventType = "versionReverted"
	EventBranchCreated       EventType = "branchCreated"
	EventBranchSwitched      EventType = "branchSwitched"
	EventBranchDeleted       EventType = "branchDeleted"
	EventMergeRequestCreated EventType = "mergeRequestCreated"
	EventBranchMerged        EventType = "branchMerged"
	EventReviewCommentAdded  EventType = "reviewCommentAdded"
)

// Event carries the affected entities of one mutation. Only the fields
// relevant to the event type are set.
type Event struct {
	Type         EventType        `json:"type"`
	OccurredAt   time.Time        `json:"occurredAt"`
	DocumentID   string           `json:"documentId,omitempty"`
	Version      *DocumentVersion `json:"version,omitempty"`
	Branch       *DocumentBranch  `json:"branch,omitempty"`
	MergeRequest *MergeRequest    `json:"mergeRequest,omitempty"`
	Comment      *ReviewComment   `json:"comment,omitempty"`
}

// EventSink consumes domain events. Delivery is fire-and-forget: the engine
// requires no acknowledgement and never retries.
type EventSink interface {
	Publish(evt Event)
}

// NoopSink discards all events
type NoopSink struct{}

// Publish discards the event
func (NoopSink) Publish(Event) {}

// MemorySink records events in publication order, for tests and examples
type MemorySink struct {
	events []Event
}

// NewMemorySink creates a recording sink
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Publish appends the event
func (s *MemorySink) Publish(evt Event) {
	s.events = append(s.events, evt)
}

// Events returns all recorded events in order
func (s *MemorySink) Events() []Event {
	return s.events
}

// Types returns the recorded event types in order
func (s *MemorySink) Types() []EventType {
	types := make([]EventType, len(s.events))
	for i, evt := range s.events {
		types[i] = evt.Type
	}
	return types
}
