package domain

import "fmt"

type EventType string

const (
	EventSessionStarted  EventType = "session_started"
	EventUserJoined      EventType = "user_joined"
	EventUserLeft        EventType = "user_left"
	EventAssignRequested EventType = "assign_requested"
	EventRemoveRequested EventType = "remove_requested"
)

// Event is one notification from the hosting platform. UserID is zero for
// session_started.
type Event struct {
	Type   EventType `json:"type"`
	UserID UserID    `json:"user_id"`
}

func ParseEventType(s string) (EventType, error) {
	switch t := EventType(s); t {
	case EventSessionStarted, EventUserJoined, EventUserLeft, EventAssignRequested, EventRemoveRequested:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEventType, s)
	}
}

// NeedsUser reports whether the event must carry a user id.
func (t EventType) NeedsUser() bool {
	return t != EventSessionStarted
}
