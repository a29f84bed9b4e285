package event

// Type doubles as the SSE event name sent to listeners.
type Type string

const (
	TypeTaskCreated Type = "taskCreated"
	TypeTaskUpdated Type = "taskUpdated"
	TypeTaskDeleted Type = "taskDeleted"
	TypeLinkCreated Type = "linkCreated"
	TypeLinkDeleted Type = "linkDeleted"
)

// Event is one change notification. Payload is the resulting entity
// state, or just the identifier for deletions.
type Event struct {
	Type    Type
	Payload any
}

// Bus fans change events out to every live subscriber, best effort.
type Bus interface {
	Publish(e Event)
	Subscribe() (<-chan Event, func())
}
