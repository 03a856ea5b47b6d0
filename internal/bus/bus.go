package bus

import (
	"context"
	"time"
)

// Event signals that an entity changed. It carries identifiers only;
// subscribers reconcile by re-fetching current state, never by replaying
// payloads. Delivery is at-least-once and may be lossy across reconnects.
type Event struct {
	Topic    string    `json:"topic"`
	Kind     string    `json:"kind"`
	EntityID string    `json:"entity_id"`
	Change   string    `json:"change"`
	At       time.Time `json:"at"`
}

// Entity kinds carried on the bus.
const (
	KindSession      = "session"
	KindAttendance   = "attendance"
	KindRegistration = "registration"
)

// SessionTopic scopes events to one attendance session.
func SessionTopic(sessionID string) string { return "session:" + sessionID }

// RegistrationTopic scopes events to one applicant's email.
func RegistrationTopic(email string) string { return "registration:" + email }

// Bus fans out change events to subscribers filtered by topic.
type Bus interface {
	Publish(ctx context.Context, evt Event) error
	// Subscribe returns a channel of events for one topic. The channel closes
	// when ctx is done.
	Subscribe(ctx context.Context, topic string) (<-chan Event, error)
}
