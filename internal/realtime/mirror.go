package realtime

import (
	"encoding/json"
	"sync"

	"github.com/hearthforum/hearth/internal/forum"
)

// TopicMirror keeps a live copy of one topic's view, patched from broadcast
// events. A stream handler seeds it with a fetched view, applies every
// envelope it relays, and can serve the current state to late joiners
// without another database round trip.
type TopicMirror struct {
	mu   sync.Mutex
	view *forum.TopicView
}

// NewTopicMirror creates a mirror seeded with a fetched view.
func NewTopicMirror(view *forum.TopicView) *TopicMirror {
	return &TopicMirror{view: view}
}

// Apply patches the mirrored view from an envelope. Unknown event names and
// stale or duplicate events are ignored.
func (m *TopicMirror) Apply(env Envelope) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch env.Event {
	case forum.EventNewComment:
		var c forum.CommentView
		if err := json.Unmarshal(env.Payload, &c); err != nil {
			return false
		}
		return ApplyNewComment(m.view, &c)
	case forum.EventNewVote:
		var ev forum.VoteEvent
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			return false
		}
		return ApplyVote(m.view, ev)
	case forum.EventCommentUpdated:
		var ev forum.CommentUpdatedEvent
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			return false
		}
		return ApplyCommentUpdated(m.view, ev)
	}
	return false
}

// Snapshot marshals the current state under the lock.
func (m *TopicMirror) Snapshot() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return json.Marshal(m.view)
}
