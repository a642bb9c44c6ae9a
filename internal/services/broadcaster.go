package services

import (
	"fmt"

	"github.com/isdelr/glossary-be/internal/websocket"
)

// Broadcaster pushes glossary change notifications to live subscribers.
type Broadcaster interface {
	BroadcastTo(topic string, message []byte)
}

// Compile-time check that the hub can be used as a Broadcaster.
var _ Broadcaster = (*websocket.Hub)(nil)

// TermTopic is the subscription topic for changes to a single term.
func TermTopic(termID int64) string {
	return fmt.Sprintf("term:%d", termID)
}

// publish sends action/payload to global subscribers and to those of topic.
// A nil broadcaster is a no-op.
func publish(b Broadcaster, topic, action string, payload interface{}) {
	if b == nil {
		return
	}
	msg := websocket.NewMessage(action, payload)
	if msg == nil {
		return
	}
	b.BroadcastTo(websocket.GlobalTopic, msg)
	if topic != "" && topic != websocket.GlobalTopic {
		b.BroadcastTo(topic, msg)
	}
}
