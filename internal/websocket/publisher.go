package websocket

// EventPublisher defines the interface for publishing events to attached view renderers
type EventPublisher interface {
	// Publish sends an event to every connected renderer
	Publish(event Event)
	// PublishTo sends an event only to renderers of the given views
	PublishTo(views []string, event Event)
}

// Ensure Hub implements EventPublisher
var _ EventPublisher = (*Hub)(nil)

// Publish implements EventPublisher by broadcasting the event
func (h *Hub) Publish(event Event) {
	h.Broadcast(event)
}

// PublishTo implements EventPublisher by sending to each named view once
func (h *Hub) PublishTo(views []string, event Event) {
	seen := make(map[string]bool, len(views))
	for _, view := range views {
		if seen[view] {
			continue
		}
		seen[view] = true
		h.BroadcastView(view, event)
	}
}

// NoOpPublisher is a publisher that does nothing (for testing or when WebSocket is disabled)
type NoOpPublisher struct{}

// Publish does nothing
func (n *NoOpPublisher) Publish(event Event) {}

// PublishTo does nothing
func (n *NoOpPublisher) PublishTo(views []string, event Event) {}
