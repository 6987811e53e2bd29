package websocket

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrClientClosed is returned when attempting to send to a closed client
var ErrClientClosed = errors.New("client is closed")

// ClientInterface defines the interface that clients must implement
type ClientInterface interface {
	ID() string
	View() string
	Send(data []byte) error
	Close() error
}

// Hub manages WebSocket connections organized by the view they render
// It is safe for concurrent use
type Hub struct {
	// views maps view name to a map of client ID to client
	views map[string]map[string]ClientInterface
	mu    sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		views: make(map[string]map[string]ClientInterface),
	}
}

// Register adds a client to the hub under its view
func (h *Hub) Register(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	view := client.View()
	clientID := client.ID()

	if h.views[view] == nil {
		h.views[view] = make(map[string]ClientInterface)
	}

	h.views[view][clientID] = client

	log.Debug().
		Str("view", view).
		Str("client_id", clientID).
		Msg("WebSocket client registered")
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	view := client.View()
	clientID := client.ID()

	if clients, ok := h.views[view]; ok {
		if _, exists := clients[clientID]; exists {
			delete(clients, clientID)

			// Clean up empty view maps
			if len(clients) == 0 {
				delete(h.views, view)
			}

			log.Debug().
				Str("view", view).
				Str("client_id", clientID).
				Msg("WebSocket client unregistered")
		}
	}
}

// Broadcast sends an event to every client of every view
func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	clients := make([]ClientInterface, 0)
	for _, byID := range h.views {
		for _, client := range byID {
			clients = append(clients, client)
		}
	}
	h.mu.RUnlock()

	h.send(clients, event)
}

// BroadcastView sends an event only to the clients rendering one view
func (h *Hub) BroadcastView(view string, event Event) {
	h.mu.RLock()
	byID, ok := h.views[view]
	if !ok || len(byID) == 0 {
		h.mu.RUnlock()
		return
	}

	// Copy clients to avoid holding lock during send
	clients := make([]ClientInterface, 0, len(byID))
	for _, client := range byID {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	h.send(clients, event)
}

func (h *Hub) send(clients []ClientInterface, event Event) {
	if len(clients) == 0 {
		return
	}

	data, err := event.ToJSON()
	if err != nil {
		log.Error().
			Err(err).
			Str("event_type", event.Type).
			Msg("Failed to serialize event")
		return
	}

	// Send to each client asynchronously
	for _, client := range clients {
		go func(c ClientInterface) {
			if err := c.Send(data); err != nil {
				log.Warn().
					Err(err).
					Str("view", c.View()).
					Str("client_id", c.ID()).
					Msg("Failed to send to client")
			}
		}(client)
	}

	log.Debug().
		Str("event_type", event.Type).
		Int("client_count", len(clients)).
		Msg("Broadcast event")
}

// CloseAll disconnects every client, used on shutdown
func (h *Hub) CloseAll() {
	h.mu.Lock()
	clients := make([]ClientInterface, 0)
	for _, byID := range h.views {
		for _, client := range byID {
			clients = append(clients, client)
		}
	}
	h.views = make(map[string]map[string]ClientInterface)
	h.mu.Unlock()

	for _, client := range clients {
		if err := client.Close(); err != nil {
			log.Debug().Err(err).Str("client_id", client.ID()).Msg("Error closing client")
		}
	}
}

// ClientCount returns the number of clients rendering a view
func (h *Hub) ClientCount(view string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if clients, ok := h.views[view]; ok {
		return len(clients)
	}
	return 0
}

// TotalClientCount returns the total number of connected clients across all views
func (h *Hub) TotalClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, clients := range h.views {
		total += len(clients)
	}
	return total
}
