package ws

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

// Event tells clients which table changed so they can refetch the matching
// read model. Payloads are deliberately absent: the HTTP API is the source
// of truth and clients reload from it.
type Event struct {
	Table string `json:"table"`
	Event string `json:"event"`
}

// hotelEvent routes one event to a hotel's room.
type hotelEvent struct {
	HotelID uuid.UUID
	Event   Event
}

// Hub tracks connected clients per hotel and fans change events out to them.
type Hub struct {
	rooms map[uuid.UUID]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *hotelEvent

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *hotelEvent, 256),
	}
}

// Run is the hub's main loop. Call it once, as a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.hotelID] == nil {
				h.rooms[client.hotelID] = make(map[*Client]bool)
			}
			h.rooms[client.hotelID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.hotelID]; ok {
				if _, exists := clients[client]; exists {
					delete(clients, client)
					close(client.send)
					if len(clients) == 0 {
						delete(h.rooms, client.hotelID)
					}
				}
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			h.mu.Lock()
			clients := h.rooms[event.HotelID]

			message, err := json.Marshal(event.Event)
			if err != nil {
				h.mu.Unlock()
				continue
			}

			for client := range clients {
				select {
				case client.send <- message:
				default:
					// Slow client: drop it rather than block the hub.
					close(client.send)
					delete(h.rooms[event.HotelID], client)
					if len(h.rooms[event.HotelID]) == 0 {
						delete(h.rooms, event.HotelID)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastChange notifies every client of a hotel that rows in the given
// table changed. Satisfies the order service's Notifier.
func (h *Hub) BroadcastChange(hotelID uuid.UUID, table, event string) {
	h.broadcast <- &hotelEvent{
		HotelID: hotelID,
		Event:   Event{Table: table, Event: event},
	}
}
