package brackets

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Event types pushed to tournament rooms.
const (
	EventMatchCompleted     = "MATCH_COMPLETED"
	EventRoundGenerated     = "ROUND_GENERATED"
	EventStandingsUpdated   = "STANDINGS_UPDATED"
	EventTournamentFinished = "TOURNAMENT_FINISHED"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Message is the envelope broadcast to every client watching a tournament.
type Message struct {
	Type         string      `json:"type"`
	TournamentID int         `json:"tournament_id"`
	Payload      interface{} `json:"payload,omitempty"`
}

type Client struct {
	Hub          *Hub
	Conn         *websocket.Conn
	Send         chan []byte
	TournamentID int

	mu     sync.Mutex
	closed bool
}

// Hub keeps one room per tournament and fans broadcasts out to the clients
// registered in that room. Run must be started in its own goroutine.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	mu    sync.RWMutex
	rooms map[int]map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		rooms:      make(map[int]map[*Client]bool),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.rooms[client.TournamentID]; !ok {
				h.rooms[client.TournamentID] = make(map[*Client]bool)
			}
			h.rooms[client.TournamentID][client] = true
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if room, ok := h.rooms[client.TournamentID]; ok {
				if _, registered := room[client]; registered {
					client.markClosed()
					delete(room, client)
					if len(room) == 0 {
						delete(h.rooms, client.TournamentID)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastToTournament sends a message to every client in the tournament's
// room. Clients with a full send buffer are skipped, not blocked on.
func (h *Hub) BroadcastToTournament(tournamentID int, eventType string, payload interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	room, ok := h.rooms[tournamentID]
	if !ok {
		return
	}

	data, err := json.Marshal(Message{Type: eventType, TournamentID: tournamentID, Payload: payload})
	if err != nil {
		log.Printf("hub: marshal broadcast for tournament %d: %v", tournamentID, err)
		return
	}

	for client := range room {
		client.mu.Lock()
		if client.closed {
			client.mu.Unlock()
			continue
		}
		select {
		case client.Send <- data:
		default:
		}
		client.mu.Unlock()
	}
}

func (c *Client) markClosed() {
	c.mu.Lock()
	if !c.closed {
		close(c.Send)
		c.closed = true
	}
	c.mu.Unlock()
}

// ReadPump drains (and ignores) inbound frames so pongs are processed and
// disconnects are noticed. Clients never send commands over this socket.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("hub: client read error in tournament %d: %v", c.TournamentID, err)
			}
			break
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
