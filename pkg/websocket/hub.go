package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Envelope is the JSON frame used in both directions.
type Envelope struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
}

// Hub manages websocket clients and room-based broadcasts. All room
// membership is owned by the Run goroutine.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	join       chan joinReq
	broadcast  chan Broadcast

	rooms map[string]map[*Client]bool
	log   logrus.FieldLogger

	quit     chan struct{}
	stopOnce sync.Once
}

type joinReq struct {
	Client   *Client
	Room     string
	PlayerID string
}

// Broadcast is one outbound message. An empty To reaches everyone in Room;
// otherwise only the clients of that player. A non-nil Client overrides
// both and targets that one connection.
type Broadcast struct {
	Room    string
	To      string
	Client  *Client
	Type    string
	Payload any
}

func NewHub(log logrus.FieldLogger) *Hub {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		join:       make(chan joinReq),
		broadcast:  make(chan Broadcast, 256),
		rooms:      map[string]map[*Client]bool{},
		log:        log.WithField("component", "ws_hub"),
		quit:       make(chan struct{}),
	}
}

// Run processes hub traffic until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case <-h.quit:
			return
		case c := <-h.register:
			h.addClient(c, c.Room)
		case c := <-h.unregister:
			h.removeClient(c)
		case jr := <-h.join:
			jr.Client.PlayerID = jr.PlayerID
			h.moveClientToRoom(jr.Client, jr.Room)
		case b := <-h.broadcast:
			h.deliver(b)
		}
	}
}

// Stop ends Run. Once stopped every other method is a no-op, so clients
// still holding this hub never block on it.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })
}

func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.quit:
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.quit:
	}
}

// Join moves c into room under the given player id. Spectators pass an
// empty player id.
func (h *Hub) Join(c *Client, room, playerID string) {
	select {
	case h.join <- joinReq{Client: c, Room: room, PlayerID: playerID}:
	case <-h.quit:
	}
}

func (h *Hub) Broadcast(room, typ string, payload any) {
	h.enqueue(Broadcast{Room: room, Type: typ, Payload: payload})
}

// SendTo delivers to the clients in room that belong to playerID.
func (h *Hub) SendTo(room, playerID, typ string, payload any) {
	h.enqueue(Broadcast{Room: room, To: playerID, Type: typ, Payload: payload})
}

// Direct delivers to a single connection wherever it currently is.
func (h *Hub) Direct(c *Client, typ string, payload any) {
	h.enqueue(Broadcast{Client: c, Type: typ, Payload: payload})
}

func (h *Hub) enqueue(b Broadcast) {
	select {
	case h.broadcast <- b:
	case <-h.quit:
	}
}

func (h *Hub) addClient(c *Client, room string) {
	if c == nil {
		return
	}
	if room == "" {
		room = LobbyRoom
	}
	c.Room = room
	if h.rooms[room] == nil {
		h.rooms[room] = map[*Client]bool{}
	}
	h.rooms[room][c] = true
}

func (h *Hub) detach(c *Client) {
	if c.Room != "" && h.rooms[c.Room] != nil {
		delete(h.rooms[c.Room], c)
		if len(h.rooms[c.Room]) == 0 {
			delete(h.rooms, c.Room)
		}
	}
}

func (h *Hub) removeClient(c *Client) {
	if c == nil {
		return
	}
	h.detach(c)
	c.CloseOnce.Do(func() { close(c.Send) })
}

func (h *Hub) moveClientToRoom(c *Client, room string) {
	if c == nil {
		return
	}
	h.detach(c)
	h.addClient(c, room)
}

// Encode builds the wire frame for typ/payload.
func Encode(typ string, payload any) ([]byte, error) {
	return json.Marshal(map[string]any{
		"type":      typ,
		"payload":   payload,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func (h *Hub) deliver(b Broadcast) {
	if b.Client != nil {
		if !h.rooms[b.Client.Room][b.Client] {
			return
		}
		if data, ok := h.encode(b); ok {
			h.push(b.Client, data)
		}
		return
	}

	clients := h.rooms[b.Room]
	if len(clients) == 0 {
		return
	}
	data, ok := h.encode(b)
	if !ok {
		return
	}
	for c := range clients {
		if b.To != "" && c.PlayerID != b.To {
			continue
		}
		h.push(c, data)
	}
}

func (h *Hub) encode(b Broadcast) ([]byte, bool) {
	data, err := Encode(b.Type, b.Payload)
	if err != nil {
		h.log.WithFields(logrus.Fields{"room": b.Room, "type": b.Type}).WithError(err).Error("ws broadcast marshal error")
		return nil, false
	}
	return data, true
}

func (h *Hub) push(c *Client, data []byte) {
	select {
	case c.Send <- data:
	default:
		// Backpressure / dead client.
		h.log.WithFields(logrus.Fields{"room": c.Room, "player_id": c.PlayerID}).Warn("dropping slow ws client")
		h.removeClient(c)
	}
}
