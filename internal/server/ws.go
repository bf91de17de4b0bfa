package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ayusman/neoncake/internal/render"
)

const (
	writeWait      = 2 * time.Second
	clientQueueLen = 4
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// Message types sent to viewers.
const (
	MessageHello = "hello"
	MessageFrame = "frame"
)

// HelloMessage is the first message a viewer receives. Colors never change,
// so they are sent once.
type HelloMessage struct {
	Type   string    `json:"type"`
	ID     string    `json:"id"`
	Count  int       `json:"count"`
	Colors []float32 `json:"colors"`
}

// LightMessage describes one light in a frame.
type LightMessage struct {
	Position  [3]float64 `json:"position"`
	Color     [3]float64 `json:"color"`
	Intensity float64    `json:"intensity"`
}

// FrameMessage is one rendered frame.
type FrameMessage struct {
	Type      string         `json:"type"`
	Number    uint64         `json:"n"`
	Timestamp int64          `json:"t"`
	Openness  float64        `json:"openness"`
	Tracking  bool           `json:"tracking"`
	Rotation  [3]float64     `json:"rotation"`
	FOV       float64        `json:"fov"`
	Lights    []LightMessage `json:"lights"`
	Positions []float32      `json:"positions"`
}

type hubClient struct {
	id    uuid.UUID
	conn  *websocket.Conn
	send  chan []byte
	hello bool
}

// FrameHub is a renderer that streams frames to browser viewers over
// WebSocket. Slow viewers drop frames rather than stall the render loop.
type FrameHub struct {
	every   uint64
	mu      sync.RWMutex
	clients map[uuid.UUID]*hubClient
	colors  []float32
	closed  bool
}

// NewFrameHub returns a hub that sends every nth frame. n below 1 sends all.
func NewFrameHub(n int) *FrameHub {
	return &FrameHub{
		every:   uint64(max(n, 1)),
		clients: make(map[uuid.UUID]*hubClient),
	}
}

// Clients returns the number of connected viewers.
func (h *FrameHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and registers the viewer until it disconnects.
func (h *FrameHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	c := &hubClient{
		id:   uuid.New(),
		conn: conn,
		send: make(chan []byte, clientQueueLen),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c.id] = c
	if h.colors != nil {
		h.greet(c)
	}
	h.mu.Unlock()
	log.Printf("Viewer %s connected", c.id)

	go c.writeLoop()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.remove(c)
	log.Printf("Viewer %s disconnected", c.id)
}

func (h *FrameHub) remove(c *hubClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.send)
	}
}

func (c *hubClient) writeLoop() {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}

// greet queues the hello message. The caller holds h.mu.
func (h *FrameHub) greet(c *hubClient) {
	msg, err := json.Marshal(HelloMessage{
		Type:   MessageHello,
		ID:     c.id.String(),
		Count:  len(h.colors) / 3,
		Colors: h.colors,
	})
	if err != nil {
		log.Printf("encode hello: %v", err)
		return
	}
	select {
	case c.send <- msg:
		c.hello = true
	default:
	}
}

// Draw sends f to every viewer. It never blocks on the network.
func (h *FrameHub) Draw(f *render.Frame) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.colors == nil {
		h.colors = append([]float32(nil), f.Colors...)
	}
	if len(h.clients) == 0 || f.Number%h.every != 0 {
		return nil
	}

	msg, err := json.Marshal(newFrameMessage(f))
	if err != nil {
		log.Printf("encode frame %d: %v", f.Number, err)
		return nil
	}

	for _, c := range h.clients {
		if !c.hello {
			h.greet(c)
			if !c.hello {
				continue
			}
		}
		select {
		case c.send <- msg:
		default:
			// Viewer is behind; it catches up on a later frame.
		}
	}
	return nil
}

func newFrameMessage(f *render.Frame) FrameMessage {
	m := FrameMessage{
		Type:      MessageFrame,
		Number:    f.Number,
		Timestamp: f.Time.UnixMilli(),
		Openness:  f.Openness,
		Tracking:  f.Tracking,
		Rotation:  [3]float64{f.Rotation[0], f.Rotation[1], f.Rotation[2]},
		FOV:       f.Camera.FOV,
		Positions: f.Positions,
	}
	for _, l := range f.Lights {
		m.Lights = append(m.Lights, LightMessage{
			Position:  [3]float64{l.Position[0], l.Position[1], l.Position[2]},
			Color:     [3]float64{l.Color.R, l.Color.G, l.Color.B},
			Intensity: l.Intensity,
		})
	}
	return m
}

// Resize is a no-op; each viewer sizes its own canvas.
func (h *FrameHub) Resize(width, height int) {}

// Close disconnects every viewer and rejects new ones.
func (h *FrameHub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, c := range h.clients {
		delete(h.clients, id)
		close(c.send)
	}
	return nil
}
