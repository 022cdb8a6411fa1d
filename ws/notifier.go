package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"coplayers/dataset"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

type Client struct {
	conn *websocket.Conn
	send chan []byte
}

// Notifier pushes a data_reloaded message to every connected browser when the
// source CSVs change on disk or a manual refresh happens; clients respond by
// re-running their current view.
type Notifier struct {
	clients map[*Client]bool
	source  *dataset.Service
	poll    time.Duration
	mu      sync.RWMutex
}

func NewNotifier(source *dataset.Service, poll time.Duration) *Notifier {
	return &Notifier{
		clients: make(map[*Client]bool),
		source:  source,
		poll:    poll,
	}
}

// Run polls the source fingerprint until ctx is cancelled. The dataset cache
// invalidates itself on the next load; the notifier's only job is telling
// browsers that a reload is worth doing.
func (n *Notifier) Run(ctx context.Context) {
	ticker := time.NewTicker(n.poll)
	defer ticker.Stop()

	last := n.source.Fingerprint()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fp := n.source.Fingerprint()
			if fp != last {
				last = fp
				log.Printf("Source data changed, notifying %d client(s)", n.ClientCount())
				n.Broadcast("data_reloaded", nil)
			}
		}
	}
}

func (n *Notifier) HandleConnection(conn *websocket.Conn) {
	client := &Client{
		conn: conn,
		send: make(chan []byte, 16),
	}

	n.mu.Lock()
	n.clients[client] = true
	n.mu.Unlock()

	go n.writePump(client)
	go n.readPump(client)
}

func (n *Notifier) Broadcast(msgType string, payload interface{}) {
	data, err := json.Marshal(OutgoingMessage{Type: msgType, Payload: payload})
	if err != nil {
		log.Printf("Failed to marshal notification: %v", err)
		return
	}

	n.mu.RLock()
	defer n.mu.RUnlock()

	for client := range n.clients {
		select {
		case client.send <- data:
		default:
			// Client's send channel is full, skip
		}
	}
}

func (n *Notifier) ClientCount() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.clients)
}

func (n *Notifier) removeClient(client *Client) {
	n.mu.Lock()
	if _, ok := n.clients[client]; ok {
		delete(n.clients, client)
		close(client.send)
	}
	n.mu.Unlock()
}

// readPump only watches for disconnects; browsers never send anything
// meaningful on this channel.
func (n *Notifier) readPump(client *Client) {
	defer func() {
		n.removeClient(client)
		client.conn.Close()
	}()

	client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetReadLimit(maxMessageSize)
	client.conn.SetPongHandler(func(string) error {
		client.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
	}
}

func (n *Notifier) writePump(client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
