package gateway

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"VConnct/logger"
)

// Client is one authenticated connection: identity plus socket plus a
// buffered outbound queue drained by a single writer goroutine.
type Client struct {
	ConnID   string
	Identity *Identity

	ws   *websocket.Conn
	send chan []byte

	once sync.Once
	done chan struct{}
}

func newClient(connID string, ident *Identity, ws *websocket.Conn, queueSize int) *Client {
	return &Client{
		ConnID:   connID,
		Identity: ident,
		ws:       ws,
		send:     make(chan []byte, queueSize),
		done:     make(chan struct{}),
	}
}

// enqueue hands a frame to the writer without blocking; reports false when
// the queue is full (slow consumer) and the frame is dropped.
func (c *Client) enqueue(data []byte) bool {
	select {
	case c.send <- data:
		return true
	case <-c.done:
		return false
	default:
		return false
	}
}

func (c *Client) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.ws.Close()
	})
}

// writeLoop is the single writer for the socket: outbound frames plus
// keepalive pings. Any write error tears the connection down; the read loop
// then observes the closed socket and finishes the disconnect transition.
func (c *Client) writeLoop(writeTimeout, pingInterval time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	defer c.close()

	for {
		select {
		case data := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				logger.Debugf("[gateway] write failed conn=%s: %v", c.ConnID, err)
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
