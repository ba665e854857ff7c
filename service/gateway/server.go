package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"VConnct/logger"
	errs "VConnct/tools/errs"
	"VConnct/tools/ids"
)

type Config struct {
	SendQueueSize  int           // per-connection outbound buffer
	AuthTimeout    time.Duration // hard deadline on handshake authentication
	WriteTimeout   time.Duration
	PingInterval   time.Duration
	PongTimeout    time.Duration // read deadline, refreshed by pongs
	MaxMessageSize int64
}

func (c *Config) norm() {
	if c.SendQueueSize <= 0 {
		c.SendQueueSize = 256
	}
	if c.AuthTimeout <= 0 {
		c.AuthTimeout = 5 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 5 * time.Second
	}
	if c.PingInterval <= 0 {
		c.PingInterval = 25 * time.Second
	}
	if c.PongTimeout <= 0 {
		c.PongTimeout = 75 * time.Second
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = 4096
	}
}

// Gateway owns the presence registry: it admits connections, broadcasts the
// online set on every connect/disconnect, and delivers targeted events for
// the REST layer.
type Gateway struct {
	cfg       Config
	validator *SessionValidator
	reg       *Registry
	upgrader  websocket.Upgrader
}

func New(cfg Config, validator *SessionValidator) *Gateway {
	cfg.norm()
	return &Gateway{
		cfg:       cfg,
		validator: validator,
		reg:       NewRegistry(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// cross-origin is handled by the cookie flags + CORS layer
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HandleWS runs the per-connection state machine: authenticate, admit,
// serve, and on disconnect remove the registry entry and re-broadcast.
// A failed authentication never touches the registry.
func (g *Gateway) HandleWS(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), g.cfg.AuthTimeout)
	defer cancel()

	ident, err := g.validator.Validate(ctx, c.GetHeader("Cookie"))
	if err != nil {
		logger.Infof("[gateway] connection rejected: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"message": errs.Msg(err)})
		return
	}

	ws, err := g.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Infof("[gateway] upgrade failed: %v", err)
		return
	}

	cl := newClient(ids.GenerateString(), ident, ws, g.cfg.SendQueueSize)

	// last write wins: a fresh connection for the same user evicts the old
	// socket; its disconnect will be a no-op in the registry
	if prev := g.reg.bind(cl); prev != nil {
		logger.Infof("[gateway] superseding connection user=%s old=%s new=%s", ident.ID, prev.ConnID, cl.ConnID)
		prev.close()
	}

	go cl.writeLoop(g.cfg.WriteTimeout, g.cfg.PingInterval)

	logger.Infof("[gateway] user connected: %s (ID: %s) conn=%s", ident.FullName, ident.ID, cl.ConnID)
	g.broadcastPresence()

	g.readLoop(cl)

	if g.reg.unbind(cl.Identity.ID, cl.ConnID) {
		logger.Infof("[gateway] user disconnected: %s (ID: %s)", ident.FullName, ident.ID)
		g.broadcastPresence()
	}
	cl.close()
}

// readLoop keeps the read side alive for close/ping-pong handling; inbound
// application frames are not part of the protocol and are discarded.
func (g *Gateway) readLoop(cl *Client) {
	cl.ws.SetReadLimit(g.cfg.MaxMessageSize)
	_ = cl.ws.SetReadDeadline(time.Now().Add(g.cfg.PongTimeout))
	cl.ws.SetPongHandler(func(string) error {
		return cl.ws.SetReadDeadline(time.Now().Add(g.cfg.PongTimeout))
	})
	for {
		if _, _, err := cl.ws.ReadMessage(); err != nil {
			return
		}
	}
}

// broadcastPresence pushes the full online-id set to every active
// connection. Ids and targets come from one registry snapshot.
func (g *Gateway) broadcastPresence() {
	online, clients := g.reg.snapshot()
	payload, err := json.Marshal(OnlineUsersEvent{Type: EventOnlineUsers, UserIDs: online})
	if err != nil {
		logger.Errorf("[gateway] marshal presence: %v", err)
		return
	}
	for _, cl := range clients {
		if !cl.enqueue(payload) {
			logger.Warnf("[gateway] queue full, presence dropped user=%s conn=%s", cl.Identity.ID, cl.ConnID)
		}
	}
}

// Deliver sends an event to the user's active connection, if any. Best
// effort: an offline recipient is a defined no-op, the message stays
// available through the persisted store.
func (g *Gateway) Deliver(userID string, event any) {
	cl, ok := g.reg.lookup(userID)
	if !ok {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Errorf("[gateway] marshal event for user=%s: %v", userID, err)
		return
	}
	if !cl.enqueue(payload) {
		logger.Warnf("[gateway] queue full, event dropped user=%s conn=%s", userID, cl.ConnID)
	}
}

// LookupConnection reports the recipient's current connection id, if online.
func (g *Gateway) LookupConnection(userID string) (string, bool) {
	cl, ok := g.reg.lookup(userID)
	if !ok {
		return "", false
	}
	return cl.ConnID, true
}

// OnlineUserIDs returns the current online set (sorted).
func (g *Gateway) OnlineUserIDs() []string {
	online, _ := g.reg.snapshot()
	return online
}

// Close tears down every active connection; used on process shutdown.
func (g *Gateway) Close() {
	_, clients := g.reg.snapshot()
	for _, cl := range clients {
		cl.close()
	}
}
