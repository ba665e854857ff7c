package natsx

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"

	"VConnct/logger"
)

// Subjects published by the API node.
const SubjectMessagePersisted = "vconnct.message.persisted"

type Config struct {
	Servers       []string
	Name          string
	ReconnectWait time.Duration
	Timeout       time.Duration
}

// Client is a thin core-NATS publisher. Realtime delivery to sockets never
// depends on it; it only mirrors persisted-message events for downstream
// consumers (push notifications, analytics).
//
// A nil *Client is valid and drops every publish.
type Client struct {
	nc *nats.Conn
}

func Dial(cfg Config) (*Client, error) {
	if len(cfg.Servers) == 0 {
		return nil, errors.New("nats servers missing")
	}
	if cfg.ReconnectWait == 0 {
		cfg.ReconnectWait = 500 * time.Millisecond
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 3 * time.Second
	}
	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.ReconnectJitter(100*time.Millisecond, 500*time.Millisecond),
		nats.Timeout(cfg.Timeout),
	}
	nc, err := nats.Connect(strings.Join(cfg.Servers, ","), opts...)
	if err != nil {
		return nil, errors.Wrap(err, "connect nats")
	}
	return &Client{nc: nc}, nil
}

// PublishJSON is fire-and-forget; failures are logged, never propagated to
// the request path.
func (c *Client) PublishJSON(subject string, v any) {
	if c == nil || c.nc == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		logger.Errorf("[natsx] marshal %s: %v", subject, err)
		return
	}
	if err := c.nc.Publish(subject, data); err != nil {
		logger.Warnf("[natsx] publish %s: %v", subject, err)
	}
}

func (c *Client) Close() {
	if c == nil || c.nc == nil {
		return
	}
	if err := c.nc.Drain(); err != nil {
		c.nc.Close()
	}
}
