package hermes

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Client is the event bus as Compass uses it: JSON publishes for analysis and
// cache events, plain subscriptions for control messages.
type Client interface {
	Publish(subject string, data interface{}) error
	Subscribe(subject string, handler func(subject string, data []byte)) error
	Close()
}

const (
	connectionName = "compass"
	drainTimeout   = 5 * time.Second
)

// NATSClient sends stream subjects through JetStream without waiting for the
// ack, so an analysis response never blocks on the bus. Control subjects and
// everything published while the stream is missing go over core NATS.
type NATSClient struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	stream bool
	logger *slog.Logger

	mu   sync.Mutex
	subs []*nats.Subscription
}

func NewNATSClient(ctx context.Context, url string, logger *slog.Logger) (*NATSClient, error) {
	nc, err := nats.Connect(url,
		nats.Name(connectionName),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("hermes disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("hermes reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	c := &NATSClient{conn: nc, js: js, logger: logger}
	if _, err := js.CreateOrUpdateStream(ctx, StreamConfig()); err != nil {
		logger.Warn("event stream unavailable, publishing without persistence", "stream", StreamName, "error", err)
	} else {
		c.stream = true
	}
	return c, nil
}

func (c *NATSClient) Publish(subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s: %w", subject, err)
	}
	if !c.stream || !InStream(subject) {
		return c.conn.Publish(subject, payload)
	}
	if _, err := c.js.PublishAsync(subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

func (c *NATSClient) Subscribe(subject string, handler func(string, []byte)) error {
	sub, err := c.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Subject, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
	return nil
}

// Close stops subscriptions and waits briefly for unacknowledged stream
// publishes before closing the connection.
func (c *NATSClient) Close() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()
	for _, sub := range subs {
		_ = sub.Unsubscribe()
	}

	if c.stream {
		select {
		case <-c.js.PublishAsyncComplete():
		case <-time.After(drainTimeout):
			c.logger.Warn("closing hermes with unacknowledged events", "pending", c.js.PublishAsyncPending())
		}
	}
	c.conn.Close()
}
