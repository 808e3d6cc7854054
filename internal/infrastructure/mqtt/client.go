package mqtt

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/Thaaan184/admin-dashboard-publicver/internal/infrastructure/config"
	"github.com/Thaaan184/admin-dashboard-publicver/internal/infrastructure/logging"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
)

// ErrConnectionFailed indicates the broker could not be reached.
var ErrConnectionFailed = errors.New("mqtt connection failed")

// Client is a publish-only MQTT connection for broadcasting dashboard
// events.
//
// All methods are safe for concurrent use. Publishing never blocks the
// caller's request path: delivery waits happen on a background
// goroutine and failures are logged, not returned.
type Client struct {
	client pahomqtt.Client
	cfg    config.EventsConfig
	logger *logging.Logger

	connMu    sync.RWMutex
	connected bool
}

// Connect establishes a connection to the broker with auto-reconnect.
func Connect(cfg config.EventsConfig, logger *logging.Logger) (*Client, error) {
	scheme := "tcp"
	if cfg.TLS {
		scheme = "ssl"
	}

	opts := pahomqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("%s://%s:%d", scheme, cfg.Host, cfg.Port)).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetOrderMatters(false)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	c := &Client{
		cfg:    cfg,
		logger: logger.With("component", "mqtt"),
	}

	opts.SetOnConnectHandler(func(_ pahomqtt.Client) {
		c.setConnected(true)
		c.logger.Info("broker connected", "host", cfg.Host, "port", cfg.Port)
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		c.setConnected(false)
		c.logger.Warn("broker connection lost", "error", err)
	})

	c.client = pahomqtt.NewClient(opts)
	token := c.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, connectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	c.setConnected(true)
	return c, nil
}

// Publish sends a JSON payload to a topic, fire and forget.
func (c *Client) Publish(topic string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		c.logger.Error("event payload not serialisable", "topic", topic, "error", err)
		return
	}

	token := c.client.Publish(topic, byte(c.cfg.QoS), false, data) //nolint:gosec // QoS validated by config
	go func() {
		if !token.WaitTimeout(publishTimeout) {
			c.logger.Warn("event publish timed out", "topic", topic)
			return
		}
		if err := token.Error(); err != nil {
			c.logger.Warn("event publish failed", "topic", topic, "error", err)
		}
	}()
}

// IsConnected reports the current broker connection state.
func (c *Client) IsConnected() bool {
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.connected
}

// Close disconnects from the broker, allowing in-flight messages to
// complete.
func (c *Client) Close() {
	c.client.Disconnect(uint(publishTimeout.Milliseconds())) //nolint:gosec // constant fits uint
	c.setConnected(false)
}

func (c *Client) setConnected(state bool) {
	c.connMu.Lock()
	c.connected = state
	c.connMu.Unlock()
}
