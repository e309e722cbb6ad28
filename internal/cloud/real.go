package cloud

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// publishWait bounds how long a single publish waits on the broker.
const publishWait = 5 * time.Second

// RealClient talks to an actual MQTT broker.
type RealClient struct {
	client paho.Client
	prefix string
	meter  *Meter

	mu   sync.Mutex
	subs map[string]Handler
}

// NewRealClient creates a client for the given broker. prefix is the
// device-scoped topic root for outbound events (typically
// "wellhead/<deviceID>"). The connection is not established until Connect.
func NewRealClient(broker, clientID, prefix string) *RealClient {
	c := &RealClient{
		prefix: prefix,
		meter:  NewMeter(time.Second),
		subs:   make(map[string]Handler),
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetOnConnectHandler(c.resubscribe)

	c.client = paho.NewClient(opts)
	return c
}

// Connect brings the link up within the timeout.
func (c *RealClient) Connect(timeout time.Duration) error {
	token := c.client.Connect()
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("connect timeout after %v", timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("connect to broker: %w", err)
	}
	return nil
}

// Disconnect tears the link down.
func (c *RealClient) Disconnect(timeout time.Duration) error {
	c.client.Disconnect(uint(timeout / time.Millisecond))
	return nil
}

// IsConnected reports whether the link is up.
func (c *RealClient) IsConnected() bool {
	return c.client.IsConnectionOpen()
}

// Publish sends data on the named event channel, metered to 1 msg/s.
func (c *RealClient) Publish(event, data string) error {
	c.meter.Wait()

	// QoS 1: a report that the broker never saw cannot be acknowledged,
	// and the webhook-wait timeout is the backstop either way.
	token := c.client.Publish(c.prefix+"/"+event, 1, false, data)
	if !token.WaitTimeout(publishWait) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", event, err)
	}
	return nil
}

// Subscribe registers a handler for an inbound topic. Subscriptions are
// replayed on reconnect.
func (c *RealClient) Subscribe(topic string, h Handler) error {
	c.mu.Lock()
	c.subs[topic] = h
	c.mu.Unlock()

	if !c.client.IsConnectionOpen() {
		// Deferred to the connect handler.
		return nil
	}
	return c.subscribe(topic, h)
}

func (c *RealClient) subscribe(topic string, h Handler) error {
	token := c.client.Subscribe(topic, 1, func(_ paho.Client, msg paho.Message) {
		h(string(msg.Payload()))
	})
	if !token.WaitTimeout(publishWait) {
		return fmt.Errorf("subscribe timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	return nil
}

func (c *RealClient) resubscribe(_ paho.Client) {
	c.mu.Lock()
	subs := make(map[string]Handler, len(c.subs))
	for t, h := range c.subs {
		subs[t] = h
	}
	c.mu.Unlock()

	for t, h := range subs {
		if err := c.subscribe(t, h); err != nil {
			log.Printf("cloud: resubscribe %s: %v", t, err)
		}
	}
}

// Close releases the client.
func (c *RealClient) Close() error {
	c.client.Disconnect(1000)
	return nil
}
