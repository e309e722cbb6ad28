package cloud

import "time"

// Message records one published event.
type Message struct {
	Event string
	Data  string
}

// FakeClient records published events and lets tests deliver inbound
// messages to registered handlers.
type FakeClient struct {
	// Connected controls IsConnected and is toggled by Connect/Disconnect.
	Connected bool

	// ConnectError, if set, is returned by Connect.
	ConnectError error

	// PublishError, if set, is returned by Publish.
	PublishError error

	// Published contains every published event in order.
	Published []Message

	// Handlers holds registered subscriptions by topic.
	Handlers map[string]Handler

	// ConnectCalls and DisconnectCalls count link transitions.
	ConnectCalls    int
	DisconnectCalls int

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeClient creates a FakeClient.
func NewFakeClient() *FakeClient {
	return &FakeClient{Handlers: make(map[string]Handler)}
}

// Connect marks the link up unless ConnectError is set.
func (f *FakeClient) Connect(timeout time.Duration) error {
	f.ConnectCalls++
	if f.ConnectError != nil {
		return f.ConnectError
	}
	f.Connected = true
	return nil
}

// Disconnect marks the link down.
func (f *FakeClient) Disconnect(timeout time.Duration) error {
	f.DisconnectCalls++
	f.Connected = false
	return nil
}

// IsConnected reports the fake link state.
func (f *FakeClient) IsConnected() bool {
	return f.Connected
}

// Publish records the event.
func (f *FakeClient) Publish(event, data string) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	f.Published = append(f.Published, Message{Event: event, Data: data})
	return nil
}

// Subscribe registers the handler.
func (f *FakeClient) Subscribe(topic string, h Handler) error {
	f.Handlers[topic] = h
	return nil
}

// Close marks the client as closed.
func (f *FakeClient) Close() error {
	f.Closed = true
	return nil
}

// Deliver invokes the handler registered for topic, as the broker would.
func (f *FakeClient) Deliver(topic, payload string) bool {
	h, ok := f.Handlers[topic]
	if !ok {
		return false
	}
	h(payload)
	return true
}

// EventData returns the data of every published message with the given
// event name.
func (f *FakeClient) EventData(event string) []string {
	var out []string
	for _, m := range f.Published {
		if m.Event == event {
			out = append(out, m.Data)
		}
	}
	return out
}
