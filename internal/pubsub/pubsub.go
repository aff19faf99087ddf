package pubsub

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/Billy-Davies-2/scorebored/internal/logger"
)

// Scoreboard event types.
const (
	EventCommentary   = "commentary"
	EventScoreUpdate  = "score:update"
	EventMatchStarted = "match:started"
	EventMatchEnded   = "match:ended"
	EventMatchReset   = "match:reset"
	EventRosterUpdate = "roster:update"
)

const (
	DefaultSubject    = "scoreboard.events"
	DefaultStreamName = "SCOREBOARD_EVENTS"
)

// Event is one message on the scoreboard bus. Payload holds the JSON
// encoding of the event body.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEvent encodes payload into an Event of the given type. A nil payload
// produces an event without a body.
func NewEvent(typ string, payload any) (Event, error) {
	if payload == nil {
		return Event{Type: typ}, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("encode %s payload: %w", typ, err)
	}
	return Event{Type: typ, Payload: data}, nil
}

// Decode unmarshals the event payload into v.
func (e Event) Decode(v any) error {
	if len(e.Payload) == 0 {
		return fmt.Errorf("event %s has no payload", e.Type)
	}
	return json.Unmarshal(e.Payload, v)
}

// Broker is anything events can be published to and received from.
type Broker interface {
	Publish(Event)
	Subscribe() chan Event
	Unsubscribe(chan Event)
}

// Upstream is a broker that carries events between instances (e.g. NATS).
type Upstream = Broker

// PubSub is the in-process broker handed to the scoreboard service and the
// HTTP and gRPC servers.
type PubSub struct {
	subs     fanout
	upstream Upstream
}

// New creates a PubSub that delivers locally only.
func New() *PubSub {
	return &PubSub{subs: fanout{name: "pubsub", buffer: 10}}
}

// NewWithUpstream creates a PubSub bridged to an upstream broker. Publish
// goes to the upstream, which echoes every event back to local subscribers.
func NewWithUpstream(upstream Upstream) *PubSub {
	ps := &PubSub{
		subs:     fanout{name: "pubsub", buffer: 10},
		upstream: upstream,
	}

	go func() {
		ch := upstream.Subscribe()
		logger.Debug("PubSub: Subscribed to upstream, waiting for events")
		for event := range ch {
			logger.Debug("PubSub: Received event from upstream, forwarding to local", "type", event.Type)
			ps.subs.broadcast(event)
		}
		logger.Debug("PubSub: Upstream channel closed")
	}()

	return ps
}

func (ps *PubSub) Subscribe() chan Event {
	return ps.subs.add()
}

func (ps *PubSub) Unsubscribe(ch chan Event) {
	ps.subs.remove(ch)
}

// Publish sends an event to every subscriber, through the upstream when one
// is configured.
func (ps *PubSub) Publish(event Event) {
	if ps.upstream != nil {
		logger.Debug("PubSub: Forwarding to upstream", "type", event.Type)
		ps.upstream.Publish(event)
		return
	}
	logger.Debug("PubSub: Publishing locally", "type", event.Type)
	ps.subs.broadcast(event)
}

// PublishPayload encodes payload and publishes it. Encoding failures are
// logged and the event is dropped.
func PublishPayload(b Broker, typ string, payload any) {
	event, err := NewEvent(typ, payload)
	if err != nil {
		logger.Error("Failed to encode event", "type", typ, "error", err)
		return
	}
	b.Publish(event)
}

// fanout is the subscriber list shared by every broker implementation.
// A full subscriber channel misses the event.
type fanout struct {
	name   string
	buffer int

	mu          sync.RWMutex
	subscribers []chan Event
}

func (f *fanout) add() chan Event {
	ch := make(chan Event, f.buffer)

	f.mu.Lock()
	f.subscribers = append(f.subscribers, ch)
	n := len(f.subscribers)
	f.mu.Unlock()

	logger.Debug("New subscriber added", "broker", f.name, "total_subscribers", n)
	return ch
}

func (f *fanout) remove(ch chan Event) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, sub := range f.subscribers {
		if sub == ch {
			f.subscribers = append(f.subscribers[:i], f.subscribers[i+1:]...)
			close(ch)
			logger.Debug("Subscriber removed", "broker", f.name, "remaining_subscribers", len(f.subscribers))
			return
		}
	}
}

// broadcast holds the read lock while sending so a concurrent remove or
// closeAll cannot close a channel mid-send. Sends never block.
func (f *fanout) broadcast(event Event) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for _, ch := range f.subscribers {
		select {
		case ch <- event:
		default:
			logger.Warn("Skipping slow subscriber", "broker", f.name, "type", event.Type)
		}
	}
}

func (f *fanout) count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subscribers)
}

func (f *fanout) closeAll() {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, ch := range f.subscribers {
		close(ch)
	}
	f.subscribers = nil
}
