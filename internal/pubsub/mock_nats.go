package pubsub

import (
	"sync"

	"github.com/Billy-Davies-2/scorebored/internal/logger"
)

// MockNATSPubSub stands in for JetStream without a server. It keeps the last
// events in memory so a late subscriber can replay them, the way a stream
// consumer would.
type MockNATSPubSub struct {
	subject string
	subs    fanout

	mu          sync.RWMutex
	messages    []Event
	maxMessages int
}

// NewMockNATSPubSub creates a mock broker retaining up to maxMessages events.
// A non-positive maxMessages keeps 1000.
func NewMockNATSPubSub(subject string, maxMessages int) *MockNATSPubSub {
	if maxMessages <= 0 {
		maxMessages = 1000
	}
	logger.Debug("Using mock NATS pub/sub", "subject", subject)
	return &MockNATSPubSub{
		subject:     subject,
		subs:        fanout{name: "mock-nats", buffer: 100},
		maxMessages: maxMessages,
	}
}

// Publish stores the event and delivers it to every subscriber.
func (p *MockNATSPubSub) Publish(event Event) {
	p.mu.Lock()
	p.messages = append(p.messages, event)
	if len(p.messages) > p.maxMessages {
		p.messages = p.messages[len(p.messages)-p.maxMessages:]
	}
	p.mu.Unlock()

	p.subs.broadcast(event)
	logger.Debug("Mock NATS: Published event", "event_type", event.Type, "subject", p.subject)
}

func (p *MockNATSPubSub) Subscribe() chan Event { return p.subs.add() }

func (p *MockNATSPubSub) Unsubscribe(ch chan Event) { p.subs.remove(ch) }

// Messages returns the retained events, oldest first.
func (p *MockNATSPubSub) Messages() []Event {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Event, len(p.messages))
	copy(out, p.messages)
	return out
}

// ReplayMessages sends up to count of the most recent retained events to ch
// without blocking.
func (p *MockNATSPubSub) ReplayMessages(ch chan Event, count int) {
	msgs := p.Messages()
	start := max(len(msgs)-count, 0)

	for _, event := range msgs[start:] {
		select {
		case ch <- event:
		default:
			logger.Warn("Mock NATS: Channel full during replay, skipping event")
		}
	}
}

func (p *MockNATSPubSub) GetMessageCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.messages)
}

func (p *MockNATSPubSub) GetSubscriberCount() int { return p.subs.count() }

// Close closes every subscription.
func (p *MockNATSPubSub) Close() {
	p.subs.closeAll()
}
