package pubsub

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Billy-Davies-2/scorebored/internal/logger"
)

// jetStream is the JetStream plumbing shared by NATSPubSub and
// EmbeddedNATSPubSub. Every published event travels through the stream and
// is delivered to local subscribers by the stream subscription.
type jetStream struct {
	nc      *nats.Conn
	js      nats.JetStreamContext
	sub     *nats.Subscription
	subject string
	subs    fanout
}

func newJetStream(nc *nats.Conn, subject, stream string, storage nats.StorageType, maxAge time.Duration, name string) (*jetStream, error) {
	js, err := nc.JetStream()
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	if _, err := js.StreamInfo(stream); err != nil {
		_, err = js.AddStream(&nats.StreamConfig{
			Name:     stream,
			Subjects: []string{subject},
			Storage:  storage,
			MaxAge:   maxAge,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create stream %s: %w", stream, err)
		}
		logger.Info("JetStream stream created", "stream", stream, "subject", subject)
	}

	j := &jetStream{
		nc:      nc,
		js:      js,
		subject: subject,
		subs:    fanout{name: name, buffer: 100},
	}

	j.sub, err = js.Subscribe(subject, j.receive, nats.ManualAck(), nats.DeliverNew())
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}
	logger.Debug("Subscribed to JetStream", "subject", subject)
	return j, nil
}

func (j *jetStream) receive(msg *nats.Msg) {
	var event Event
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		logger.Error("Failed to unmarshal event from JetStream", "error", err)
		_ = msg.Term()
		return
	}
	j.subs.broadcast(event)
	_ = msg.Ack()
}

func (j *jetStream) Publish(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal event", "error", err, "event_type", event.Type)
		return
	}
	if _, err := j.js.Publish(j.subject, data); err != nil {
		logger.Error("Failed to publish to NATS", "error", err, "subject", j.subject, "event_type", event.Type)
		return
	}
	logger.Debug("Published event to NATS", "event_type", event.Type, "subject", j.subject)
}

func (j *jetStream) Subscribe() chan Event { return j.subs.add() }

func (j *jetStream) Unsubscribe(ch chan Event) { j.subs.remove(ch) }

// SubscribeJetStream creates a durable consumer so another process can
// follow the scoreboard without missing events while it is down.
func (j *jetStream) SubscribeJetStream(consumerName string, handler func(Event)) error {
	_, err := j.js.Subscribe(j.subject, func(msg *nats.Msg) {
		var event Event
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			logger.Error("Failed to unmarshal event", "error", err, "consumer", consumerName)
			_ = msg.Nak()
			return
		}
		handler(event)
		_ = msg.Ack()
	}, nats.Durable(consumerName), nats.ManualAck())
	return err
}

// SubscriberCount returns the number of local subscribers.
func (j *jetStream) SubscriberCount() int { return j.subs.count() }

func (j *jetStream) close() {
	if j.sub != nil {
		_ = j.sub.Unsubscribe()
	}
	j.subs.closeAll()
	j.nc.Close()
}

// NATSPubSub is a broker backed by an external NATS JetStream server.
type NATSPubSub struct {
	*jetStream
}

// NewNATSPubSub connects to natsURL and binds to the given subject and
// stream, creating the stream with file storage when it does not exist.
func NewNATSPubSub(natsURL, subject, streamName string) (*NATSPubSub, error) {
	if streamName == "" {
		streamName = DefaultStreamName
	}
	nc, err := nats.Connect(natsURL, nats.Name("scorebored"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	// Keep a day of events so late joiners can replay the match.
	j, err := newJetStream(nc, subject, streamName, nats.FileStorage, 24*time.Hour, "nats")
	if err != nil {
		nc.Close()
		return nil, err
	}
	return &NATSPubSub{jetStream: j}, nil
}

// Close drops the subscription, closes local subscribers and disconnects.
func (p *NATSPubSub) Close() {
	p.close()
}
