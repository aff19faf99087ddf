package pubsub

import (
	"sync"
	"testing"
	"time"

	"github.com/Billy-Davies-2/scorebored/internal/logger"
)

func init() {
	logger.Init()
}

func newEmbedded(t *testing.T, opts EmbeddedNATSOptions) *EmbeddedNATSPubSub {
	t.Helper()
	opts.StoreDir = t.TempDir()
	ps, err := NewEmbeddedNATSPubSub(opts)
	if err != nil {
		t.Fatalf("Failed to create embedded NATS: %v", err)
	}
	return ps
}

func TestNewEmbeddedNATSPubSub(t *testing.T) {
	ps := newEmbedded(t, DefaultEmbeddedNATSOptions())
	defer ps.Close()

	if ps.server == nil || ps.nc == nil || ps.js == nil {
		t.Fatal("server, connection and JetStream context should be set")
	}
	if ps.GetServerURL() == "" {
		t.Error("server URL should not be empty")
	}
	if ps.subject != DefaultSubject {
		t.Errorf("expected subject %s, got %s", DefaultSubject, ps.subject)
	}
}

func TestEmbeddedNATSCustomOptions(t *testing.T) {
	ps := newEmbedded(t, EmbeddedNATSOptions{
		Port:       0,
		Subject:    "court1.events",
		StreamName: "COURT1",
	})
	defer ps.Close()

	if ps.subject != "court1.events" {
		t.Errorf("expected subject court1.events, got %s", ps.subject)
	}
	if _, err := ps.js.StreamInfo("COURT1"); err != nil {
		t.Errorf("stream COURT1 should exist: %v", err)
	}
}

func TestEmbeddedNATSPublishAndReceive(t *testing.T) {
	ps := newEmbedded(t, DefaultEmbeddedNATSOptions())
	defer ps.Close()

	ch1 := ps.Subscribe()
	ch2 := ps.Subscribe()
	if ps.SubscriberCount() != 2 {
		t.Errorf("expected 2 subscribers, got %d", ps.SubscriberCount())
	}

	event, err := NewEvent(EventScoreUpdate, scorePayload{Left: 11, Right: 9})
	if err != nil {
		t.Fatalf("NewEvent() failed: %v", err)
	}
	ps.Publish(event)

	for i, ch := range []chan Event{ch1, ch2} {
		got := receive(t, ch, 2*time.Second)
		var body scorePayload
		if err := got.Decode(&body); err != nil {
			t.Fatalf("subscriber %d: Decode() failed: %v", i, err)
		}
		if got.Type != EventScoreUpdate || body.Left != 11 || body.Right != 9 {
			t.Errorf("subscriber %d: unexpected event %s %+v", i, got.Type, body)
		}
	}
}

func TestEmbeddedNATSConcurrentPublish(t *testing.T) {
	ps := newEmbedded(t, DefaultEmbeddedNATSOptions())
	defer ps.Close()

	ch := ps.Subscribe()

	const publishers, perPublisher = 5, 10
	var wg sync.WaitGroup
	for i := 0; i < publishers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perPublisher; j++ {
				ps.Publish(Event{Type: EventCommentary})
			}
		}()
	}
	wg.Wait()

	received := 0
	timeout := time.After(5 * time.Second)
	for received < publishers*perPublisher {
		select {
		case <-ch:
			received++
		case <-timeout:
			t.Fatalf("received %d/%d events before timeout", received, publishers*perPublisher)
		}
	}
}

func TestEmbeddedNATSDurableConsumer(t *testing.T) {
	ps := newEmbedded(t, DefaultEmbeddedNATSOptions())
	defer ps.Close()

	got := make(chan Event, 1)
	if err := ps.SubscribeJetStream("display", func(e Event) { got <- e }); err != nil {
		t.Fatalf("SubscribeJetStream() failed: %v", err)
	}

	ps.Publish(Event{Type: EventMatchStarted})
	if e := receive(t, got, 2*time.Second); e.Type != EventMatchStarted {
		t.Errorf("expected %s, got %s", EventMatchStarted, e.Type)
	}
}

func TestEmbeddedNATSClose(t *testing.T) {
	ps := newEmbedded(t, DefaultEmbeddedNATSOptions())
	ch := ps.Subscribe()

	ps.Close()

	if _, ok := <-ch; ok {
		t.Error("channel should be closed after Close()")
	}
}

func TestDefaultEmbeddedNATSOptions(t *testing.T) {
	opts := DefaultEmbeddedNATSOptions()

	if opts.Port != -1 {
		t.Errorf("expected port -1 (random), got %d", opts.Port)
	}
	if opts.Subject != DefaultSubject || opts.StreamName != DefaultStreamName {
		t.Errorf("unexpected defaults %+v", opts)
	}
}
