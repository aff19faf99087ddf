package talker

import (
	"bytes"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Billy-Davies-2/scorebored/internal/logger"
	"github.com/Billy-Davies-2/scorebored/internal/match"
	"github.com/Billy-Davies-2/scorebored/internal/pubsub"
)

func init() {
	logger.Init("error")
}

func TestWriterTalker(t *testing.T) {
	var buf bytes.Buffer
	tk := NewWriterTalker(&buf)

	tk.Say("Point Home Team", "O-fer!", "Change servers!")
	tk.Say("Deuce!")

	want := "Point Home Team\nO-fer!\nChange servers!\nDeuce!\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestPubSubTalker(t *testing.T) {
	ps := pubsub.New()
	ch := ps.Subscribe()
	tk := NewPubSubTalker(ps)
	at := time.Date(2026, 5, 2, 18, 30, 0, 0, time.UTC)
	tk.now = func() time.Time { return at }

	tk.Say("Home Team serves first.")

	select {
	case event := <-ch:
		if event.Type != pubsub.EventCommentary {
			t.Fatalf("expected %s, got %s", pubsub.EventCommentary, event.Type)
		}
		var c Commentary
		if err := event.Decode(&c); err != nil {
			t.Fatalf("Decode() failed: %v", err)
		}
		if !reflect.DeepEqual(c.Lines, []string{"Home Team serves first."}) || !c.At.Equal(at) {
			t.Errorf("unexpected commentary %+v", c)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for commentary event")
	}
}

func TestMultiKeepsOrderAndSkipsNil(t *testing.T) {
	var got []string
	first := match.TalkerFunc(func(p ...string) { got = append(got, "first:"+p[0]) })
	second := match.TalkerFunc(func(p ...string) { got = append(got, "second:"+p[0]) })

	Multi(first, nil, second).Say("Deuce!")

	want := []string{"first:Deuce!", "second:Deuce!"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestMatchSpeaksThroughMulti(t *testing.T) {
	var buf bytes.Buffer
	ps := pubsub.New()
	ch := ps.Subscribe()

	m := match.New(Multi(NewWriterTalker(&buf), NewPubSubTalker(ps), LogTalker{}))
	m.Introduction()

	if buf.String() != "Todays matchup: Home Team versus Away Team\nVolley for serve\n" {
		t.Errorf("unexpected writer output %q", buf.String())
	}
	if len(ch) != 1 {
		t.Errorf("expected one commentary event, got %d", len(ch))
	}
}

type fakeSender struct {
	mu   sync.Mutex
	sent []tgbotapi.MessageConfig
	err  error
	got  chan struct{}
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	f.mu.Unlock()
	f.got <- struct{}{}
	return tgbotapi.Message{}, f.err
}

func (f *fakeSender) messages() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tgbotapi.MessageConfig(nil), f.sent...)
}

func TestTelegramTalkerSendsOneMessagePerBatch(t *testing.T) {
	sender := &fakeSender{got: make(chan struct{}, 10)}
	tk := NewTelegramTalkerWithSender(sender, 42, 0)
	defer tk.Close()

	tk.Say("Point Away Team", "Advantage Away Team")
	tk.Say("Point Home Team", "Deuce!")
	tk.Say()

	for i := 0; i < 2; i++ {
		select {
		case <-sender.got:
		case <-time.After(time.Second):
			t.Fatalf("timeout waiting for message %d", i+1)
		}
	}

	msgs := sender.messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].ChatID != 42 || msgs[0].Text != "Point Away Team\nAdvantage Away Team" {
		t.Errorf("unexpected first message %+v", msgs[0])
	}
	if msgs[1].Text != "Point Home Team\nDeuce!" {
		t.Errorf("unexpected second message %q", msgs[1].Text)
	}
}

func TestTelegramTalkerSurvivesSendErrors(t *testing.T) {
	sender := &fakeSender{got: make(chan struct{}, 10), err: errors.New("429 Too Many Requests")}
	tk := NewTelegramTalkerWithSender(sender, 7, 0)

	tk.Say("Perfect game!")
	tk.Say("Volley for serve")

	for i := 0; i < 2; i++ {
		select {
		case <-sender.got:
		case <-time.After(time.Second):
			t.Fatalf("worker stopped after a send error")
		}
	}
	tk.Close()

	// Say after Close must not block or panic.
	tk.Say("late")
}
