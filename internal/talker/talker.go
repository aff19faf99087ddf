// Package talker holds the commentary sinks a match speaks through.
package talker

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/Billy-Davies-2/scorebored/internal/logger"
	"github.com/Billy-Davies-2/scorebored/internal/match"
	"github.com/Billy-Davies-2/scorebored/internal/pubsub"
)

// LogTalker writes each batch to the service log.
type LogTalker struct{}

func (LogTalker) Say(phrases ...string) {
	logger.Info("Commentary", "lines", phrases)
}

// WriterTalker prints one phrase per line.
type WriterTalker struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterTalker(w io.Writer) *WriterTalker {
	return &WriterTalker{w: w}
}

func (t *WriterTalker) Say(phrases ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, p := range phrases {
		if _, err := fmt.Fprintln(t.w, p); err != nil {
			logger.Warn("Failed to write commentary", "error", err)
			return
		}
	}
}

// Commentary is the payload of a commentary event.
type Commentary struct {
	Lines []string  `json:"lines"`
	At    time.Time `json:"at"`
}

// PubSubTalker publishes each batch as a commentary event, for displays
// that show subtitles or speak the lines themselves.
type PubSubTalker struct {
	broker pubsub.Broker
	now    func() time.Time
}

func NewPubSubTalker(b pubsub.Broker) *PubSubTalker {
	return &PubSubTalker{broker: b, now: time.Now}
}

func (t *PubSubTalker) Say(phrases ...string) {
	lines := append([]string(nil), phrases...)
	pubsub.PublishPayload(t.broker, pubsub.EventCommentary, Commentary{Lines: lines, At: t.now().UTC()})
}

// Multi fans a batch out to every talker in order. Nil talkers are skipped.
func Multi(talkers ...match.Talker) match.Talker {
	var out multi
	for _, t := range talkers {
		if t != nil {
			out = append(out, t)
		}
	}
	return out
}

type multi []match.Talker

func (m multi) Say(phrases ...string) {
	for _, t := range m {
		t.Say(phrases...)
	}
}
