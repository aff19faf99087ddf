// Package script replays YAML rally scripts through a scoreboard.
package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Billy-Davies-2/scorebored/internal/logger"
	"github.com/Billy-Davies-2/scorebored/internal/match"
	"github.com/Billy-Davies-2/scorebored/internal/models"
	"github.com/Billy-Davies-2/scorebored/internal/scoreboard"
)

var ErrInvalidEvent = errors.New("invalid script event")

// Op is a single scripted action.
type Op int

const (
	OpPoint Op = iota + 1
	OpUndo
	OpWin
	OpSwap
	OpServe
)

func (o Op) String() string {
	switch o {
	case OpPoint:
		return "point"
	case OpUndo:
		return "undo"
	case OpWin:
		return "win"
	case OpSwap:
		return "swap"
	case OpServe:
		return "serve"
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// Event is a parsed script line. Side is NoSide for swap and serve.
type Event struct {
	Op   Op
	Side match.Side
}

// ParseEvent reads "L", "R", "-L", "-R", "+L", "+R", "swap" or "serve".
func ParseEvent(v string) (Event, error) {
	raw := strings.ToLower(strings.TrimSpace(v))
	switch raw {
	case "swap":
		return Event{Op: OpSwap}, nil
	case "serve":
		return Event{Op: OpServe}, nil
	}

	op := OpPoint
	switch {
	case strings.HasPrefix(raw, "-"):
		op, raw = OpUndo, raw[1:]
	case strings.HasPrefix(raw, "+"):
		op, raw = OpWin, raw[1:]
	}
	side, err := match.ParseSide(raw)
	if err != nil || side == match.NoSide {
		return Event{}, fmt.Errorf("%w: %q", ErrInvalidEvent, v)
	}
	return Event{Op: op, Side: side}, nil
}

type Team struct {
	Name  string          `yaml:"name"`
	Color match.TeamColor `yaml:"color,omitempty"`
}

// Script is the YAML document:
//
//	game: eleven
//	match: best_of_three
//	left: {name: Dinkers, color: led_green}
//	right: {name: Smashers}
//	events: [L, L, R, -R, swap, serve, +L]
type Script struct {
	Game   match.GameLength  `yaml:"game"`
	Match  match.MatchLength `yaml:"match"`
	Left   Team              `yaml:"left"`
	Right  Team              `yaml:"right"`
	Events []string          `yaml:"events"`

	parsed []Event
}

// Load decodes and validates a script. Missing lengths default to a single
// game to 21.
func Load(r io.Reader) (*Script, error) {
	var s Script
	if err := yaml.NewDecoder(r).Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode script: %w", err)
	}
	if s.Game == 0 {
		s.Game = match.TwentyOne
	}
	if s.Match == 0 {
		s.Match = match.One
	}

	s.parsed = make([]Event, 0, len(s.Events))
	for i, raw := range s.Events {
		ev, err := ParseEvent(raw)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i+1, err)
		}
		s.parsed = append(s.parsed, ev)
	}
	return &s, nil
}

func LoadFile(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open script: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Parsed returns the validated events in order.
func (s *Script) Parsed() []Event {
	return append([]Event(nil), s.parsed...)
}

// Run plays the script on a new scoreboard built from opts and returns the
// final snapshot.
func Run(ctx context.Context, s *Script, opts scoreboard.Options) (models.Snapshot, error) {
	if s.Left.Name != "" {
		opts.HomeTeam = s.Left.Name
	}
	if s.Right.Name != "" {
		opts.AwayTeam = s.Right.Name
	}
	svc, err := scoreboard.New(opts)
	if err != nil {
		return models.Snapshot{}, err
	}

	settings := models.DefaultSettings()
	settings.GameLength, settings.MatchLength = s.Game, s.Match
	if _, err := svc.Configure(ctx, settings); err != nil {
		return models.Snapshot{}, err
	}
	current := svc.Snapshot()
	for _, t := range []struct {
		side  match.Side
		name  string
		color match.TeamColor
	}{{match.Left, current.Left.Name, s.Left.Color}, {match.Right, current.Right.Name, s.Right.Color}} {
		if t.color == 0 {
			continue
		}
		if _, err := svc.RenameTeam(ctx, t.side, t.name, t.color); err != nil {
			return models.Snapshot{}, err
		}
	}

	if _, err := svc.Start(ctx); err != nil {
		return models.Snapshot{}, err
	}
	for i, ev := range s.parsed {
		if err := ctx.Err(); err != nil {
			return models.Snapshot{}, err
		}
		if err := apply(ctx, svc, ev); err != nil {
			return models.Snapshot{}, fmt.Errorf("event %d (%s): %w", i+1, s.Events[i], err)
		}
	}
	logger.Debug("Script finished", "events", len(s.parsed))
	return svc.Snapshot(), nil
}

func apply(ctx context.Context, svc *scoreboard.Service, ev Event) error {
	var err error
	switch ev.Op {
	case OpPoint:
		_, err = svc.Point(ctx, ev.Side)
	case OpUndo:
		_, err = svc.Undo(ctx, ev.Side)
	case OpWin:
		_, err = svc.AddWin(ctx, ev.Side)
	case OpSwap:
		_, err = svc.SwitchSides(ctx)
	case OpServe:
		_, err = svc.SwitchServers(ctx)
	default:
		err = fmt.Errorf("%w: %s", ErrInvalidEvent, ev.Op)
	}
	return err
}

// WriteYAML encodes v with two-space indentation.
func WriteYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}
