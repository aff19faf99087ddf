package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/Billy-Davies-2/scorebored/internal/match"
)

// ErrEmptyName is returned when a team would be left without a name.
var ErrEmptyName = errors.New("team name is required")

// TeamPreset is a saved team identity that can be put on either side.
type TeamPreset struct {
	ID    string          `json:"id" yaml:"id"`
	Name  string          `json:"name" yaml:"name"`
	Color match.TeamColor `json:"color" yaml:"color"`
}

// Validate checks the preset before it is stored.
func (p TeamPreset) Validate() error {
	if p.Name == "" {
		return ErrEmptyName
	}
	if !p.Color.Valid() {
		return fmt.Errorf("%w: %d", match.ErrInvalidColor, int(p.Color))
	}
	return nil
}

// Settings is the persisted match configuration.
type Settings struct {
	GameLength  match.GameLength  `json:"gameLength" yaml:"game"`
	MatchLength match.MatchLength `json:"matchLength" yaml:"match"`
	Style       match.Style       `json:"style" yaml:"style"`
	Subtitles   bool              `json:"subtitles" yaml:"subtitles"`
}

// DefaultSettings matches the configuration of a freshly created match.
func DefaultSettings() Settings {
	return Settings{
		GameLength:  match.TwentyOne,
		MatchLength: match.One,
		Style:       match.StyleLED,
	}
}

func (s Settings) Validate() error {
	if !s.GameLength.Valid() {
		return fmt.Errorf("%w: %d", match.ErrInvalidGameLength, int(s.GameLength))
	}
	if !s.MatchLength.Valid() {
		return fmt.Errorf("%w: %d", match.ErrInvalidMatchLength, int(s.MatchLength))
	}
	if !s.Style.Valid() {
		return fmt.Errorf("%w: %d", match.ErrInvalidStyle, int(s.Style))
	}
	return nil
}

// TeamState is one team as shown on the scoreboard.
type TeamState struct {
	Name    string          `json:"name" yaml:"name"`
	Color   match.TeamColor `json:"color" yaml:"color"`
	Side    match.Side      `json:"side" yaml:"side"`
	Score   int             `json:"score" yaml:"score"`
	Wins    int             `json:"wins" yaml:"wins"`
	Serving bool            `json:"serving" yaml:"serving"`
}

// Snapshot is a point-in-time copy of a match, safe to hand to other
// goroutines, encode or cache.
type Snapshot struct {
	Left      TeamState     `json:"left" yaml:"left"`
	Right     TeamState     `json:"right" yaml:"right"`
	Server    match.Side    `json:"server" yaml:"server"`
	Phase     string        `json:"phase" yaml:"phase"`
	Active    bool          `json:"active" yaml:"active"`
	Overtime  bool          `json:"overtime" yaml:"overtime"`
	Settings  Settings      `json:"settings" yaml:"settings"`
	ScoreCall string        `json:"scoreCall,omitempty" yaml:"score_call,omitempty"`
	Winner    string        `json:"winner,omitempty" yaml:"winner,omitempty"`
	History   []match.Point `json:"history" yaml:"-"`
	UpdatedAt time.Time     `json:"updatedAt" yaml:"updated_at"`
}

func teamState(t *match.Team, server match.Side) TeamState {
	return TeamState{
		Name:    t.Name(),
		Color:   t.Color(),
		Side:    t.Side(),
		Score:   t.Score(),
		Wins:    t.Wins(),
		Serving: server != match.NoSide && t.Side() == server,
	}
}

// SnapshotOf copies the state of m. The caller must hold whatever lock
// guards m.
func SnapshotOf(m *match.Match, now time.Time) Snapshot {
	s := Snapshot{
		Left:     teamState(m.Left(), m.Server()),
		Right:    teamState(m.Right(), m.Server()),
		Server:   m.Server(),
		Phase:    m.Phase().String(),
		Active:   m.IsActive(),
		Overtime: m.IsOvertime(),
		Settings: Settings{
			GameLength:  m.GameLength(),
			MatchLength: m.MatchLength(),
			Style:       m.Style(),
			Subtitles:   m.IsSubtitled(),
		},
		History:   m.History(),
		UpdatedAt: now.UTC(),
	}
	if m.Server() != match.NoSide {
		s.ScoreCall = m.ScoreCall()
	}
	if m.Phase() == match.MatchOver {
		if w := m.Winner(); w != nil {
			s.Winner = w.Name()
		}
	}
	return s
}
