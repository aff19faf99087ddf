package match

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidGameLength  = errors.New("invalid game length")
	ErrInvalidMatchLength = errors.New("invalid match length")
)

// GameLength is the target score of a game.
type GameLength int

const (
	Eleven GameLength = iota + 1
	TwentyOne
)

// gameRules holds everything that varies with game length. Each GameLength
// has exactly one entry, so rule lookups never need a fallback branch.
type gameRules struct {
	name   string
	points int
	// rotation is the number of total points between serve changes.
	rotation int
	// runLength is the unanswered-run size that earns one ofer tier.
	runLength int
	// runCalls[i] is the call for a run of (i+1)*runLength points.
	runCalls []string
}

var gameRuleTable = map[GameLength]gameRules{
	Eleven: {
		name:      "eleven",
		points:    11,
		rotation:  2,
		runLength: 4,
		runCalls:  []string{"O-fer!", "Double O-fer!"},
	},
	TwentyOne: {
		name:      "twenty_one",
		points:    21,
		rotation:  5,
		runLength: 5,
		runCalls:  []string{"O-fer!", "Ken-fer!", "Turkey!", "Double Ken-fer!"},
	},
}

func (g GameLength) rules() (gameRules, bool) {
	r, ok := gameRuleTable[g]
	return r, ok
}

// Valid reports whether g is a known game length.
func (g GameLength) Valid() bool {
	_, ok := g.rules()
	return ok
}

// Points returns the target score, or 0 for an unknown length.
func (g GameLength) Points() int {
	r, _ := g.rules()
	return r.points
}

func (g GameLength) String() string {
	if r, ok := g.rules(); ok {
		return r.name
	}
	return fmt.Sprintf("game_length(%d)", int(g))
}

// ParseGameLength accepts the length name or its point target ("11", "21").
func ParseGameLength(v string) (GameLength, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "eleven", "11":
		return Eleven, nil
	case "twenty_one", "twentyone", "twenty-one", "21":
		return TwentyOne, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidGameLength, v)
}

func (g GameLength) MarshalText() ([]byte, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidGameLength, int(g))
	}
	return []byte(g.String()), nil
}

func (g *GameLength) UnmarshalText(text []byte) error {
	v, err := ParseGameLength(string(text))
	if err != nil {
		return err
	}
	*g = v
	return nil
}

// MatchLength decides how many game wins take the match.
type MatchLength int

const (
	One MatchLength = iota + 1
	BestOfThree
	BestOfFive
	BestOfSeven
)

var matchLengthNames = map[MatchLength]string{
	One:         "one",
	BestOfThree: "best_of_three",
	BestOfFive:  "best_of_five",
	BestOfSeven: "best_of_seven",
}

// Valid reports whether m is a known match length.
func (m MatchLength) Valid() bool {
	_, ok := matchLengthNames[m]
	return ok
}

// MinGames is the number of game wins required to win the match.
func (m MatchLength) MinGames() int {
	if !m.Valid() {
		return 0
	}
	return int(m)
}

func (m MatchLength) String() string {
	if name, ok := matchLengthNames[m]; ok {
		return name
	}
	return fmt.Sprintf("match_length(%d)", int(m))
}

// ParseMatchLength accepts the length name, or the number of games in the
// series ("1", "3", "5", "7").
func ParseMatchLength(v string) (MatchLength, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "one", "single", "1":
		return One, nil
	case "best_of_three", "bo3", "3":
		return BestOfThree, nil
	case "best_of_five", "bo5", "5":
		return BestOfFive, nil
	case "best_of_seven", "bo7", "7":
		return BestOfSeven, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMatchLength, v)
}

func (m MatchLength) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMatchLength, int(m))
	}
	return []byte(m.String()), nil
}

func (m *MatchLength) UnmarshalText(text []byte) error {
	v, err := ParseMatchLength(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
