package match

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidColor = errors.New("invalid team color")
	ErrInvalidStyle = errors.New("invalid style")
)

// TeamColor is the colour a team is drawn in on the scoreboard.
type TeamColor int

const (
	ColorLEDRed TeamColor = iota + 1
	ColorLEDCyan
	ColorLEDGreen
	ColorLEDYellow
	ColorLEDBlue
	ColorLEDMagenta
	ColorLEDOrange
	ColorLEDWhite
)

var colorNames = map[TeamColor]string{
	ColorLEDRed:     "led_red",
	ColorLEDCyan:    "led_cyan",
	ColorLEDGreen:   "led_green",
	ColorLEDYellow:  "led_yellow",
	ColorLEDBlue:    "led_blue",
	ColorLEDMagenta: "led_magenta",
	ColorLEDOrange:  "led_orange",
	ColorLEDWhite:   "led_white",
}

func (c TeamColor) Valid() bool {
	_, ok := colorNames[c]
	return ok
}

func (c TeamColor) String() string {
	if name, ok := colorNames[c]; ok {
		return name
	}
	return fmt.Sprintf("color(%d)", int(c))
}

// ParseTeamColor accepts "led_red" or the bare colour name "red".
func ParseTeamColor(v string) (TeamColor, error) {
	key := strings.ToLower(strings.TrimSpace(v))
	for c, name := range colorNames {
		if key == name || "led_"+key == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidColor, v)
}

func (c TeamColor) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidColor, int(c))
	}
	return []byte(c.String()), nil
}

func (c *TeamColor) UnmarshalText(text []byte) error {
	v, err := ParseTeamColor(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Style is the visual style hint handed to the scoreboard display.
type Style int

const (
	StyleLED Style = iota + 1
	StyleClassic
)

func (s Style) Valid() bool {
	return s == StyleLED || s == StyleClassic
}

func (s Style) String() string {
	switch s {
	case StyleLED:
		return "led"
	case StyleClassic:
		return "classic"
	}
	return fmt.Sprintf("style(%d)", int(s))
}

func ParseStyle(v string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "led":
		return StyleLED, nil
	case "classic":
		return StyleClassic, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidStyle, v)
}

func (s Style) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStyle, int(s))
	}
	return []byte(s.String()), nil
}

func (s *Style) UnmarshalText(text []byte) error {
	v, err := ParseStyle(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Team is one side of the match. The Match keeps score and wins in range;
// Team itself does no validation.
type Team struct {
	side  Side
	name  string
	color TeamColor
	score int
	wins  int
}

// NewTeam creates a team standing on the given side.
func NewTeam(side Side) *Team {
	return &Team{side: side}
}

func (t *Team) Side() Side           { return t.side }
func (t *Team) Name() string         { return t.name }
func (t *Team) SetName(name string)  { t.name = name }
func (t *Team) Color() TeamColor     { return t.color }
func (t *Team) SetColor(c TeamColor) { t.color = c }
func (t *Team) Score() int           { return t.score }
func (t *Team) SetScore(score int)   { t.score = score }
func (t *Team) Wins() int            { return t.wins }
func (t *Team) SetWins(wins int)     { t.wins = wins }

// SwitchSides flips the side tag only. Moving the team between court slots
// is the Match's job.
func (t *Team) SwitchSides() {
	t.side = t.side.Opposite()
}

func (t *Team) String() string {
	return fmt.Sprintf("%s[%s score=%d wins=%d]", t.name, t.side, t.score, t.wins)
}
