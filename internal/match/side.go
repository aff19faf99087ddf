package match

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSide is returned when a side outside {Left, Right} is used for a team lookup.
var ErrInvalidSide = errors.New("invalid side")

// Side is a court position. The zero value, NoSide, marks an unassigned server.
type Side int

const (
	NoSide Side = iota
	Left
	Right
)

// Valid reports whether s names a court side.
func (s Side) Valid() bool {
	return s == Left || s == Right
}

// Opposite returns the other court side. NoSide stays NoSide.
func (s Side) Opposite() Side {
	switch s {
	case Left:
		return Right
	case Right:
		return Left
	}
	return NoSide
}

func (s Side) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	case NoSide:
		return "none"
	}
	return fmt.Sprintf("side(%d)", int(s))
}

// ParseSide accepts "left"/"l" and "right"/"r" in any case.
// "" and "none" parse to NoSide.
func ParseSide(v string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "left", "l":
		return Left, nil
	case "right", "r":
		return Right, nil
	case "", "none":
		return NoSide, nil
	}
	return NoSide, fmt.Errorf("%w: %q", ErrInvalidSide, v)
}

func (s Side) MarshalText() ([]byte, error) {
	if s != NoSide && !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSide, int(s))
	}
	return []byte(s.String()), nil
}

func (s *Side) UnmarshalText(text []byte) error {
	v, err := ParseSide(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
