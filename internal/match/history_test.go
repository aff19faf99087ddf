package match

import (
	"reflect"
	"testing"
)

func TestPointHistoryMostRecentFirst(t *testing.T) {
	var h PointHistory
	h.Record(Left, Increment)
	h.Record(Right, Increment)
	h.Record(Right, Decrement)

	want := []Point{
		{Side: Right, Type: Decrement},
		{Side: Right, Type: Increment},
		{Side: Left, Type: Increment},
	}
	if got := h.Points(); !reflect.DeepEqual(got, want) {
		t.Errorf("Points() = %+v, want %+v", got, want)
	}

	h.Points()[0].Side = Left
	if h.Points()[0].Side != Right {
		t.Error("Points() should return a copy")
	}

	h.Clear()
	if h.Len() != 0 || h.RunCount() != 0 {
		t.Error("cleared history should be empty")
	}
}

func TestRunCount(t *testing.T) {
	tests := []struct {
		name    string
		history []Point
		want    int
	}{
		{"empty", nil, 0},
		{"single", []Point{{Left, Increment}}, 1},
		{"broken run", []Point{{Left, Increment}, {Left, Increment}, {Right, Increment}, {Left, Increment}}, 2},
		{"whole history", []Point{{Right, Increment}, {Right, Increment}, {Right, Increment}}, 3},
		// Corrections count towards the run; only the side matters.
		{"mixed types", []Point{{Left, Decrement}, {Left, Increment}, {Right, Increment}}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RunCount(tt.history); got != tt.want {
				t.Errorf("RunCount() = %d, want %d", got, tt.want)
			}
		})
	}
}
