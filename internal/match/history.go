package match

// PointType tells whether a history entry added or removed a point.
type PointType int

const (
	Increment PointType = iota + 1
	Decrement
)

func (p PointType) String() string {
	switch p {
	case Increment:
		return "increment"
	case Decrement:
		return "decrement"
	}
	return "unknown"
}

// Point is one entry of the point history.
type Point struct {
	Side Side      `json:"side"`
	Type PointType `json:"type"`
}

// PointHistory is an append-only log of point events used to spot scoring
// runs. Entries are stored oldest-first and read most-recent-first.
type PointHistory struct {
	points []Point
}

// Record adds a new most recent entry.
func (h *PointHistory) Record(side Side, typ PointType) {
	h.points = append(h.points, Point{Side: side, Type: typ})
}

// Len returns the number of recorded entries.
func (h *PointHistory) Len() int {
	return len(h.points)
}

// Clear drops every entry.
func (h *PointHistory) Clear() {
	h.points = h.points[:0]
}

// Points returns a copy of the history, most recent first.
func (h *PointHistory) Points() []Point {
	out := make([]Point, len(h.points))
	for i, p := range h.points {
		out[len(h.points)-1-i] = p
	}
	return out
}

// RunCount is the number of most recent entries that belong to the same side
// as the latest one. It is 0 for an empty history.
func (h *PointHistory) RunCount() int {
	return RunCount(h.Points())
}

// RunCount computes the run length over a most-recent-first history.
func RunCount(history []Point) int {
	if len(history) == 0 {
		return 0
	}
	side := history[0].Side
	run := 0
	for _, p := range history {
		if p.Side != side {
			break
		}
		run++
	}
	return run
}
