package domain

// MatchArgs are the tuning knobs forwarded to the visual matcher.
// The core never interprets them.
type MatchArgs struct {
	// Ratio controls match strictness.
	Ratio float64 `json:"ratio" yaml:"ratio"`

	// Consistency controls geometric-consistency filtering of candidate points.
	Consistency float64 `json:"consistency" yaml:"consistency"`
}

// DefaultMatchArgs returns ratio 0.2 and consistency 2.
func DefaultMatchArgs() MatchArgs {
	return MatchArgs{Ratio: 0.2, Consistency: 2}
}

// MatchResult is what a matcher reports for one template against one frame.
// Points are in the frame's coordinate space, best candidate first.
type MatchResult struct {
	Success bool    `json:"success"`
	Points  []Point `json:"points,omitempty"`
}

// Best returns the first candidate point.
func (m MatchResult) Best() (Point, bool) {
	if !m.Success || len(m.Points) == 0 {
		return Point{}, false
	}
	return m.Points[0], true
}
