// Package mappan tracks the drag offset of the decorative map on the address
// step. It produces no booking data.
package mappan

// Vec is a 2D point or offset in CSS pixels.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec) Sub(o Vec) Vec { return Vec{X: v.X - o.X, Y: v.Y - o.Y} }

// InitialOffset roughly centres the map image in its frame.
var InitialOffset = Vec{X: -200, Y: -150}

// State is the pan state of one map. The offset is not clamped.
type State struct {
	Offset   Vec  `json:"offset"`
	Dragging bool `json:"dragging"`
	Anchor   Vec  `json:"anchor"`
}

func New() State {
	return State{Offset: InitialOffset}
}

// Down starts a drag at pointer position p.
func (s *State) Down(p Vec) {
	s.Anchor = p.Sub(s.Offset)
	s.Dragging = true
}

// Move pans to follow p while dragging and is ignored otherwise.
func (s *State) Move(p Vec) {
	if !s.Dragging {
		return
	}
	s.Offset = p.Sub(s.Anchor)
}

// Up ends the drag.
func (s *State) Up() { s.Dragging = false }

// Leave ends the drag when the pointer leaves the map.
func (s *State) Leave() { s.Dragging = false }

// Event names accepted by Apply.
const (
	EventDown  = "down"
	EventMove  = "move"
	EventUp    = "up"
	EventLeave = "leave"
)

// Apply dispatches a named pointer or touch event. It reports false for an
// unknown event name.
func (s *State) Apply(event string, p Vec) bool {
	switch event {
	case EventDown:
		s.Down(p)
	case EventMove:
		s.Move(p)
	case EventUp:
		s.Up()
	case EventLeave:
		s.Leave()
	default:
		return false
	}
	return true
}
