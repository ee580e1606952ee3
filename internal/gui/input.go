package gui

import (
	"slices"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/confetti/internal/gesture"
	"github.com/san-kum/confetti/internal/physics"
)

// TouchPoint is one finger on the screen.
type TouchPoint struct {
	ID  gesture.ContactID
	Pos physics.Vec2
}

// Input feeds pointer state into a gesture.Tracker. Touch wins over the
// mouse while any finger is down.
type Input struct {
	tracker  *gesture.Tracker
	touching map[gesture.ContactID]bool
	mouse    bool
}

func NewInput(t *gesture.Tracker) *Input {
	return &Input{tracker: t, touching: make(map[gesture.ContactID]bool)}
}

// Poll reads the raylib pointer state for this frame.
func (in *Input) Poll() {
	n := rl.GetTouchPointCount()
	if n > 0 || len(in.touching) > 0 {
		points := make([]TouchPoint, 0, n)
		for i := int32(0); i < n; i++ {
			p := rl.GetTouchPosition(i)
			points = append(points, TouchPoint{
				ID:  gesture.ContactID(rl.GetTouchPointId(i)),
				Pos: physics.Vec2{X: float64(p.X), Y: float64(p.Y)},
			})
		}
		in.Touches(points)
		return
	}
	p := rl.GetMousePosition()
	in.Mouse(physics.Vec2{X: float64(p.X), Y: float64(p.Y)}, rl.IsMouseButtonDown(rl.MouseLeftButton))
}

// Touches syncs the tracker with the fingers currently down. New ids start
// contacts, known ids move and missing ids are released.
func (in *Input) Touches(points []TouchPoint) {
	seen := make(map[gesture.ContactID]bool, len(points))
	for _, p := range points {
		seen[p.ID] = true
		if in.touching[p.ID] {
			in.tracker.Move(p.ID, p.Pos)
			continue
		}
		in.touching[p.ID] = true
		in.tracker.Down(p.ID, p.Pos)
	}
	var lifted []gesture.ContactID
	for id := range in.touching {
		if !seen[id] {
			lifted = append(lifted, id)
		}
	}
	slices.Sort(lifted)
	for _, id := range lifted {
		delete(in.touching, id)
		in.tracker.Up(id)
	}
}

// Mouse applies the left button state and pointer position.
func (in *Input) Mouse(pos physics.Vec2, down bool) {
	switch {
	case down && !in.mouse:
		in.tracker.Down(gesture.MouseID, pos)
	case down:
		in.tracker.Move(gesture.MouseID, pos)
	case in.mouse:
		in.tracker.Move(gesture.MouseID, pos)
		in.tracker.Up(gesture.MouseID)
	}
	in.mouse = down
}

// Reset cancels every contact, used while the layer is hidden.
func (in *Input) Reset() {
	in.tracker.CancelAll()
	clear(in.touching)
	in.mouse = false
}
