// Package gesture turns pointer contacts into drag shots.
//
// Every contact (the mouse or one finger) moves through
//
//	absent -> active -> (consumed | cancelled) -> absent
//
// Down starts a contact, Move updates it while active, Up consumes it into a
// [Shot] and Cancel drops it. Contacts are independent of each other.
package gesture

import (
	"sort"

	"github.com/san-kum/confetti/internal/physics"
)

// ContactID identifies a pointer contact. Touch sources use their own ids;
// the mouse uses MouseID.
type ContactID int

// MouseID is the pseudo contact id of the mouse pointer.
const MouseID ContactID = -1

// Contact is an active drag.
type Contact struct {
	ID      ContactID
	Start   physics.Vec2
	Current physics.Vec2
}

// Shot is a released drag, from press point to release point.
type Shot struct {
	Start physics.Vec2
	End   physics.Vec2
}

// Tracker holds the active contacts. It is not safe for concurrent use.
type Tracker struct {
	contacts map[ContactID]*Contact

	// OnShot, when set, is called for every consumed contact.
	OnShot func(Shot)
}

func NewTracker() *Tracker {
	return &Tracker{contacts: make(map[ContactID]*Contact)}
}

// Down starts a contact. A Down on an active contact only moves it.
func (t *Tracker) Down(id ContactID, p physics.Vec2) {
	if c, ok := t.contacts[id]; ok {
		c.Current = p
		return
	}
	t.contacts[id] = &Contact{ID: id, Start: p, Current: p}
}

// Move updates an active contact; moves of absent contacts are ignored.
func (t *Tracker) Move(id ContactID, p physics.Vec2) {
	if c, ok := t.contacts[id]; ok {
		c.Current = p
	}
}

// Up consumes the contact and returns its shot.
func (t *Tracker) Up(id ContactID) (Shot, bool) {
	c, ok := t.contacts[id]
	if !ok {
		return Shot{}, false
	}
	delete(t.contacts, id)
	shot := Shot{Start: c.Start, End: c.Current}
	if t.OnShot != nil {
		t.OnShot(shot)
	}
	return shot, true
}

// Cancel drops the contact without a shot.
func (t *Tracker) Cancel(id ContactID) {
	delete(t.contacts, id)
}

// CancelAll drops every contact.
func (t *Tracker) CancelAll() {
	for id := range t.contacts {
		delete(t.contacts, id)
	}
}

// Active returns copies of the active contacts ordered by id.
func (t *Tracker) Active() []Contact {
	out := make([]Contact, 0, len(t.contacts))
	for _, c := range t.contacts {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// IDs returns the active contact ids in order.
func (t *Tracker) IDs() []ContactID {
	ids := make([]ContactID, 0, len(t.contacts))
	for id := range t.contacts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (t *Tracker) Len() int { return len(t.contacts) }
