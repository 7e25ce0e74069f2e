package physics

import (
	"cmp"
	"fmt"
	"iter"
	"slices"

	"github.com/jakecoffman/cp"
	"github.com/kamstrup/intmap"
	"github.com/plus3/planetrun/ecs"
)

const collisionTypeObject cp.CollisionType = 1

// Object is one collider owned by an entity.
type Object struct {
	Owner ecs.Entity
	Shape Shape
	Group Group

	body  *cp.Body
	shape *cp.Shape
}

// Pose returns the object's current pose.
func (o *Object) Pose() Pose {
	return Pose{Position: o.body.Position(), Angle: o.body.Angle()}
}

type slot struct {
	generation uint32
	object     *Object
	contacts   int
}

// pair is an unordered pair of handles, smaller index first.
type pair [2]Handle

func pairOf(a, b Handle) pair {
	if b.index < a.index {
		a, b = b, a
	}
	return pair{a, b}
}

// World owns the Chipmunk space and every collider in it.
// Bodies are kinematic and shapes are sensors: the space only detects
// contacts and never moves anything on its own.
type World struct {
	space        *cp.Space
	slots        []slot
	free         []uint32
	live         int
	byOwner      *intmap.Map[uint64, Handle]
	interactions interactions

	touching map[pair]struct{}
	events   []Event
	pending  []Event
	removing bool
}

// NewWorld creates an empty physics world with the default group interactions.
func NewWorld() *World {
	space := cp.NewSpace()
	space.SetGravity(cp.Vector{})

	w := &World{
		space:        space,
		byOwner:      intmap.New[uint64, Handle](64),
		interactions: defaultInteractions(),
		touching:     make(map[pair]struct{}),
	}
	w.setupHandlers()
	return w
}

func (w *World) setupHandlers() {
	handler := w.space.NewCollisionHandler(collisionTypeObject, collisionTypeObject)
	handler.UserData = w
	handler.BeginFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		world := userData.(*World)
		a, b := arb.Shapes()
		world.touch(a.UserData.(Handle), b.UserData.(Handle), true)
		set := arb.ContactPointSet()
		points := make([]cp.Vector, set.Count)
		for i := range set.Count {
			points[i] = set.Points[i].PointA
		}
		world.pending = append(world.pending, Event{
			Kind:   Started,
			A:      a.UserData.(Handle),
			B:      b.UserData.(Handle),
			Normal: set.Normal,
			Points: points,
		})
		return true
	}
	handler.SeparateFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) {
		world := userData.(*World)
		if world.removing {
			return
		}
		a, b := arb.Shapes()
		world.touch(a.UserData.(Handle), b.UserData.(Handle), false)
		world.pending = append(world.pending, Event{
			Kind: Stopped,
			A:    a.UserData.(Handle),
			B:    b.UserData.(Handle),
		})
	}
}

// touch records a contact beginning or ending and keeps per-object counts.
func (w *World) touch(a, b Handle, on bool) {
	key := pairOf(a, b)
	_, ok := w.touching[key]
	if ok == on {
		return
	}
	delta := -1
	if on {
		w.touching[key] = struct{}{}
		delta = 1
	} else {
		delete(w.touching, key)
	}
	w.slots[a.index].contacts += delta
	w.slots[b.index].contacts += delta
}

// Contacts returns how many objects h currently touches. Stale handles touch nothing.
func (w *World) Contacts(h Handle) int {
	if _, err := w.Get(h); err != nil {
		return 0
	}
	return w.slots[h.index].contacts
}

// Touching reports whether the two objects are currently in contact.
func (w *World) Touching(a, b Handle) bool {
	_, ok := w.touching[pairOf(a, b)]
	return ok
}

func (w *World) filter(g Group) cp.ShapeFilter {
	return cp.NewShapeFilter(cp.NO_GROUP, g.category(), w.interactions[g])
}

// Insert adds an object for owner and returns its handle.
func (w *World) Insert(owner ecs.Entity, pose Pose, shape Shape, group Group) (Handle, error) {
	if err := shape.Validate(); err != nil {
		return Handle{}, err
	}
	if !pose.valid() {
		return Handle{}, fmt.Errorf("invalid pose %v", pose)
	}
	if group == 0 || group > maxGroup {
		return Handle{}, fmt.Errorf("invalid group %d", uint(group))
	}
	if owner.IsZero() {
		return Handle{}, fmt.Errorf("object needs an owner")
	}
	if h, ok := w.byOwner.Get(uint64(owner)); ok {
		return Handle{}, fmt.Errorf("entity %s already owns %s", owner, h)
	}

	var index uint32
	if n := len(w.free); n > 0 {
		index = w.free[n-1]
		w.free = w.free[:n-1]
	} else {
		index = uint32(len(w.slots))
		w.slots = append(w.slots, slot{})
	}
	s := &w.slots[index]
	s.generation++
	h := Handle{index: index, generation: s.generation}

	body := cp.NewKinematicBody()
	body.SetPosition(pose.Position)
	body.SetAngle(pose.Angle)
	cpShape := shape.build(body)
	cpShape.SetSensor(true)
	cpShape.SetCollisionType(collisionTypeObject)
	cpShape.SetFilter(w.filter(group))
	cpShape.UserData = h

	w.space.AddBody(body)
	w.space.AddShape(cpShape)

	s.object = &Object{Owner: owner, Shape: shape, Group: group, body: body, shape: cpShape}
	w.byOwner.Put(uint64(owner), h)
	w.live++
	return h, nil
}

// Get resolves a handle to its object.
func (w *World) Get(h Handle) (*Object, error) {
	if h.IsZero() || int(h.index) >= len(w.slots) {
		return nil, staleHandle(h)
	}
	s := w.slots[h.index]
	if s.object == nil || s.generation != h.generation {
		return nil, staleHandle(h)
	}
	return s.object, nil
}

// Remove deletes the object. Contacts it was part of end without a Stopped event.
func (w *World) Remove(h Handle) error {
	obj, err := w.Get(h)
	if err != nil {
		return err
	}

	w.removing = true
	w.space.RemoveShape(obj.shape)
	w.space.RemoveBody(obj.body)
	w.removing = false

	for key := range w.touching {
		if key[0] == h || key[1] == h {
			w.touch(key[0], key[1], false)
		}
	}
	w.slots[h.index].contacts = 0

	w.byOwner.Del(uint64(obj.Owner))
	w.slots[h.index].object = nil
	w.free = append(w.free, h.index)
	w.live--

	// Drop events about the object that the resolver has not seen yet.
	w.events = slices.DeleteFunc(w.events, func(e Event) bool { return e.A == h || e.B == h })
	return nil
}

// Owner returns the entity that owns the object.
func (w *World) Owner(h Handle) (ecs.Entity, error) {
	obj, err := w.Get(h)
	if err != nil {
		return 0, err
	}
	return obj.Owner, nil
}

// HandleOf returns the handle of the object owned by e.
func (w *World) HandleOf(e ecs.Entity) (Handle, bool) {
	return w.byOwner.Get(uint64(e))
}

// Pose returns the pose of the object.
func (w *World) Pose(h Handle) (Pose, error) {
	obj, err := w.Get(h)
	if err != nil {
		return Pose{}, err
	}
	return obj.Pose(), nil
}

// SetPose moves the object to pose.
func (w *World) SetPose(h Handle, pose Pose) error {
	obj, err := w.Get(h)
	if err != nil {
		return err
	}
	obj.body.SetPosition(pose.Position)
	obj.body.SetAngle(pose.Angle)
	return nil
}

// Translate moves the object by delta without rotating it.
func (w *World) Translate(h Handle, delta cp.Vector) error {
	obj, err := w.Get(h)
	if err != nil {
		return err
	}
	obj.body.SetPosition(obj.body.Position().Add(delta))
	return nil
}

// SetInteraction enables or disables contacts between two groups.
// Existing objects pick up the change on the next Update.
func (w *World) SetInteraction(a, b Group, on bool) {
	w.interactions.set(a, b, on)
	for _, s := range w.slots {
		if s.object != nil {
			s.object.shape.SetFilter(w.filter(s.object.Group))
		}
	}
}

// Interacts reports whether objects of the two groups can touch.
func (w *World) Interacts(a, b Group) bool {
	return w.interactions.has(a, b)
}

// Update refreshes contact detection for the current poses and fills the event buffer.
// Events from the previous Update are discarded.
func (w *World) Update() {
	w.pending = w.pending[:0]
	w.space.Step(1)

	// Stopped before Started, so a contact that begins in the same update as
	// another one ends is the one that holds.
	slices.SortStableFunc(w.pending, func(x, y Event) int {
		return cmp.Or(
			cmp.Compare(y.Kind, x.Kind),
			cmp.Compare(x.A.index, y.A.index),
			cmp.Compare(x.B.index, y.B.index),
		)
	})

	w.events, w.pending = w.pending, w.events
}

// Events returns the contact events produced by the last Update.
// The slice is reused by the next Update.
func (w *World) Events() []Event {
	return w.events
}

// Len returns the number of live objects.
func (w *World) Len() int {
	return w.live
}

// Objects yields every live object with its handle, in slot order.
func (w *World) Objects() iter.Seq2[Handle, *Object] {
	return func(yield func(Handle, *Object) bool) {
		for i, s := range w.slots {
			if s.object == nil {
				continue
			}
			if !yield(Handle{index: uint32(i), generation: s.generation}, s.object) {
				return
			}
		}
	}
}
