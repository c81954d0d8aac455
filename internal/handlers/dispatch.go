package handlers

import (
	"github.com/rs/zerolog/log"

	"rlreplay.dev/internal/attributes"
	"rlreplay.dev/internal/frames"
	"rlreplay.dev/internal/network"
	"rlreplay.dev/internal/tuning"
)

// Dispatcher routes decoded frames to archetype handlers. It owns the
// accumulator and the actor arena for one pass and is not safe for
// concurrent use.
type Dispatcher struct {
	Data  *frames.Data
	State *State

	goals map[int]bool
}

func NewDispatcher(objects []string, totalFrames int, goalFrames []int, t tuning.Tuning) *Dispatcher {
	goals := make(map[int]bool, len(goalFrames))
	for _, f := range goalFrames {
		goals[f] = true
	}
	return &Dispatcher{
		Data:  frames.New(totalFrames, frames.Options{BoostPerSecond: t.Boost.PerSecond()}),
		State: NewState(objects, t),
		goals: goals,
	}
}

// Apply processes one frame: advance every entity, then deletions, new
// actors, attribute merges and finally handler updates.
func (x *Dispatcher) Apply(f network.Frame) {
	d, s := x.Data, x.State

	s.Frame = d.NewFrame(f.Time, f.Delta)
	s.Time = f.Time
	s.Delta = f.Delta
	if x.goals[s.Frame] {
		d.Goals = append(d.Goals, s.Frame)
		s.ShouldCollectStats = false
		s.PostGoal = true
	}

	for _, id := range f.DeletedActors {
		x.remove(int32(id))
	}

	for _, na := range f.NewActors {
		id := int32(na.ActorID)
		if _, stale := s.Actors[id]; stale {
			log.Debug().Int("frame", s.Frame).Int32("actor", id).Msg("actor id reused before delete")
			x.remove(id)
		}
		name := s.ObjectName(int32(na.ObjectID))
		a := &Actor{
			ID:      id,
			Object:  int32(na.ObjectID),
			Name:    name,
			Attrs:   map[string]attributes.Value{},
			Handler: Resolve(name),
		}
		s.Actors[id] = a
		if a.Handler != nil {
			a.Handler.Create(d, s, id)
		}
		if name == ArchCar {
			delete(s.CarPlayer, id)
		}
	}

	for _, u := range f.Updated {
		if a, ok := s.Actors[int32(u.ActorID)]; ok {
			a.Attrs[s.ObjectName(int32(u.ObjectID))] = u.Value
		}
	}
	for _, u := range f.Updated {
		a, ok := s.Actors[int32(u.ActorID)]
		if !ok || a.Handler == nil {
			continue
		}
		a.Handler.Update(d, s, a.ID, s.ObjectName(int32(u.ObjectID)))
	}
}

// remove destroys the actor's handler while its attributes are still
// visible, then drops the bookkeeping.
func (x *Dispatcher) remove(id int32) {
	a, ok := x.State.Actors[id]
	if !ok {
		return
	}
	if a.Handler != nil {
		a.Handler.Destroy(x.Data, x.State, id)
	}
	delete(x.State.Actors, id)
}
