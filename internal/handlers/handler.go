// Package handlers interprets decoded actor events per archetype and writes
// the results into a frames.Data accumulator.
package handlers

import (
	"rlreplay.dev/internal/attributes"
	"rlreplay.dev/internal/frames"
	"rlreplay.dev/internal/tuning"
)

// Handler gives an archetype its meaning. Implementations read the actor's
// attribute table through State and never fail: updates they cannot
// resolve are dropped.
type Handler interface {
	Create(d *frames.Data, s *State, actor int32)
	Update(d *frames.Data, s *State, actor int32, attr string)
	Destroy(d *frames.Data, s *State, actor int32)
}

// Actor is a live actor's bookkeeping. The handler and attribute table are
// created and dropped together.
type Actor struct {
	ID      int32
	Object  int32
	Name    string
	Attrs   map[string]attributes.Value
	Handler Handler
}

// State is the dispatch context shared by all handlers during one pass.
type State struct {
	Frame int
	Time  float32
	Delta float32

	Objects []string
	Actors  map[int32]*Actor
	// CarPlayer remembers the last player each car actor carried, so
	// components destroyed after their car can still be attributed. A new
	// car under the same id starts without an entry.
	CarPlayer map[int32]int32

	// ShouldCollectStats is false from a goal until the next kickoff or
	// first touch.
	ShouldCollectStats bool
	PostGoal           bool

	Tuning tuning.Tuning
}

func NewState(objects []string, t tuning.Tuning) *State {
	return &State{
		Objects:            objects,
		Actors:             map[int32]*Actor{},
		CarPlayer:          map[int32]int32{},
		ShouldCollectStats: true,
		Tuning:             t,
	}
}

// ObjectName returns the object table entry for id, or "".
func (s *State) ObjectName(id int32) string {
	if id < 0 || int(id) >= len(s.Objects) {
		return ""
	}
	return s.Objects[id]
}

// Attr returns the last decoded value of an actor's attribute.
func (s *State) Attr(actor int32, name string) (attributes.Value, bool) {
	a, ok := s.Actors[actor]
	if !ok {
		return nil, false
	}
	v, ok := a.Attrs[name]
	return v, ok
}

// ActorRef resolves an ActiveActor attribute to the referenced actor id.
// A -1 reference is reported as absent.
func (s *State) ActorRef(actor int32, name string) (int32, bool) {
	v, ok := s.Attr(actor, name)
	if !ok {
		return 0, false
	}
	ref, ok := v.(attributes.ActiveActor)
	if !ok || ref.Actor == -1 {
		return 0, false
	}
	return ref.Actor, true
}

// CarPlayerID resolves a car actor to its player actor through the car's
// live player reference, falling back to the last player the car carried.
func (s *State) CarPlayerID(car int32) (int32, bool) {
	if car == -1 {
		return 0, false
	}
	if p, ok := s.ActorRef(car, AttrPawnPRI); ok {
		s.CarPlayer[car] = p
		return p, true
	}
	p, ok := s.CarPlayer[car]
	return p, ok
}

// componentPlayer resolves a car component (boost, jump, rumble item) to
// the player record driving its vehicle.
func (s *State) componentPlayer(d *frames.Data, component int32) *frames.Player {
	car, ok := s.ActorRef(component, AttrVehicle)
	if !ok {
		return nil
	}
	pid, ok := s.CarPlayerID(car)
	if !ok {
		return nil
	}
	return d.Players[pid]
}

// carPlayer returns the player record driving car.
func (s *State) carPlayer(d *frames.Data, car int32) *frames.Player {
	pid, ok := s.CarPlayerID(car)
	if !ok {
		return nil
	}
	return d.Players[pid]
}

func (s *State) boostRate() float32 { return s.Tuning.Boost.PerSecond() }
