// Package replaytest builds small synthetic network streams for tests of
// the decode pass and everything downstream of it.
package replaytest

import (
	"fmt"

	"rlreplay.dev/internal/attributes"
	"rlreplay.dev/internal/bitstream"
	"rlreplay.dev/internal/handlers"
	"rlreplay.dev/internal/network"
	"rlreplay.dev/internal/replay"
	"rlreplay.dev/internal/tuning"
)

// Object ids of the synthetic object table.
const (
	ObjBall network.ObjectID = iota
	ObjPlayer
	ObjCar
	ObjBoost
	ObjTeam0
	ObjTeam1
	ObjPawnPRI
	ObjRBState
	ObjVehicle
	ObjActive
	ObjBoostAmount
	ObjPlayerName
	ObjTeam
	ObjTeamScore
)

// Actor ids used by Kickoff.
const (
	ActorBall   network.ActorID = 1
	ActorBlue   network.ActorID = 2
	ActorOrange network.ActorID = 3
	ActorPlayer network.ActorID = 4
	ActorCar    network.ActorID = 5
	ActorBoost  network.ActorID = 6
)

var Version = network.Version{Engine: 868, Licensee: 32, Net: 10}

func Objects() []string {
	return []string{
		ObjBall:        handlers.ArchBallDefault,
		ObjPlayer:      handlers.ArchPlayer,
		ObjCar:         handlers.ArchCar,
		ObjBoost:       handlers.ArchBoost,
		ObjTeam0:       handlers.ArchTeam0,
		ObjTeam1:       handlers.ArchTeam1,
		ObjPawnPRI:     handlers.AttrPawnPRI,
		ObjRBState:     handlers.AttrRBState,
		ObjVehicle:     handlers.AttrVehicle,
		ObjActive:      handlers.AttrActive,
		ObjBoostAmount: handlers.AttrBoostAmount,
		ObjPlayerName:  handlers.AttrPlayerName,
		ObjTeam:        handlers.AttrTeam,
		ObjTeamScore:   handlers.AttrTeamScore,
	}
}

func Spawns() []network.SpawnTrajectory {
	s := make([]network.SpawnTrajectory, len(Objects()))
	s[ObjBall] = network.SpawnLocationAndRotation
	s[ObjCar] = network.SpawnLocationAndRotation
	return s
}

// Cache returns the per-class property tables keyed by class object id.
func Cache() map[network.ObjectID]*network.CacheInfo {
	prop := func(tag attributes.Tag, obj network.ObjectID) network.ObjectAttribute {
		return network.ObjectAttribute{Tag: tag, ObjectID: obj}
	}
	team := map[network.StreamID]network.ObjectAttribute{0: prop(attributes.TagInt, ObjTeamScore)}
	return map[network.ObjectID]*network.CacheInfo{
		ObjBall: network.NewCacheInfo(8, map[network.StreamID]network.ObjectAttribute{
			0: prop(attributes.TagRigidBody, ObjRBState),
		}),
		ObjPlayer: network.NewCacheInfo(8, map[network.StreamID]network.ObjectAttribute{
			0: prop(attributes.TagString, ObjPlayerName),
			1: prop(attributes.TagActiveActor, ObjTeam),
		}),
		ObjCar: network.NewCacheInfo(8, map[network.StreamID]network.ObjectAttribute{
			0: prop(attributes.TagActiveActor, ObjPawnPRI),
			1: prop(attributes.TagRigidBody, ObjRBState),
		}),
		ObjBoost: network.NewCacheInfo(8, map[network.StreamID]network.ObjectAttribute{
			0: prop(attributes.TagActiveActor, ObjVehicle),
			1: prop(attributes.TagByte, ObjActive),
			2: prop(attributes.TagByte, ObjBoostAmount),
		}),
		ObjTeam0: network.NewCacheInfo(8, team),
		ObjTeam1: network.NewCacheInfo(8, team),
	}
}

// Stream writes frames against the synthetic tables.
type Stream struct {
	enc    *network.Encoder
	time   float32
	frames int
	err    error
}

func NewStream(params network.Params) *Stream {
	return &Stream{enc: &network.Encoder{Params: params, Cache: Cache()}}
}

// Frame writes one frame; body adds actor records to it.
func (s *Stream) Frame(delta float32, body func(f *Frame)) {
	s.time += delta
	s.enc.BeginFrame(s.time, delta)
	if body != nil {
		body(&Frame{s: s})
	}
	s.enc.EndFrame()
	s.frames++
}

func (s *Stream) Frames() int { return s.frames }

// Bytes ends the stream and returns the payload.
func (s *Stream) Bytes() ([]byte, error) {
	s.enc.EndStream()
	if s.enc.Params.HasTrailer {
		s.enc.Trailer(0)
	}
	return s.enc.Bytes(), s.err
}

type Frame struct {
	s *Stream
}

func (f *Frame) New(actor network.ActorID, obj network.ObjectID) {
	var traj network.Trajectory
	if Spawns()[obj] != network.SpawnNone {
		traj.Location = &attributes.Vector3i{}
	}
	if Spawns()[obj] == network.SpawnLocationAndRotation {
		traj.Rotation = &attributes.Rotation{}
	}
	f.s.enc.NewActor(actor, obj, int32(actor), traj)
}

func (f *Frame) Delete(actor network.ActorID) { f.s.enc.Delete(actor) }

// Update writes one attribute block for actor of class obj.
func (f *Frame) Update(actor network.ActorID, obj network.ObjectID, props ...Prop) {
	enc := f.s.enc
	enc.BeginUpdate(actor)
	for _, p := range props {
		v := p.Value
		enc.Property(obj, p.Stream, func(w *bitstream.Writer) {
			if err := attributes.Encode(w, v, enc.Params.Version); err != nil && f.s.err == nil {
				f.s.err = fmt.Errorf("stream %d: %w", p.Stream, err)
			}
		})
	}
	enc.EndUpdate()
}

type Prop struct {
	Stream network.StreamID
	Value  attributes.Value
}

func P(stream network.StreamID, v attributes.Value) Prop { return Prop{Stream: stream, Value: v} }

func Ref(actor network.ActorID) attributes.ActiveActor {
	return attributes.ActiveActor{Active: true, Actor: int32(actor)}
}

// Kickoff is a short match: tick 0 spawns the ball, both teams and one
// boosting player; tick 1 sets the boost to 100 and engages it; every
// further tick moves the ball. The trailer is present.
func Kickoff(extra int) (replay.Input, error) {
	params := network.NewParams(Version, 1023, true, true)
	s := NewStream(params)
	s.Frame(0.05, func(f *Frame) {
		f.New(ActorBall, ObjBall)
		f.New(ActorBlue, ObjTeam0)
		f.New(ActorOrange, ObjTeam1)
		f.New(ActorPlayer, ObjPlayer)
		f.New(ActorCar, ObjCar)
		f.New(ActorBoost, ObjBoost)
		f.Update(ActorPlayer, ObjPlayer, P(0, attributes.String("Ayla")), P(1, Ref(ActorOrange)))
		f.Update(ActorCar, ObjCar, P(0, Ref(ActorPlayer)))
		f.Update(ActorBoost, ObjBoost, P(0, Ref(ActorCar)))
		f.Update(ActorBall, ObjBall, P(0, ballAt(0)))
	})
	s.Frame(0.05, func(f *Frame) {
		f.Update(ActorBoost, ObjBoost, P(2, attributes.Byte(100)), P(1, attributes.Byte(1)))
	})
	for i := 0; i < extra; i++ {
		z := float32(i + 1)
		s.Frame(0.05, func(f *Frame) {
			f.Update(ActorBall, ObjBall, P(0, ballAt(z)))
		})
	}
	payload, err := s.Bytes()
	if err != nil {
		return replay.Input{}, err
	}
	return replay.Input{
		Payload:     payload,
		Params:      params,
		Objects:     Objects(),
		Spawns:      Spawns(),
		Cache:       Cache(),
		TotalFrames: s.Frames(),
		Tuning:      tuning.Defaults(),
	}, nil
}

func ballAt(z float32) attributes.RigidBody {
	return attributes.RigidBody{
		Sleeping: true,
		Location: attributes.Vector3f{Z: 93 + z},
		Rotation: attributes.Quaternion{W: 1},
	}
}
