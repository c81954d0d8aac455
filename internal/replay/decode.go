// Package replay runs a whole decode pass: frames are decoded from the
// network payload and dispatched to the archetype handlers tick by tick.
package replay

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"rlreplay.dev/internal/attributes"
	"rlreplay.dev/internal/bitstream"
	"rlreplay.dev/internal/frames"
	"rlreplay.dev/internal/handlers"
	"rlreplay.dev/internal/network"
	"rlreplay.dev/internal/tuning"
)

// Input is everything a pass needs from the surrounding replay file.
type Input struct {
	Payload []byte
	Params  network.Params
	// Objects is the object name table, indexed by object id.
	Objects []string
	Spawns  []network.SpawnTrajectory
	Cache   map[network.ObjectID]*network.CacheInfo
	// Decoder and Trajectories default to the basic implementations for
	// Params.Version when nil.
	Decoder      attributes.Decoder
	Trajectories network.TrajectoryDecoder
	TotalFrames  int
	GoalFrames   []int
	Tuning       tuning.Tuning
}

// Decode runs one pass over in.Payload. On failure the returned error is a
// *network.DecodeError and the partially filled accumulator is returned
// alongside it.
func Decode(in Input) (*frames.Data, error) {
	if in.Decoder == nil {
		in.Decoder = attributes.NewBasicDecoder(in.Params.Version)
	}
	if in.Trajectories == nil {
		in.Trajectories = network.SpawnDecoder{NetVersion: in.Params.Version.Net}
	}
	dec := &network.FrameDecoder{
		Params:       in.Params,
		Objects:      in.Objects,
		Spawns:       in.Spawns,
		Cache:        in.Cache,
		Attributes:   in.Decoder,
		Trajectories: in.Trajectories,
	}
	x := handlers.NewDispatcher(in.Objects, in.TotalFrames, in.GoalFrames, in.Tuning)
	r := bitstream.NewReader(in.Payload)
	actors := map[network.ActorID]network.ObjectID{}

	for n := 0; !r.IsEmpty() && n < in.TotalFrames; n++ {
		f, end, err := dec.DecodeFrame(r, actors)
		if err != nil {
			return x.Data, wrap(n, err, dec.Context(actors))
		}
		if end {
			break
		}
		x.Apply(f)
	}

	if in.Params.HasTrailer {
		v, ok := r.ReadU32()
		if !ok {
			return x.Data, &network.DecodeError{
				Frame: x.Data.Len(),
				Err:   &network.FrameError{Kind: network.ErrNotEnoughData, What: "Trailer"},
			}
		}
		log.Debug().Uint32("trailer", v).Msg("stream trailer")
	}
	log.Debug().
		Int("frames", x.Data.Len()).
		Int("players", len(x.Data.Players)).
		Int("demolitions", len(x.Data.Demolitions)).
		Msg("decode pass complete")
	return x.Data, nil
}

func wrap(frame int, err error, ctx *network.FrameContext) error {
	var fe *network.FrameError
	if !errors.As(err, &fe) {
		fe = &network.FrameError{Kind: network.ErrAttribute, Err: fmt.Errorf("unexpected decoder error: %w", err)}
	}
	return &network.DecodeError{Frame: frame, Err: fe, Context: ctx}
}
