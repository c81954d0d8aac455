package network

import (
	"errors"
	"math"

	"rlreplay.dev/internal/attributes"
	"rlreplay.dev/internal/bitstream"
)

// FrameDecoder decodes one frame at a time from a network stream. It holds
// only read-only tables; the live actor map is owned by the caller.
type FrameDecoder struct {
	Params       Params
	Objects      []string
	Spawns       []SpawnTrajectory
	Cache        map[ObjectID]*CacheInfo
	Attributes   attributes.Decoder
	Trajectories TrajectoryDecoder

	newActors []NewActor
	deleted   []ActorID
	updated   []UpdatedAttribute
}

func validTime(v float32) bool {
	if math.IsNaN(float64(v)) || v < 0 {
		return false
	}
	return v == 0 || v >= 1e-10
}

// DecodeFrame reads the next frame. end is true when the stream's
// zero-time, zero-delta sentinel was read. actors maps live actor ids to
// their object id and is updated in place.
func (d *FrameDecoder) DecodeFrame(r *bitstream.Reader, actors map[ActorID]ObjectID) (frame Frame, end bool, err error) {
	time, ok := r.ReadF32()
	if !ok {
		return frame, false, &FrameError{Kind: ErrNotEnoughData, What: "Time"}
	}
	if !validTime(time) {
		return frame, false, &FrameError{Kind: ErrTimeOutOfRange, Time: time}
	}
	delta, ok := r.ReadF32()
	if !ok {
		return frame, false, &FrameError{Kind: ErrNotEnoughData, What: "Delta"}
	}
	if !validTime(delta) {
		return frame, false, &FrameError{Kind: ErrDeltaOutOfRange, Delta: delta}
	}
	if time == 0 && delta == 0 {
		return frame, true, nil
	}

	d.newActors = d.newActors[:0]
	d.deleted = d.deleted[:0]
	d.updated = d.updated[:0]

	for {
		more, ok := r.ReadBit()
		if !ok {
			return frame, false, &FrameError{Kind: ErrNotEnoughData, What: "Actor data"}
		}
		if !more {
			break
		}
		if !r.HasBits(d.Params.ChannelBits) {
			return frame, false, &FrameError{Kind: ErrNotEnoughData, What: "Actor Id"}
		}
		actor := ActorID(r.MustReadBoundedValue(d.Params.ChannelBits, uint64(d.Params.MaxChannels)))

		alive, ok := r.ReadBit()
		if !ok {
			return frame, false, &FrameError{Kind: ErrNotEnoughData, What: "Is actor alive"}
		}
		if !alive {
			d.deleted = append(d.deleted, actor)
			delete(actors, actor)
			continue
		}

		isNew, ok := r.ReadBit()
		if !ok {
			return frame, false, &FrameError{Kind: ErrNotEnoughData, What: "Is new actor"}
		}
		if isNew {
			na, ferr := d.decodeNewActor(r, actor)
			if ferr != nil {
				return frame, false, ferr
			}
			actors[actor] = na.ObjectID
			d.newActors = append(d.newActors, na)
			continue
		}

		if ferr := d.decodeUpdates(r, actor, actors); ferr != nil {
			return frame, false, ferr
		}
	}

	if len(d.newActors) > 0 {
		frame.NewActors = append([]NewActor(nil), d.newActors...)
	}
	if len(d.deleted) > 0 {
		frame.DeletedActors = append([]ActorID(nil), d.deleted...)
	}
	if len(d.updated) > 0 {
		frame.Updated = append([]UpdatedAttribute(nil), d.updated...)
	}
	frame.Time = time
	frame.Delta = delta
	return frame, false, nil
}

func (d *FrameDecoder) decodeNewActor(r *bitstream.Reader, actor ActorID) (NewActor, *FrameError) {
	na := NewActor{ActorID: actor}
	if d.Params.HasNameID {
		v, ok := r.ReadI32()
		if !ok {
			return na, &FrameError{Kind: ErrNotEnoughData, What: "Name id", Actor: actor}
		}
		na.NameID = &v
	}
	if _, ok := r.ReadBit(); !ok {
		return na, &FrameError{Kind: ErrNotEnoughData, What: "New actor reserved bit", Actor: actor}
	}
	obj, ok := r.ReadI32()
	if !ok {
		return na, &FrameError{Kind: ErrNotEnoughData, What: "Object id", Actor: actor}
	}
	na.ObjectID = ObjectID(obj)
	if obj < 0 || int(obj) >= len(d.Spawns) {
		return na, &FrameError{Kind: ErrObjectIDOutOfRange, Actor: actor, Object: na.ObjectID}
	}
	traj, ok := d.Trajectories.DecodeTrajectory(r, d.Spawns[obj])
	if !ok {
		return na, &FrameError{Kind: ErrNotEnoughData, What: "New Actor", Actor: actor, Object: na.ObjectID}
	}
	na.Trajectory = traj
	return na, nil
}

func (d *FrameDecoder) decodeUpdates(r *bitstream.Reader, actor ActorID, actors map[ActorID]ObjectID) *FrameError {
	obj, ok := actors[actor]
	if !ok {
		return &FrameError{Kind: ErrMissingActor, Actor: actor}
	}
	cache, ok := d.Cache[obj]
	if !ok {
		return &FrameError{Kind: ErrMissingCache, Actor: actor, Object: obj}
	}

	for {
		more, ok := r.ReadBit()
		if !ok {
			return &FrameError{Kind: ErrNotEnoughData, What: "Is prop present", Actor: actor, Object: obj}
		}
		if !more {
			return nil
		}
		if !r.HasBits(cache.PropIDBits) {
			return &FrameError{Kind: ErrNotEnoughData, What: "Prop id", Actor: actor, Object: obj}
		}
		stream := StreamID(r.MustReadBoundedValue(cache.PropIDBits, uint64(cache.MaxPropID)))
		attr, ok := cache.Attributes[stream]
		if !ok {
			return &FrameError{Kind: ErrMissingAttribute, Actor: actor, Object: obj, Stream: stream}
		}
		v, err := d.Attributes.Decode(attr.Tag, r)
		if err != nil {
			kind := ErrAttribute
			if errors.Is(err, attributes.ErrUnimplemented) {
				kind = ErrMissingAttribute
			}
			return &FrameError{Kind: kind, Actor: actor, Object: obj, Stream: stream, ParentID: attr.ObjectID, Err: err}
		}
		d.updated = append(d.updated, UpdatedAttribute{
			ActorID:  actor,
			StreamID: stream,
			ObjectID: attr.ObjectID,
			Value:    v,
		})
	}
}

// Context assembles the diagnostic snapshot for a failed frame. Only call it
// on the error path.
func (d *FrameDecoder) Context(actors map[ActorID]ObjectID) *FrameContext {
	objAttrs := make(map[ObjectID]map[StreamID]ObjectID, len(d.Cache))
	for obj, c := range d.Cache {
		m := make(map[StreamID]ObjectID, len(c.Attributes))
		for s, a := range c.Attributes {
			m[s] = a.ObjectID
		}
		objAttrs[obj] = m
	}
	live := make(map[ActorID]ObjectID, len(actors))
	for a, o := range actors {
		live[a] = o
	}
	return &FrameContext{
		Objects:          d.Objects,
		ObjectAttributes: objAttrs,
		Actors:           live,
		NewActors:        append([]NewActor(nil), d.newActors...),
		DeletedActors:    append([]ActorID(nil), d.deleted...),
		Updated:          append([]UpdatedAttribute(nil), d.updated...),
	}
}
