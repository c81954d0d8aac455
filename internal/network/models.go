// Package network decodes the replay's replicated network stream into
// per-tick frames of actor creations, attribute updates and deletions.
package network

import (
	"rlreplay.dev/internal/attributes"
	"rlreplay.dev/internal/bitstream"
)

type (
	ActorID  int32
	ObjectID int32
	StreamID int32
)

type Version = attributes.Version

// SpawnTrajectory classifies what initial pose a new actor of a given
// object carries on the wire.
type SpawnTrajectory int

const (
	SpawnNone SpawnTrajectory = iota
	SpawnLocation
	SpawnLocationAndRotation
)

func ParseSpawnTrajectory(s string) (SpawnTrajectory, bool) {
	switch s {
	case "", "none":
		return SpawnNone, true
	case "location":
		return SpawnLocation, true
	case "location_rotation", "location_and_rotation":
		return SpawnLocationAndRotation, true
	}
	return SpawnNone, false
}

func (s SpawnTrajectory) String() string {
	switch s {
	case SpawnLocation:
		return "location"
	case SpawnLocationAndRotation:
		return "location_rotation"
	}
	return "none"
}

type Trajectory struct {
	Location *attributes.Vector3i `json:"location,omitempty"`
	Rotation *attributes.Rotation `json:"rotation,omitempty"`
}

type NewActor struct {
	ActorID    ActorID    `json:"actor_id"`
	NameID     *int32     `json:"name_id,omitempty"`
	ObjectID   ObjectID   `json:"object_id"`
	Trajectory Trajectory `json:"initial_trajectory"`
}

type UpdatedAttribute struct {
	ActorID  ActorID          `json:"actor_id"`
	StreamID StreamID         `json:"stream_id"`
	ObjectID ObjectID         `json:"object_id"`
	Value    attributes.Value `json:"-"`
}

type Frame struct {
	Time          float32            `json:"time"`
	Delta         float32            `json:"delta"`
	NewActors     []NewActor         `json:"new_actors"`
	DeletedActors []ActorID          `json:"deleted_actors"`
	Updated       []UpdatedAttribute `json:"updated_actors"`
}

// ObjectAttribute is one entry of a class's property cache.
type ObjectAttribute struct {
	Tag      attributes.Tag
	ObjectID ObjectID
}

// CacheInfo is the property cache of one archetype.
type CacheInfo struct {
	MaxPropID  uint32
	PropIDBits int
	Attributes map[StreamID]ObjectAttribute
}

func NewCacheInfo(maxPropID uint32, attrs map[StreamID]ObjectAttribute) *CacheInfo {
	return &CacheInfo{
		MaxPropID:  maxPropID,
		PropIDBits: bitstream.BoundedWidth(uint64(maxPropID)),
		Attributes: attrs,
	}
}

// Params are the protocol parameters of one decode pass. HasNameID and
// HasTrailer are supplied by the caller because the cutoffs move with the
// wire format.
type Params struct {
	Version     Version
	MaxChannels uint32
	ChannelBits int
	HasNameID   bool
	HasTrailer  bool
}

func NewParams(v Version, maxChannels uint32, hasNameID, hasTrailer bool) Params {
	return Params{
		Version:     v,
		MaxChannels: maxChannels,
		ChannelBits: bitstream.BoundedWidth(uint64(maxChannels)),
		HasNameID:   hasNameID,
		HasTrailer:  hasTrailer,
	}
}

// TrajectoryDecoder reads the initial pose of a newly spawned actor.
type TrajectoryDecoder interface {
	DecodeTrajectory(r *bitstream.Reader, kind SpawnTrajectory) (Trajectory, bool)
}

// SpawnDecoder is the standard TrajectoryDecoder.
type SpawnDecoder struct {
	NetVersion int32
}

func (d SpawnDecoder) DecodeTrajectory(r *bitstream.Reader, kind SpawnTrajectory) (Trajectory, bool) {
	var t Trajectory
	if kind == SpawnNone {
		return t, true
	}
	loc, ok := attributes.DecodeVector3i(r, d.NetVersion)
	if !ok {
		return t, false
	}
	t.Location = &loc
	if kind == SpawnLocationAndRotation {
		rot, ok := attributes.DecodeRotation(r)
		if !ok {
			return t, false
		}
		t.Rotation = &rot
	}
	return t, true
}
