package network

import (
	"rlreplay.dev/internal/attributes"
	"rlreplay.dev/internal/bitstream"
)

// Encoder writes network streams in the layout FrameDecoder reads. It is
// used to build fixtures for tests and tooling.
type Encoder struct {
	W      bitstream.Writer
	Params Params
	Cache  map[ObjectID]*CacheInfo
}

func (e *Encoder) BeginFrame(time, delta float32) {
	e.W.WriteF32(time)
	e.W.WriteF32(delta)
}

func (e *Encoder) actorHeader(actor ActorID) {
	e.W.WriteBit(true)
	e.W.WriteBoundedValue(uint64(actor), uint64(e.Params.MaxChannels))
}

func (e *Encoder) NewActor(actor ActorID, obj ObjectID, nameID int32, t Trajectory) {
	e.actorHeader(actor)
	e.W.WriteBit(true) // alive
	e.W.WriteBit(true) // new
	if e.Params.HasNameID {
		e.W.WriteI32(nameID)
	}
	e.W.WriteBit(false)
	e.W.WriteI32(int32(obj))
	if t.Location != nil {
		attributes.EncodeVector3i(&e.W, *t.Location, e.Params.Version.Net)
	}
	if t.Rotation != nil {
		for _, c := range []*int8{t.Rotation.Yaw, t.Rotation.Pitch, t.Rotation.Roll} {
			e.W.WriteBit(c != nil)
			if c != nil {
				e.W.WriteU8(uint8(*c))
			}
		}
	}
}

func (e *Encoder) Delete(actor ActorID) {
	e.actorHeader(actor)
	e.W.WriteBit(false)
}

// BeginUpdate starts an attribute update block for a live actor.
func (e *Encoder) BeginUpdate(actor ActorID) {
	e.actorHeader(actor)
	e.W.WriteBit(true)
	e.W.WriteBit(false)
}

// Property writes one attribute of an actor of object obj; value writes the
// attribute payload.
func (e *Encoder) Property(obj ObjectID, stream StreamID, value func(w *bitstream.Writer)) {
	e.W.WriteBit(true)
	e.W.WriteBoundedValue(uint64(stream), uint64(e.Cache[obj].MaxPropID))
	value(&e.W)
}

func (e *Encoder) EndUpdate() { e.W.WriteBit(false) }

func (e *Encoder) EndFrame() { e.W.WriteBit(false) }

// EndStream writes the zero time and delta sentinel.
func (e *Encoder) EndStream() {
	e.BeginFrame(0, 0)
}

func (e *Encoder) Trailer(v uint32) { e.W.WriteU32(v) }

func (e *Encoder) Bytes() []byte { return e.W.Bytes() }
