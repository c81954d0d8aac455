package attributes

import (
	"fmt"
	"math"

	"rlreplay.dev/internal/bitstream"
)

// Encode writes v in the layout BasicDecoder reads for version. It covers
// the kinds fixtures and tools need; others return ErrUnimplemented.
func Encode(w *bitstream.Writer, v Value, version Version) error {
	net := version.Net
	switch v := v.(type) {
	case Boolean:
		w.WriteBit(bool(v))
	case Byte:
		w.WriteU8(uint8(v))
	case Int:
		w.WriteI32(int32(v))
	case QWord:
		w.WriteU64(uint64(v))
	case Float:
		w.WriteF32(float32(v))
	case String:
		return EncodeString(w, string(v))
	case ActiveActor:
		w.WriteBit(v.Active)
		w.WriteI32(v.Actor)
	case FlaggedInt:
		w.WriteBit(v.Flag)
		w.WriteI32(v.Value)
	case Demolish:
		w.WriteBit(v.AttackerFlag)
		w.WriteI32(v.Attacker)
		w.WriteBit(v.VictimFlag)
		w.WriteI32(v.Victim)
		EncodeVector3f(w, v.AttackVelocity, net)
		EncodeVector3f(w, v.VictimVelocity, net)
	case Pickup:
		writeOptionalI32(w, v.Instigator)
		w.WriteBit(v.PickedUp)
	case PickupNew:
		writeOptionalI32(w, v.Instigator)
		w.WriteU8(v.PickedUp)
	case DamageState:
		w.WriteU8(v.TileState)
		w.WriteBit(v.Damaged)
		w.WriteI32(v.Offender)
		EncodeVector3i(w, v.BallPosition, net)
		w.WriteBit(v.DirectHit)
		w.WriteBit(v.Unknown)
	case RigidBody:
		if net < 7 {
			return fmt.Errorf("rigid body for net version %d: %w", net, ErrUnimplemented)
		}
		w.WriteBit(v.Sleeping)
		EncodeVector3f(w, v.Location, net)
		EncodeQuaternion(w, v.Rotation)
		if !v.Sleeping {
			var lin, ang Vector3f
			if v.LinearVelocity != nil {
				lin = *v.LinearVelocity
			}
			if v.AngularVelocity != nil {
				ang = *v.AngularVelocity
			}
			EncodeVector3f(w, lin, net)
			EncodeVector3f(w, ang, net)
		}
	default:
		return fmt.Errorf("encode %s: %w", v.Tag(), ErrUnimplemented)
	}
	return nil
}

func writeOptionalI32(w *bitstream.Writer, v *int32) {
	w.WriteBit(v != nil)
	if v != nil {
		w.WriteI32(*v)
	}
}

// EncodeVector3f writes v in hundredths, rounding to the nearest unit.
func EncodeVector3f(w *bitstream.Writer, v Vector3f, netVersion int32) {
	round := func(f float32) int32 { return int32(math.Round(float64(f) * 100)) }
	EncodeVector3i(w, Vector3i{X: round(v.X), Y: round(v.Y), Z: round(v.Z)}, netVersion)
}

// EncodeQuaternion is the inverse of DecodeQuaternion. The largest
// component is dropped and recovered from the unit-length constraint.
func EncodeQuaternion(w *bitstream.Writer, q Quaternion) {
	c := [4]float32{q.X, q.Y, q.Z, q.W}
	largest := 0
	for i := 1; i < 4; i++ {
		if math.Abs(float64(c[i])) > math.Abs(float64(c[largest])) {
			largest = i
		}
	}
	if c[largest] < 0 {
		for i := range c {
			c[i] = -c[i]
		}
	}
	w.WriteBits(uint64(largest), 2)
	maxValue := float64((uint64(1) << quatComponentBits) - 1)
	for i, v := range c {
		if i == largest {
			continue
		}
		packed := math.Round((float64(v)/(2*quatMaxValue) + 0.5) * maxValue)
		packed = math.Max(0, math.Min(maxValue, packed))
		w.WriteBits(uint64(packed), quatComponentBits)
	}
}
