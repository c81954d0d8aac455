package attributes

import (
	"fmt"

	"rlreplay.dev/internal/bitstream"
)

// Version is the replay's engine, licensee and net version triplet.
type Version struct {
	Engine   int32 `yaml:"engine" json:"engine"`
	Licensee int32 `yaml:"licensee" json:"licensee"`
	Net      int32 `yaml:"net" json:"net"`
}

// AtLeast compares triplets lexicographically.
func (v Version) AtLeast(o Version) bool {
	if v.Engine != o.Engine {
		return v.Engine > o.Engine
	}
	if v.Licensee != o.Licensee {
		return v.Licensee > o.Licensee
	}
	return v.Net >= o.Net
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Engine, v.Licensee, v.Net)
}

// Decoder turns a type tag and the bits at the cursor into a Value.
type Decoder interface {
	Decode(tag Tag, r *bitstream.Reader) (Value, error)
}

var camTransitionVersion = Version{Engine: 868, Licensee: 20, Net: 0}

// BasicDecoder decodes the attribute kinds the semantic handlers consume.
// Cosmetic loadouts, reservations and stat events return ErrUnimplemented.
type BasicDecoder struct {
	Version Version
}

func NewBasicDecoder(v Version) *BasicDecoder {
	return &BasicDecoder{Version: v}
}

func truncated(tag Tag) error {
	return fmt.Errorf("%s: %w", tag, ErrTruncated)
}

func (d *BasicDecoder) Decode(tag Tag, r *bitstream.Reader) (Value, error) {
	net := d.Version.Net
	switch tag {
	case TagBoolean:
		b, ok := r.ReadBit()
		if !ok {
			return nil, truncated(tag)
		}
		return Boolean(b), nil
	case TagByte:
		b, ok := r.ReadU8()
		if !ok {
			return nil, truncated(tag)
		}
		return Byte(b), nil
	case TagInt:
		v, ok := r.ReadI32()
		if !ok {
			return nil, truncated(tag)
		}
		return Int(v), nil
	case TagQWord:
		v, ok := r.ReadU64()
		if !ok {
			return nil, truncated(tag)
		}
		return QWord(v), nil
	case TagFloat:
		v, ok := r.ReadF32()
		if !ok {
			return nil, truncated(tag)
		}
		return Float(v), nil
	case TagString:
		s, err := decodeString(r)
		if err != nil {
			return nil, err
		}
		return String(s), nil
	case TagEnum:
		v, ok := r.ReadBits(11)
		if !ok {
			return nil, truncated(tag)
		}
		return Enum(v), nil
	case TagActiveActor:
		active, ok1 := r.ReadBit()
		actor, ok2 := r.ReadI32()
		if !ok1 || !ok2 {
			return nil, truncated(tag)
		}
		return ActiveActor{Active: active, Actor: actor}, nil
	case TagFlaggedInt:
		flag, ok1 := r.ReadBit()
		v, ok2 := r.ReadI32()
		if !ok1 || !ok2 {
			return nil, truncated(tag)
		}
		return FlaggedInt{Flag: flag, Value: v}, nil
	case TagRigidBody:
		return decodeRigidBody(r, net)
	case TagDemolish:
		var d Demolish
		var ok1, ok2, ok3, ok4, ok5, ok6 bool
		d.AttackerFlag, ok1 = r.ReadBit()
		d.Attacker, ok2 = r.ReadI32()
		d.VictimFlag, ok3 = r.ReadBit()
		d.Victim, ok4 = r.ReadI32()
		d.AttackVelocity, ok5 = DecodeVector3f(r, net)
		d.VictimVelocity, ok6 = DecodeVector3f(r, net)
		if !(ok1 && ok2 && ok3 && ok4 && ok5 && ok6) {
			return nil, truncated(tag)
		}
		return d, nil
	case TagPickup:
		inst, ok := readOptionalI32(r)
		if !ok {
			return nil, truncated(tag)
		}
		picked, ok := r.ReadBit()
		if !ok {
			return nil, truncated(tag)
		}
		return Pickup{Instigator: inst, PickedUp: picked}, nil
	case TagPickupNew:
		inst, ok := readOptionalI32(r)
		if !ok {
			return nil, truncated(tag)
		}
		picked, ok := r.ReadU8()
		if !ok {
			return nil, truncated(tag)
		}
		return PickupNew{Instigator: inst, PickedUp: picked}, nil
	case TagTeamPaint:
		var p TeamPaint
		var ok1, ok2, ok3, ok4, ok5 bool
		p.Team, ok1 = r.ReadU8()
		p.PrimaryColor, ok2 = r.ReadU8()
		p.AccentColor, ok3 = r.ReadU8()
		p.PrimaryFinish, ok4 = r.ReadU32()
		p.AccentFinish, ok5 = r.ReadU32()
		if !(ok1 && ok2 && ok3 && ok4 && ok5) {
			return nil, truncated(tag)
		}
		return p, nil
	case TagCamSettings:
		var c CamSettings
		fields := []*float32{&c.FOV, &c.Height, &c.Angle, &c.Distance, &c.Stiffness, &c.Swivel}
		for _, f := range fields {
			v, ok := r.ReadF32()
			if !ok {
				return nil, truncated(tag)
			}
			*f = v
		}
		if d.Version.AtLeast(camTransitionVersion) {
			v, ok := r.ReadF32()
			if !ok {
				return nil, truncated(tag)
			}
			c.Transition = &v
		}
		return c, nil
	case TagDamageState:
		var s DamageState
		var ok1, ok2, ok3, ok4, ok5, ok6 bool
		s.TileState, ok1 = r.ReadU8()
		s.Damaged, ok2 = r.ReadBit()
		s.Offender, ok3 = r.ReadI32()
		s.BallPosition, ok4 = DecodeVector3i(r, net)
		s.DirectHit, ok5 = r.ReadBit()
		s.Unknown, ok6 = r.ReadBit()
		if !(ok1 && ok2 && ok3 && ok4 && ok5 && ok6) {
			return nil, truncated(tag)
		}
		return s, nil
	case TagReplicatedBoost:
		b, ok := r.ReadBytes(4)
		if !ok {
			return nil, truncated(tag)
		}
		return ReplicatedBoost{GrantCount: b[0], BoostAmount: b[1], Unused1: b[2], Unused2: b[3]}, nil
	case TagUniqueID:
		id, err := decodeUniqueID(r, net)
		if err != nil {
			return nil, err
		}
		return id, nil
	case TagPartyLeader:
		system, ok := r.ReadU8()
		if !ok {
			return nil, truncated(tag)
		}
		if system == 0 {
			return PartyLeader{}, nil
		}
		id, err := decodeUniqueIDBody(r, system, net)
		if err != nil {
			return nil, err
		}
		return PartyLeader{ID: &id}, nil
	}
	return nil, fmt.Errorf("%s: %w", tag, ErrUnimplemented)
}

func readOptionalI32(r *bitstream.Reader) (*int32, bool) {
	present, ok := r.ReadBit()
	if !ok {
		return nil, false
	}
	if !present {
		return nil, true
	}
	v, ok := r.ReadI32()
	if !ok {
		return nil, false
	}
	return &v, true
}

func decodeRigidBody(r *bitstream.Reader, net int32) (Value, error) {
	if net < 7 {
		return nil, fmt.Errorf("rigid body for net version %d: %w", net, ErrUnimplemented)
	}
	sleeping, ok := r.ReadBit()
	if !ok {
		return nil, truncated(TagRigidBody)
	}
	loc, ok := DecodeVector3f(r, net)
	if !ok {
		return nil, truncated(TagRigidBody)
	}
	rot, ok := DecodeQuaternion(r)
	if !ok {
		return nil, truncated(TagRigidBody)
	}
	rb := RigidBody{Sleeping: sleeping, Location: loc, Rotation: rot}
	if !sleeping {
		lin, ok1 := DecodeVector3f(r, net)
		ang, ok2 := DecodeVector3f(r, net)
		if !ok1 || !ok2 {
			return nil, truncated(TagRigidBody)
		}
		rb.LinearVelocity = &lin
		rb.AngularVelocity = &ang
	}
	return rb, nil
}
