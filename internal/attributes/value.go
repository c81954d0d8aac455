// Package attributes holds decoded actor attribute values and a reference
// decoder for the common attribute kinds.
package attributes

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUnimplemented is returned for attribute kinds the decoder does not
	// understand. The frame decoder reports these as missing attributes.
	ErrUnimplemented = errors.New("attribute kind not implemented")
	ErrTruncated     = errors.New("not enough data")
)

type Tag int

const (
	TagBoolean Tag = iota + 1
	TagByte
	TagInt
	TagQWord
	TagFloat
	TagString
	TagEnum
	TagActiveActor
	TagFlaggedInt
	TagRigidBody
	TagDemolish
	TagPickup
	TagPickupNew
	TagTeamPaint
	TagCamSettings
	TagDamageState
	TagReplicatedBoost
	TagUniqueID
	TagPartyLeader
	TagLoadout
	TagLoadoutOnline
	TagReservation
	TagStatEvent
)

var tagNames = map[Tag]string{
	TagBoolean:         "boolean",
	TagByte:            "byte",
	TagInt:             "int",
	TagQWord:           "qword",
	TagFloat:           "float",
	TagString:          "string",
	TagEnum:            "enum",
	TagActiveActor:     "active_actor",
	TagFlaggedInt:      "flagged_int",
	TagRigidBody:       "rigid_body",
	TagDemolish:        "demolish",
	TagPickup:          "pickup",
	TagPickupNew:       "pickup_new",
	TagTeamPaint:       "team_paint",
	TagCamSettings:     "cam_settings",
	TagDamageState:     "damage_state",
	TagReplicatedBoost: "replicated_boost",
	TagUniqueID:        "unique_id",
	TagPartyLeader:     "party_leader",
	TagLoadout:         "loadout",
	TagLoadoutOnline:   "loadout_online",
	TagReservation:     "reservation",
	TagStatEvent:       "stat_event",
}

var tagsByName = func() map[string]Tag {
	m := make(map[string]Tag, len(tagNames))
	for t, n := range tagNames {
		m[n] = t
	}
	return m
}()

func (t Tag) String() string {
	if n, ok := tagNames[t]; ok {
		return n
	}
	return fmt.Sprintf("tag(%d)", int(t))
}

func ParseTag(s string) (Tag, error) {
	t, ok := tagsByName[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("unknown attribute type %q (known: %s)", s, strings.Join(TagNames(), ", "))
	}
	return t, nil
}

func TagNames() []string {
	out := make([]string, 0, len(tagNames))
	for _, n := range tagNames {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Value is one decoded attribute value.
type Value interface {
	Tag() Tag
}

type (
	Boolean bool
	Byte    uint8
	Int     int32
	QWord   uint64
	Float   float32
	String  string
	Enum    uint16
)

func (Boolean) Tag() Tag { return TagBoolean }
func (Byte) Tag() Tag    { return TagByte }
func (Int) Tag() Tag     { return TagInt }
func (QWord) Tag() Tag   { return TagQWord }
func (Float) Tag() Tag   { return TagFloat }
func (String) Tag() Tag  { return TagString }
func (Enum) Tag() Tag    { return TagEnum }

// ActiveActor references another actor by id. Actor is -1 when unset.
type ActiveActor struct {
	Active bool
	Actor  int32
}

func (ActiveActor) Tag() Tag { return TagActiveActor }

// FlaggedInt is used for object references such as the game class.
type FlaggedInt struct {
	Flag  bool
	Value int32
}

func (FlaggedInt) Tag() Tag { return TagFlaggedInt }

type RigidBody struct {
	Sleeping        bool
	Location        Vector3f
	Rotation        Quaternion
	LinearVelocity  *Vector3f
	AngularVelocity *Vector3f
}

func (RigidBody) Tag() Tag { return TagRigidBody }

// Demolish carries car actor ids, not player ids.
type Demolish struct {
	AttackerFlag   bool
	Attacker       int32
	VictimFlag     bool
	Victim         int32
	AttackVelocity Vector3f
	VictimVelocity Vector3f
}

func (Demolish) Tag() Tag { return TagDemolish }

type Pickup struct {
	Instigator *int32
	PickedUp   bool
}

func (Pickup) Tag() Tag { return TagPickup }

type PickupNew struct {
	Instigator *int32
	PickedUp   uint8
}

func (PickupNew) Tag() Tag { return TagPickupNew }

type TeamPaint struct {
	Team          uint8
	PrimaryColor  uint8
	AccentColor   uint8
	PrimaryFinish uint32
	AccentFinish  uint32
}

func (TeamPaint) Tag() Tag { return TagTeamPaint }

type CamSettings struct {
	FOV        float32
	Height     float32
	Angle      float32
	Distance   float32
	Stiffness  float32
	Swivel     float32
	Transition *float32
}

func (CamSettings) Tag() Tag { return TagCamSettings }

type DamageState struct {
	TileState    uint8
	Damaged      bool
	Offender     int32
	BallPosition Vector3i
	DirectHit    bool
	Unknown      bool
}

func (DamageState) Tag() Tag { return TagDamageState }

type ReplicatedBoost struct {
	GrantCount  uint8
	BoostAmount uint8
	Unused1     uint8
	Unused2     uint8
}

func (ReplicatedBoost) Tag() Tag { return TagReplicatedBoost }

type UniqueID struct {
	System  uint8
	Remote  RemoteID
	LocalID uint8
}

func (UniqueID) Tag() Tag { return TagUniqueID }

// PartyLeader is nil-ID when the player is not in a party.
type PartyLeader struct {
	ID *UniqueID
}

func (PartyLeader) Tag() Tag { return TagPartyLeader }
