package frames

import (
	"sort"

	"rlreplay.dev/internal/attributes"
)

type BallType string

const (
	BallDefault    BallType = "default"
	BallBasketball BallType = "basketball"
	BallPuck       BallType = "puck"
	BallCube       BallType = "cube"
	BallBreakout   BallType = "breakout"
)

type Ball struct {
	Type    *Series[BallType] `json:"ball_type"`
	Body    *RigidBodySeries  `json:"rigid_body"`
	HitTeam *Series[uint8]    `json:"hit_team_num"`
	// Phase is the breakout ball's damage index.
	Phase *Series[int32] `json:"dropshot_phase"`
}

func newBall(capacity int) *Ball {
	return &Ball{
		Type:    NewSeries[BallType](capacity, 0),
		Body:    NewRigidBodySeries(capacity, 0),
		HitTeam: NewSeries[uint8](capacity, 0),
		Phase:   NewSeries[int32](capacity, 0),
	}
}

func (b *Ball) extend(tick int) {
	b.Type.Extend(tick)
	b.Body.Extend(tick)
	b.HitTeam.Extend(tick)
	b.Phase.Extend(tick)
}

type Team struct {
	ActorID  int32          `json:"actor_id"`
	IsOrange bool           `json:"is_orange"`
	Name     string         `json:"name,omitempty"`
	Score    *Series[int32] `json:"score"`
}

// Demolition is keyed by player actor ids.
type Demolition struct {
	Frame            int                 `json:"frame"`
	Attacker         int32               `json:"attacker"`
	Victim           int32               `json:"victim"`
	AttackerVelocity attributes.Vector3f `json:"attacker_velocity"`
	VictimVelocity   attributes.Vector3f `json:"victim_velocity"`
}

type BoostPickup struct {
	Frame    int     `json:"frame"`
	Player   int32   `json:"player"`
	Pad      int32   `json:"pad"`
	Previous float32 `json:"previous"`
	Amount   float32 `json:"amount"`
}

// DropshotTileCount is the number of canonical tiles on the dropshot arena.
const DropshotTileCount = 140

type Dropshot struct {
	Tiles        map[uint32]*Series[uint8] `json:"tiles"`
	DamageEvents []TileDamageEvent         `json:"damage_events"`
	BallEvents   []BallPhaseEvent          `json:"ball_events"`
}

type TileHit struct {
	Tile      uint32 `json:"tile"`
	State     uint8  `json:"state"`
	DirectHit bool   `json:"direct_hit"`
}

// TileDamageEvent groups the tiles one offender damaged in one tick.
type TileDamageEvent struct {
	Frame    int   `json:"frame"`
	Offender int32 `json:"offender"`
	// Player is the offender's player actor id, or -1 when unresolved.
	Player int32     `json:"player"`
	Tiles  []TileHit `json:"tiles"`
}

type BallPhaseEvent struct {
	Frame int   `json:"frame"`
	Phase int32 `json:"phase"`
	Team  uint8 `json:"team"`
}

func newDropshot() *Dropshot {
	return &Dropshot{Tiles: map[uint32]*Series[uint8]{}}
}

func (d *Dropshot) extend(tick int) {
	for _, s := range d.Tiles {
		s.Extend(tick)
	}
}

// Tile returns the state column of a canonical tile, creating it at tick.
func (d *Dropshot) Tile(id uint32, capacity, tick int) *Series[uint8] {
	if s, ok := d.Tiles[id]; ok {
		return s
	}
	s := NewSeries[uint8](capacity, tick)
	s.Extend(tick)
	d.Tiles[id] = s
	return s
}

// AddTileHit appends hit to the event for (tick, offender), creating it.
func (d *Dropshot) AddTileHit(tick int, offender, player int32, hit TileHit) {
	for i := len(d.DamageEvents) - 1; i >= 0 && d.DamageEvents[i].Frame == tick; i-- {
		if d.DamageEvents[i].Offender == offender {
			d.DamageEvents[i].Tiles = append(d.DamageEvents[i].Tiles, hit)
			return
		}
	}
	d.DamageEvents = append(d.DamageEvents, TileDamageEvent{
		Frame:    tick,
		Offender: offender,
		Player:   player,
		Tiles:    []TileHit{hit},
	})
}

// TileIDs returns the known tile ids in ascending order.
func (d *Dropshot) TileIDs() []uint32 {
	ids := make([]uint32, 0, len(d.Tiles))
	for id := range d.Tiles {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
