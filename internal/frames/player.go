package frames

import (
	"rlreplay.dev/internal/attributes"
)

type Player struct {
	ActorID     int32  `json:"actor_id"`
	Name        string `json:"name,omitempty"`
	RemoteID    string `json:"remote_id,omitempty"`
	PartyLeader string `json:"party_leader,omitempty"`
	// TeamActor is the team actor id, or -1.
	TeamActor           int32                   `json:"team_actor"`
	Title               int32                   `json:"title,omitempty"`
	TotalXP             int32                   `json:"total_xp,omitempty"`
	SteeringSensitivity float32                 `json:"steering_sensitivity,omitempty"`
	Paint               *attributes.TeamPaint   `json:"paint,omitempty"`
	Camera              *attributes.CamSettings `json:"camera,omitempty"`

	Body      *RigidBodySeries `json:"rigid_body"`
	Throttle  *Series[uint8]   `json:"throttle"`
	Steer     *Series[uint8]   `json:"steer"`
	Handbrake *Series[bool]    `json:"handbrake"`
	Ping      *Series[uint8]   `json:"ping"`
	BallCam   *Series[bool]    `json:"ball_cam"`

	Boost        *Series[float32] `json:"boost"`
	BoostActive  *Series[uint8]   `json:"boost_active"`
	BoostCollect *Series[bool]    `json:"boost_collect"`
	BoostPickups int              `json:"boost_pickups"`

	JumpActive       *Series[uint8] `json:"jump_active"`
	DoubleJumpActive *Series[uint8] `json:"double_jump_active"`
	DodgeActive      *Series[uint8] `json:"dodge_active"`

	PowerUp         *Series[string] `json:"power_up"`
	PowerUpActive   *Series[bool]   `json:"power_up_active"`
	TimeTillPowerUp *Series[int32]  `json:"time_till_power_up"`
	RumbleItems     []RumbleItem    `json:"rumble_items"`

	MatchScore   *Series[int32] `json:"match_score"`
	MatchGoals   *Series[int32] `json:"match_goals"`
	MatchAssists *Series[int32] `json:"match_assists"`
	MatchSaves   *Series[int32] `json:"match_saves"`
	MatchShots   *Series[int32] `json:"match_shots"`

	// boostSetAt is the last tick an explicit boost amount arrived.
	boostSetAt int
}

// RumbleItem is one power-up a player held. UseFrame is nil until used.
type RumbleItem struct {
	Item     string `json:"item"`
	GetFrame int    `json:"frame_get"`
	UseFrame *int   `json:"frame_use,omitempty"`
	Demoed   bool   `json:"-"`
}

func newPlayer(actor int32, capacity, tick int) *Player {
	p := &Player{
		ActorID:          actor,
		TeamActor:        -1,
		Body:             NewRigidBodySeries(capacity, tick),
		Throttle:         NewSeries[uint8](capacity, tick),
		Steer:            NewSeries[uint8](capacity, tick),
		Handbrake:        NewSeries[bool](capacity, tick),
		Ping:             NewSeries[uint8](capacity, tick),
		BallCam:          NewSeries[bool](capacity, tick),
		Boost:            NewSeries[float32](capacity, tick),
		BoostActive:      NewSeries[uint8](capacity, tick),
		BoostCollect:     NewEventSeries[bool](capacity, tick),
		JumpActive:       NewSeries[uint8](capacity, tick),
		DoubleJumpActive: NewSeries[uint8](capacity, tick),
		DodgeActive:      NewSeries[uint8](capacity, tick),
		PowerUp:          NewSeries[string](capacity, tick),
		PowerUpActive:    NewSeries[bool](capacity, tick),
		TimeTillPowerUp:  NewSeries[int32](capacity, tick),
		MatchScore:       NewSeries[int32](capacity, tick),
		MatchGoals:       NewSeries[int32](capacity, tick),
		MatchAssists:     NewSeries[int32](capacity, tick),
		MatchSaves:       NewSeries[int32](capacity, tick),
		MatchShots:       NewSeries[int32](capacity, tick),
		boostSetAt:       -1,
	}
	p.extend(tick)
	return p
}

func (p *Player) bytes() []*Series[uint8] {
	return []*Series[uint8]{p.Throttle, p.Steer, p.Ping, p.BoostActive, p.JumpActive, p.DoubleJumpActive, p.DodgeActive}
}

func (p *Player) bools() []*Series[bool] {
	return []*Series[bool]{p.Handbrake, p.BallCam, p.BoostCollect, p.PowerUpActive}
}

func (p *Player) ints() []*Series[int32] {
	return []*Series[int32]{p.TimeTillPowerUp, p.MatchScore, p.MatchGoals, p.MatchAssists, p.MatchSaves, p.MatchShots}
}

func (p *Player) extend(tick int) {
	p.Body.Extend(tick)
	for _, s := range p.bytes() {
		s.Extend(tick)
	}
	for _, s := range p.bools() {
		s.Extend(tick)
	}
	for _, s := range p.ints() {
		s.Extend(tick)
	}
	p.Boost.Extend(tick)
	p.PowerUp.Extend(tick)
}

func (p *Player) advance(tick int, delta, rate float32) {
	p.extend(tick)
	if tick == 0 {
		return
	}
	if active, ok := p.BoostActive.Get(tick - 1); ok && active%2 == 1 {
		if prev, ok := p.Boost.Get(tick - 1); ok {
			p.Boost.Set(tick, drain(prev, delta, rate))
		}
	}
}

func drain(v, delta, rate float32) float32 {
	v -= delta * rate
	if v < 0 {
		return 0
	}
	return v
}

// SetBoostAmount records an explicit boost amount, which overrides any
// drain computed for this tick.
func (p *Player) SetBoostAmount(tick int, v float32) {
	p.Boost.Set(tick, v)
	p.boostSetAt = tick
}

// SetBoostActive records the boost component's active byte. On an
// off-to-on transition the first tick of drain is applied unless the
// amount was set explicitly this tick.
func (p *Player) SetBoostActive(tick int, active uint8, delta, rate float32) {
	wasActive := false
	if prev, ok := p.BoostActive.Get(tick - 1); ok {
		wasActive = prev%2 == 1
	}
	p.BoostActive.Set(tick, active)
	if active%2 == 1 && !wasActive && p.boostSetAt != tick {
		if prev, ok := p.Boost.Get(tick - 1); ok {
			p.Boost.Set(tick, drain(prev, delta, rate))
		}
	}
}

// ClearBoost is applied when the boost component is destroyed.
func (p *Player) ClearBoost(tick int) {
	p.BoostActive.Set(tick, 0)
	p.Boost.Clear(tick)
	p.BoostCollect.Set(tick, false)
}

// Retire clears this tick's per-tick values after the player's actor is
// deleted. History is kept.
func (p *Player) Retire(tick int) {
	p.Body.Clear(tick)
	for _, s := range p.bytes() {
		s.Clear(tick)
	}
	for _, s := range p.bools() {
		s.Clear(tick)
	}
	p.Boost.Clear(tick)
	p.PowerUp.Clear(tick)
	p.TimeTillPowerUp.Clear(tick)
}

// RetireCar clears the fields a car actor drives.
func (p *Player) RetireCar(tick int) {
	p.Body.Clear(tick)
	p.Throttle.Clear(tick)
	p.Steer.Clear(tick)
	p.Handbrake.Clear(tick)
}

// LastRumbleItem returns the most recent rumble item, or nil.
func (p *Player) LastRumbleItem() *RumbleItem {
	if len(p.RumbleItems) == 0 {
		return nil
	}
	return &p.RumbleItems[len(p.RumbleItems)-1]
}

// MarkLastUnusedDemoed flags the latest unused item as lost to a demolition.
func (p *Player) MarkLastUnusedDemoed() {
	if it := p.LastRumbleItem(); it != nil && it.UseFrame == nil {
		it.Demoed = true
	}
}
