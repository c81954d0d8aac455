package frames

import (
	"sort"
)

// Options tune derived values.
type Options struct {
	// BoostPerSecond is the drain applied to a boosting player each tick.
	BoostPerSecond float32
}

// Globals are the match-wide per-tick fields.
type Globals struct {
	Time                       *Series[float32] `json:"time"`
	Delta                      *Series[float32] `json:"delta"`
	SecondsRemaining           *Series[int32]   `json:"seconds_remaining"`
	ReplicatedSecondsRemaining *Series[int32]   `json:"replicated_seconds_remaining"`
	IsOvertime                 *Series[bool]    `json:"is_overtime"`
	BallHasBeenHit             *Series[bool]    `json:"ball_has_been_hit"`
}

func (g *Globals) extend(tick int) {
	g.Time.Extend(tick)
	g.Delta.Extend(tick)
	g.SecondsRemaining.Extend(tick)
	g.ReplicatedSecondsRemaining.Extend(tick)
	g.IsOvertime.Extend(tick)
	g.BallHasBeenHit.Extend(tick)
}

type GameInfo struct {
	ServerID     uint64 `json:"server_id,omitempty"`
	ServerName   string `json:"server_name,omitempty"`
	MatchGUID    string `json:"match_guid,omitempty"`
	Playlist     int32  `json:"playlist,omitempty"`
	MutatorIndex int32  `json:"mutator_index,omitempty"`
	GameClass    string `json:"game_class,omitempty"`
}

// Data is the output of one decode pass.
type Data struct {
	TotalFrames int `json:"total_frames"`

	Frames   Globals           `json:"frames"`
	Ball     *Ball             `json:"ball"`
	Players  map[int32]*Player `json:"players"`
	Teams    map[int32]*Team   `json:"teams"`
	GameInfo GameInfo          `json:"game_info"`
	Dropshot *Dropshot         `json:"dropshot"`

	Demolitions  []Demolition  `json:"demolitions"`
	BoostPickups []BoostPickup `json:"boost_pickups"`
	Kickoffs     []int         `json:"kickoff_frames"`
	FirstTouches []int         `json:"first_touch_frames"`
	Goals        []int         `json:"goal_frames"`
	// Parties maps a party leader's remote id to its members' remote ids.
	Parties map[string]map[string]bool `json:"parties"`

	Options Options `json:"-"`
}

func New(totalFrames int, opt Options) *Data {
	return &Data{
		TotalFrames: totalFrames,
		Frames: Globals{
			Time:                       NewSeries[float32](totalFrames, 0),
			Delta:                      NewSeries[float32](totalFrames, 0),
			SecondsRemaining:           NewSeries[int32](totalFrames, 0),
			ReplicatedSecondsRemaining: NewSeries[int32](totalFrames, 0),
			IsOvertime:                 NewSeries[bool](totalFrames, 0),
			BallHasBeenHit:             NewSeries[bool](totalFrames, 0),
		},
		Ball:     newBall(totalFrames),
		Players:  map[int32]*Player{},
		Teams:    map[int32]*Team{},
		Dropshot: newDropshot(),
		Parties:  map[string]map[string]bool{},
		Options:  opt,
	}
}

// Len is the number of ticks processed so far.
func (d *Data) Len() int { return d.Frames.Time.Len() }

// NewFrame advances every tracked entity by one tick, carrying values
// forward and draining boost for players that were boosting, then records
// time and delta. It returns the new tick index.
func (d *Data) NewFrame(time, delta float32) int {
	t := d.Len()
	d.Frames.extend(t)
	d.Frames.Time.Set(t, time)
	d.Frames.Delta.Set(t, delta)
	d.Ball.extend(t)
	for _, p := range d.Players {
		p.advance(t, delta, d.Options.BoostPerSecond)
	}
	for _, tm := range d.Teams {
		tm.Score.Extend(t)
	}
	d.Dropshot.extend(t)
	return t
}

// Player returns the player record for a PRI actor, creating it at tick.
func (d *Data) Player(actor int32, tick int) *Player {
	if p, ok := d.Players[actor]; ok {
		return p
	}
	p := newPlayer(actor, d.TotalFrames, tick)
	d.Players[actor] = p
	return p
}

func (d *Data) Team(actor int32, tick int, orange bool) *Team {
	if tm, ok := d.Teams[actor]; ok {
		tm.IsOrange = orange
		return tm
	}
	tm := &Team{ActorID: actor, IsOrange: orange, Score: NewSeries[int32](d.TotalFrames, tick)}
	tm.Score.Extend(tick)
	d.Teams[actor] = tm
	return tm
}

// AddPartyMember records member under leader.
func (d *Data) AddPartyMember(leader, member string) {
	m, ok := d.Parties[leader]
	if !ok {
		m = map[string]bool{}
		d.Parties[leader] = m
	}
	m[member] = true
}

// PartyMembers returns leader's members sorted.
func (d *Data) PartyMembers(leader string) []string {
	out := make([]string, 0, len(d.Parties[leader]))
	for id := range d.Parties[leader] {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// PlayerIDs returns the player actor ids in ascending order.
func (d *Data) PlayerIDs() []int32 {
	ids := make([]int32, 0, len(d.Players))
	for id := range d.Players {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// HasDemolition reports whether an identical demolition was recorded.
func (d *Data) HasDemolition(dm Demolition) bool {
	for _, o := range d.Demolitions {
		if o.Attacker == dm.Attacker && o.Victim == dm.Victim &&
			o.AttackerVelocity == dm.AttackerVelocity && o.VictimVelocity == dm.VictimVelocity {
			return true
		}
	}
	return false
}
