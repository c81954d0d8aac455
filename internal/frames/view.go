package frames

import (
	"rlreplay.dev/internal/encoding"
)

type BodyView struct {
	Pos [3]float32  `json:"pos"`
	Rot [3]float32  `json:"rot"`
	Vel *[3]float32 `json:"vel,omitempty"`
}

type PlayerView struct {
	Actor    int32     `json:"actor"`
	Name     string    `json:"name,omitempty"`
	Orange   *bool     `json:"orange,omitempty"`
	Body     *BodyView `json:"body,omitempty"`
	Boost    *float32  `json:"boost,omitempty"`
	Boosting bool      `json:"boosting,omitempty"`
	PowerUp  string    `json:"power_up,omitempty"`
}

// TickView is the state of one tick, flattened for streaming.
type TickView struct {
	Frame            int          `json:"frame"`
	Time             float32      `json:"time"`
	Delta            float32      `json:"delta"`
	SecondsRemaining *int32       `json:"seconds_remaining,omitempty"`
	Overtime         bool         `json:"overtime,omitempty"`
	Ball             *BodyView    `json:"ball,omitempty"`
	Players          []PlayerView `json:"players"`
	// Tiles holds the run-length encoded damage state of every dropshot tile.
	Tiles string `json:"tiles,omitempty"`
}

// Tick projects the accumulator at tick.
func (d *Data) Tick(tick int) TickView {
	v := TickView{Frame: tick, Players: []PlayerView{}}
	v.Time, _ = d.Frames.Time.Get(tick)
	v.Delta, _ = d.Frames.Delta.Get(tick)
	if s, ok := d.Frames.SecondsRemaining.Get(tick); ok {
		v.SecondsRemaining = &s
	}
	v.Overtime, _ = d.Frames.IsOvertime.Get(tick)
	v.Ball = d.Ball.Body.View(tick)

	for _, id := range d.PlayerIDs() {
		p := d.Players[id]
		if tick < p.Boost.Start() {
			continue
		}
		pv := PlayerView{Actor: id, Name: p.Name, Body: p.Body.View(tick)}
		if tm, ok := d.Teams[p.TeamActor]; ok {
			orange := tm.IsOrange
			pv.Orange = &orange
		}
		if b, ok := p.Boost.Get(tick); ok {
			pv.Boost = &b
		}
		if a, ok := p.BoostActive.Get(tick); ok {
			pv.Boosting = a%2 == 1
		}
		pv.PowerUp, _ = p.PowerUp.Get(tick)
		v.Players = append(v.Players, pv)
	}

	if len(d.Dropshot.Tiles) > 0 {
		states := make([]uint8, DropshotTileCount)
		for id, s := range d.Dropshot.Tiles {
			if int(id) >= DropshotTileCount {
				continue
			}
			states[id], _ = s.Get(tick)
		}
		v.Tiles = encoding.EncodeStates(states)
	}
	return v
}
