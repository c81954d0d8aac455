package replay

import (
	"rlreplay.dev/internal/frames"
)

// Summary is the headline numbers of a decoded replay.
type Summary struct {
	Frames       int      `json:"frames"`
	Seconds      float32  `json:"seconds"`
	Players      []Roster `json:"players"`
	Goals        int      `json:"goals"`
	Kickoffs     int      `json:"kickoffs"`
	Demolitions  int      `json:"demolitions"`
	BoostPickups int      `json:"boost_pickups"`
	RumbleItems  int      `json:"rumble_items"`
	TileHits     int      `json:"tile_hits"`
	Parties      int      `json:"parties"`
	GameClass    string   `json:"game_class,omitempty"`
	MatchGUID    string   `json:"match_guid,omitempty"`
}

type Roster struct {
	Actor    int32  `json:"actor"`
	Name     string `json:"name"`
	RemoteID string `json:"remote_id,omitempty"`
	Orange   *bool  `json:"orange,omitempty"`
	Pickups  int    `json:"boost_pickups"`
}

func Summarize(d *frames.Data) Summary {
	s := Summary{
		Frames:       d.Len(),
		Players:      []Roster{},
		Goals:        len(d.Goals),
		Kickoffs:     len(d.Kickoffs),
		Demolitions:  len(d.Demolitions),
		BoostPickups: len(d.BoostPickups),
		Parties:      len(d.Parties),
		GameClass:    d.GameInfo.GameClass,
		MatchGUID:    d.GameInfo.MatchGUID,
	}
	if n := d.Len(); n > 0 {
		first, _ := d.Frames.Time.Get(0)
		last, _ := d.Frames.Time.Get(n - 1)
		s.Seconds = last - first
	}
	for _, id := range d.PlayerIDs() {
		p := d.Players[id]
		r := Roster{Actor: id, Name: p.Name, RemoteID: p.RemoteID, Pickups: p.BoostPickups}
		if tm, ok := d.Teams[p.TeamActor]; ok {
			orange := tm.IsOrange
			r.Orange = &orange
		}
		s.Players = append(s.Players, r)
		s.RumbleItems += len(p.RumbleItems)
	}
	for _, ev := range d.Dropshot.DamageEvents {
		s.TileHits += len(ev.Tiles)
	}
	return s
}
