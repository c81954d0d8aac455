package handlers

import (
	"rlreplay.dev/internal/attributes"
	"rlreplay.dev/internal/frames"
)

// platformHandler tracks one dropshot floor tile by canonical index.
type platformHandler struct {
	tile uint32
}

func (h platformHandler) Create(d *frames.Data, s *State, _ int32) {
	d.Dropshot.Tile(h.tile, d.TotalFrames, s.Frame)
}

func (h platformHandler) Update(d *frames.Data, s *State, actor int32, attr string) {
	if attr != AttrDamageState {
		return
	}
	v, _ := s.Attr(actor, attr)
	ds, ok := v.(attributes.DamageState)
	if !ok {
		return
	}
	tile := d.Dropshot.Tile(h.tile, d.TotalFrames, s.Frame)
	prev, _ := tile.Get(s.Frame - 1)
	tile.Set(s.Frame, ds.TileState)
	if s.Frame == 0 || ds.TileState <= prev {
		return
	}
	player := int32(-1)
	if pid, ok := s.CarPlayerID(ds.Offender); ok {
		player = pid
	}
	d.Dropshot.AddTileHit(s.Frame, ds.Offender, player, frames.TileHit{
		Tile:      h.tile,
		State:     ds.TileState,
		DirectHit: ds.DirectHit,
	})
}

func (h platformHandler) Destroy(d *frames.Data, s *State, _ int32) {
	d.Dropshot.Tile(h.tile, d.TotalFrames, s.Frame).Set(s.Frame, 0)
}
