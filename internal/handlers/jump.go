package handlers

import (
	"rlreplay.dev/internal/attributes"
	"rlreplay.dev/internal/frames"
)

func jumpField(p *frames.Player) *frames.Series[uint8]       { return p.JumpActive }
func doubleJumpField(p *frames.Player) *frames.Series[uint8] { return p.DoubleJumpActive }
func dodgeField(p *frames.Player) *frames.Series[uint8]      { return p.DodgeActive }

// activeHandler records a car component's active byte into one player
// column. Jump, double jump and dodge share it.
type activeHandler struct {
	field func(*frames.Player) *frames.Series[uint8]
}

func (activeHandler) Create(*frames.Data, *State, int32) {}

func (h activeHandler) Update(d *frames.Data, s *State, actor int32, attr string) {
	if attr != AttrActive {
		return
	}
	p := s.componentPlayer(d, actor)
	if p == nil {
		return
	}
	v, _ := s.Attr(actor, attr)
	if b, ok := v.(attributes.Byte); ok {
		h.field(p).Set(s.Frame, uint8(b))
	}
}

func (activeHandler) Destroy(*frames.Data, *State, int32) {}
