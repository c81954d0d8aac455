package handlers

import (
	"rlreplay.dev/internal/attributes"
	"rlreplay.dev/internal/frames"
)

type teamHandler struct {
	orange bool
}

func (h teamHandler) Create(d *frames.Data, s *State, actor int32) {
	d.Team(actor, s.Frame, h.orange)
}

func (teamHandler) Update(d *frames.Data, s *State, actor int32, attr string) {
	tm := d.Teams[actor]
	if tm == nil {
		return
	}
	v, ok := s.Attr(actor, attr)
	if !ok {
		return
	}
	switch attr {
	case AttrTeamName:
		if name, ok := v.(attributes.String); ok {
			tm.Name = string(name)
		}
	case AttrTeamScore:
		if n, ok := v.(attributes.Int); ok {
			tm.Score.Set(s.Frame, int32(n))
		}
	}
}

func (teamHandler) Destroy(*frames.Data, *State, int32) {}
