package handlers

import (
	"rlreplay.dev/internal/attributes"
	"rlreplay.dev/internal/frames"
)

type gameInfoHandler struct{}

func (gameInfoHandler) Create(*frames.Data, *State, int32) {}

func (gameInfoHandler) Update(d *frames.Data, s *State, actor int32, attr string) {
	v, ok := s.Attr(actor, attr)
	if !ok {
		return
	}
	gi := &d.GameInfo
	switch attr {
	case AttrServerID:
		if q, ok := v.(attributes.QWord); ok {
			gi.ServerID = uint64(q)
		}
	case AttrServerName:
		if str, ok := v.(attributes.String); ok {
			gi.ServerName = string(str)
		}
	case AttrMatchGUID:
		if str, ok := v.(attributes.String); ok {
			gi.MatchGUID = string(str)
		}
	case AttrPlaylist:
		if n, ok := v.(attributes.Int); ok {
			gi.Playlist = int32(n)
		}
	case AttrMutatorIndex:
		if n, ok := v.(attributes.Int); ok {
			gi.MutatorIndex = int32(n)
		}
	}
}

func (gameInfoHandler) Destroy(*frames.Data, *State, int32) {}
