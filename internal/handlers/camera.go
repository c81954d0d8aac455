package handlers

import (
	"rlreplay.dev/internal/attributes"
	"rlreplay.dev/internal/frames"
)

type cameraHandler struct{}

func (cameraHandler) Create(*frames.Data, *State, int32) {}

func (cameraHandler) Update(d *frames.Data, s *State, actor int32, attr string) {
	pri, ok := s.ActorRef(actor, AttrCameraPRI)
	if !ok {
		return
	}
	p := d.Players[pri]
	if p == nil {
		return
	}
	v, ok := s.Attr(actor, attr)
	if !ok {
		return
	}
	switch attr {
	case AttrBallCam:
		if b, ok := v.(attributes.Boolean); ok {
			p.BallCam.Set(s.Frame, bool(b))
		}
	case AttrCamSettings:
		if cs, ok := v.(attributes.CamSettings); ok {
			p.Camera = &cs
		}
	}
}

func (cameraHandler) Destroy(*frames.Data, *State, int32) {}
