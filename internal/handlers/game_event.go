package handlers

import (
	"github.com/rs/zerolog/log"

	"rlreplay.dev/internal/attributes"
	"rlreplay.dev/internal/frames"
)

// gameEventHandler writes the match clock and detects kickoffs and first
// touches, which reopen stat collection after a goal.
type gameEventHandler struct{}

func (gameEventHandler) Create(d *frames.Data, s *State, actor int32) {
	if a, ok := s.Actors[actor]; ok {
		d.GameInfo.GameClass = a.Name
	}
}

func (gameEventHandler) Update(d *frames.Data, s *State, actor int32, attr string) {
	v, ok := s.Attr(actor, attr)
	if !ok {
		return
	}
	g := &d.Frames
	switch attr {
	case AttrOvertime:
		if b, ok := v.(attributes.Boolean); ok {
			g.IsOvertime.Set(s.Frame, bool(b))
		}
	case AttrSecondsLeft:
		if n, ok := v.(attributes.Int); ok {
			g.SecondsRemaining.Set(s.Frame, int32(n))
		}
	case AttrCountdown:
		n, ok := v.(attributes.Int)
		if !ok {
			return
		}
		prev, had := g.ReplicatedSecondsRemaining.LastBefore(s.Frame)
		g.ReplicatedSecondsRemaining.Set(s.Frame, int32(n))
		if had && prev > 0 && n == 0 {
			d.Kickoffs = append(d.Kickoffs, s.Frame)
			reopenStats(s, "kickoff")
		}
	case AttrBallHit:
		b, ok := v.(attributes.Boolean)
		if !ok {
			return
		}
		prev, _ := g.BallHasBeenHit.LastBefore(s.Frame)
		g.BallHasBeenHit.Set(s.Frame, bool(b))
		if bool(b) && !prev {
			d.FirstTouches = append(d.FirstTouches, s.Frame)
			reopenStats(s, "first touch")
		}
	}
}

func (gameEventHandler) Destroy(*frames.Data, *State, int32) {}

func reopenStats(s *State, why string) {
	if !s.ShouldCollectStats {
		log.Debug().Int("frame", s.Frame).Str("on", why).Msg("stat collection resumed")
	}
	s.ShouldCollectStats = true
	s.PostGoal = false
}
