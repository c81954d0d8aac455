package handlers

import (
	"rlreplay.dev/internal/attributes"
	"rlreplay.dev/internal/frames"
)

// playerHandler owns the player record keyed by the PRI actor id.
type playerHandler struct{}

func (playerHandler) Create(d *frames.Data, s *State, actor int32) {
	d.Player(actor, s.Frame)
}

func (playerHandler) Update(d *frames.Data, s *State, actor int32, attr string) {
	p := d.Players[actor]
	if p == nil {
		return
	}
	v, ok := s.Attr(actor, attr)
	if !ok {
		return
	}
	switch attr {
	case AttrTeam:
		if ref, ok := v.(attributes.ActiveActor); ok && ref.Actor != -1 {
			p.TeamActor = ref.Actor
		}
	case AttrPlayerName:
		if name, ok := v.(attributes.String); ok {
			p.Name = string(name)
		}
	case AttrUniqueID:
		if id, ok := v.(attributes.UniqueID); ok {
			p.RemoteID = id.Remote.String()
		}
	case AttrPing:
		if b, ok := v.(attributes.Byte); ok {
			p.Ping.Set(s.Frame, uint8(b))
		}
	case AttrBallCam:
		if b, ok := v.(attributes.Boolean); ok {
			p.BallCam.Set(s.Frame, bool(b))
		}
	case AttrTimeTillItem:
		if n, ok := v.(attributes.Int); ok {
			p.TimeTillPowerUp.Set(s.Frame, int32(n))
		}
	case AttrPartyLeader:
		pl, ok := v.(attributes.PartyLeader)
		if !ok || pl.ID == nil {
			return
		}
		leader := pl.ID.Remote.String()
		p.PartyLeader = leader
		if own, ok := s.Attr(actor, AttrUniqueID); ok {
			if id, ok := own.(attributes.UniqueID); ok {
				d.AddPartyMember(leader, id.Remote.String())
			}
		}
	case AttrMatchScore, AttrMatchGoals, AttrMatchAssists, AttrMatchSaves, AttrMatchShots:
		if n, ok := v.(attributes.Int); ok {
			statSeries(p, attr).Set(s.Frame, int32(n))
		}
	case AttrTitle:
		if n, ok := v.(attributes.Int); ok {
			p.Title = int32(n)
		}
	case AttrTotalXP:
		if n, ok := v.(attributes.Int); ok {
			p.TotalXP = int32(n)
		}
	case AttrSteering:
		if f, ok := v.(attributes.Float); ok {
			p.SteeringSensitivity = float32(f)
		}
	}
}

func (playerHandler) Destroy(d *frames.Data, s *State, actor int32) {
	if p := d.Players[actor]; p != nil {
		p.Retire(s.Frame)
	}
}

func statSeries(p *frames.Player, attr string) *frames.Series[int32] {
	switch attr {
	case AttrMatchGoals:
		return p.MatchGoals
	case AttrMatchAssists:
		return p.MatchAssists
	case AttrMatchSaves:
		return p.MatchSaves
	case AttrMatchShots:
		return p.MatchShots
	}
	return p.MatchScore
}
