package handlers

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"rlreplay.dev/internal/frames"
)

// rule is one archetype pattern. Rules overlap, so they are tried in order
// and the first non-nil handler wins.
type rule struct {
	name  string
	match func(archetype string) Handler
}

var rules = []rule{
	{"game event", func(n string) Handler {
		if strings.HasPrefix(n, gameEventPrefix) {
			return gameEventHandler{}
		}
		return nil
	}},
	{"boost pad", func(n string) Handler {
		if strings.Contains(n, boostPadMarker) {
			return boostPadHandler{}
		}
		return nil
	}},
	{"game info", func(n string) Handler {
		if strings.HasSuffix(n, gameInfoSuffix) {
			return gameInfoHandler{}
		}
		return nil
	}},
	{"rumble item", func(n string) Handler {
		if item, ok := strings.CutPrefix(n, specialPickupPrefix); ok {
			return rumbleHandler{item: item}
		}
		return nil
	}},
	{"dropshot platform", func(n string) Handler {
		if !strings.HasPrefix(n, platformPrefix) {
			return nil
		}
		raw, err := strconv.ParseUint(n[strings.LastIndexByte(n, '_')+1:], 10, 32)
		if err != nil {
			return nil
		}
		tile, ok := MapTile(uint32(raw))
		if !ok {
			log.Debug().Uint64("raw", raw).Str("archetype", n).Msg("unknown platform id mapped to tile 0")
		}
		return platformHandler{tile: tile}
	}},
	{"exact", func(n string) Handler {
		if mk, ok := exact[n]; ok {
			return mk()
		}
		return nil
	}},
}

var exact = map[string]func() Handler{
	ArchBallDefault:    func() Handler { return ballHandler{kind: frames.BallDefault} },
	ArchBallBasketball: func() Handler { return ballHandler{kind: frames.BallBasketball} },
	ArchBallBasketBall: func() Handler { return ballHandler{kind: frames.BallBasketball} },
	ArchBallPuck:       func() Handler { return ballHandler{kind: frames.BallPuck} },
	ArchBallCube:       func() Handler { return ballHandler{kind: frames.BallCube} },
	ArchBallBreakout:   func() Handler { return ballHandler{kind: frames.BallBreakout} },
	ArchPlayer:         func() Handler { return playerHandler{} },
	ArchCar:            func() Handler { return carHandler{} },
	ArchCamera:         func() Handler { return cameraHandler{} },
	ArchJump:           func() Handler { return activeHandler{field: jumpField} },
	ArchDoubleJump:     func() Handler { return activeHandler{field: doubleJumpField} },
	ArchDodge:          func() Handler { return activeHandler{field: dodgeField} },
	ArchBoost:          func() Handler { return boostHandler{} },
	ArchTeam0:          func() Handler { return teamHandler{orange: false} },
	ArchTeam1:          func() Handler { return teamHandler{orange: true} },
}

// Resolve returns the handler for an archetype name, or nil when the
// archetype carries nothing the accumulator tracks.
func Resolve(archetype string) Handler {
	for _, r := range rules {
		if h := r.match(archetype); h != nil {
			return h
		}
	}
	return nil
}
