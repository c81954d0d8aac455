package frames

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"math"
	"math/rand"
	"testing"

	"rlreplay.dev/internal/attributes"
	"rlreplay.dev/internal/encoding"
)

const testRate = float32(80.0 / 0.93)

func TestSeries_CarryForward(t *testing.T) {
	s := NewSeries[int32](10, 2)
	s.Extend(2)
	if _, ok := s.Get(2); ok {
		t.Fatalf("creation tick should be undefined")
	}
	s.Set(2, 7)
	s.Extend(5)
	for tick := 2; tick <= 5; tick++ {
		if v, ok := s.Get(tick); !ok || v != 7 {
			t.Fatalf("tick %d: got %d,%v", tick, v, ok)
		}
	}
	if _, ok := s.Get(1); ok {
		t.Fatalf("tick before start should be undefined")
	}
	s.Clear(5)
	s.Extend(6)
	if _, ok := s.Get(6); ok {
		t.Fatalf("cleared value should carry forward as undefined")
	}
	if v, ok := s.LastBefore(6); !ok || v != 7 {
		t.Fatalf("LastBefore: got %d,%v", v, ok)
	}
	if s.Len() != 7 {
		t.Fatalf("len: got %d want 7", s.Len())
	}
}

func TestSeries_EventDoesNotCarry(t *testing.T) {
	s := NewEventSeries[bool](4, 0)
	s.Set(0, true)
	s.Extend(1)
	if _, ok := s.Get(1); ok {
		t.Fatalf("event series carried forward")
	}
}

func TestSeries_GrowsPastCapacity(t *testing.T) {
	s := NewSeries[uint8](2, 0)
	s.Set(0, 1)
	s.Extend(9)
	if v, ok := s.Get(9); !ok || v != 1 {
		t.Fatalf("got %d,%v", v, ok)
	}
}

func TestSeries_JSON(t *testing.T) {
	s := NewSeries[float32](5, 1)
	s.Extend(1)
	s.Set(2, 1.5)
	s.Extend(3)
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"start":1,"values":[null,1.5,1.5]}` {
		t.Fatalf("json: %s", b)
	}
	var back Series[float32]
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Len() != 4 || back.Start() != 1 {
		t.Fatalf("shape: len=%d start=%d", back.Len(), back.Start())
	}
	if v, ok := back.Get(3); !ok || v != 1.5 {
		t.Fatalf("value: %v,%v", v, ok)
	}
}

// Every known entity's columns must cover exactly the processed ticks, and
// untouched fields must equal the previous tick.
func TestData_CarryForwardInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	d := New(200, Options{BoostPerSecond: testRate})
	last := map[int32]int{}
	for tick := 0; tick < 200; tick++ {
		got := d.NewFrame(float32(tick)/30, 1.0/30)
		if got != tick {
			t.Fatalf("NewFrame returned %d want %d", got, tick)
		}
		if tick%40 == 5 {
			d.Player(int32(tick), tick)
			last[int32(tick)] = -1
		}
		for _, id := range d.PlayerIDs() {
			if rng.Intn(3) == 0 {
				v := rng.Intn(256)
				d.Players[id].Throttle.Set(tick, uint8(v))
				last[id] = v
			}
		}
		for _, id := range d.PlayerIDs() {
			p := d.Players[id]
			if p.Throttle.Len() != tick+1 || p.Boost.Len() != tick+1 || p.Body.PosX.Len() != tick+1 {
				t.Fatalf("tick %d player %d: lengths %d/%d/%d", tick, id, p.Throttle.Len(), p.Boost.Len(), p.Body.PosX.Len())
			}
			v, ok := p.Throttle.Get(tick)
			if last[id] < 0 {
				if ok {
					t.Fatalf("tick %d player %d: value before first write", tick, id)
				}
				continue
			}
			if !ok || int(v) != last[id] {
				t.Fatalf("tick %d player %d: got %d,%v want carried %d", tick, id, v, ok, last[id])
			}
		}
		if d.Ball.Body.PosX.Len() != tick+1 || d.Frames.SecondsRemaining.Len() != tick+1 {
			t.Fatalf("tick %d: global lengths wrong", tick)
		}
	}
}

func TestPlayer_BoostDecay(t *testing.T) {
	const (
		start = float32(100)
		delta = float32(0.15)
		n     = 10
	)
	d := New(n+1, Options{BoostPerSecond: testRate})
	d.NewFrame(0.1, delta)
	p := d.Player(1, 0)
	p.SetBoostAmount(0, start)
	p.SetBoostActive(0, 1, delta, testRate)
	if v, _ := p.Boost.Get(0); v != start {
		t.Fatalf("explicit amount overridden on activation tick: %v", v)
	}

	prev := start
	for i := 1; i <= n; i++ {
		d.NewFrame(0.1+float32(i)*delta, delta)
		v, ok := p.Boost.Get(i)
		if !ok {
			t.Fatalf("tick %d: boost undefined", i)
		}
		want := start - float32(i)*delta*testRate
		if want < 0 {
			want = 0
		}
		if math.Abs(float64(v-want)) > 1e-3 {
			t.Fatalf("tick %d: got %v want %v", i, v, want)
		}
		if v > prev {
			t.Fatalf("tick %d: boost increased while draining", i)
		}
		prev = v
	}
	if v, _ := p.Boost.Get(n); v != 0 {
		t.Fatalf("expected clamp to 0 after %d ticks, got %v", n, v)
	}
}

func TestPlayer_BoostActivationTransitionDrains(t *testing.T) {
	d := New(4, Options{BoostPerSecond: testRate})
	d.NewFrame(1, 0.1)
	p := d.Player(1, 0)
	p.SetBoostAmount(0, 50)
	d.NewFrame(1.1, 0.1)
	p.SetBoostActive(1, 1, 0.1, testRate)
	want := 50 - 0.1*testRate
	if v, _ := p.Boost.Get(1); math.Abs(float64(v-want)) > 1e-4 {
		t.Fatalf("got %v want %v", v, want)
	}
	d.NewFrame(1.2, 0.1)
	p.SetBoostActive(2, 0, 0.1, testRate)
	d.NewFrame(1.3, 0.1)
	a, _ := p.Boost.Get(2)
	b, _ := p.Boost.Get(3)
	if a != b {
		t.Fatalf("boost drained after deactivation: %v -> %v", a, b)
	}
}

func TestQuatToEuler(t *testing.T) {
	roll, pitch, yaw := QuatToEuler(attributes.Quaternion{W: 1})
	if roll != 0 || pitch != 0 || yaw != 0 {
		t.Fatalf("identity: %v %v %v", roll, pitch, yaw)
	}
	// 90 degree yaw.
	s := float32(math.Sqrt2 / 2)
	_, _, yaw = QuatToEuler(attributes.Quaternion{Z: s, W: s})
	if math.Abs(float64(yaw)-math.Pi/2) > 1e-5 {
		t.Fatalf("yaw: %v", yaw)
	}
	// Slightly denormalised pole must not produce NaN.
	_, pitch, _ = QuatToEuler(attributes.Quaternion{Y: 0.7072, W: 0.7072})
	if math.IsNaN(float64(pitch)) || pitch != float32(math.Pi/2) {
		t.Fatalf("pole pitch: %v", pitch)
	}
}

func TestRigidBody_IgnoreSleeping(t *testing.T) {
	b := NewRigidBodySeries(3, 0)
	b.Extend(0)
	b.Record(0, attributes.RigidBody{Location: attributes.Vector3f{X: 1}, Rotation: attributes.Quaternion{W: 1}, LinearVelocity: &attributes.Vector3f{Y: 2}}, true)
	b.Extend(1)
	b.Record(1, attributes.RigidBody{Sleeping: true, Location: attributes.Vector3f{X: 9}, Rotation: attributes.Quaternion{W: 1}}, true)
	if x, _ := b.PosX.Get(1); x != 1 {
		t.Fatalf("sleeping body overwrote pose: %v", x)
	}
	b.Record(1, attributes.RigidBody{Sleeping: true, Location: attributes.Vector3f{X: 9}, Rotation: attributes.Quaternion{W: 1}}, false)
	if x, _ := b.PosX.Get(1); x != 9 {
		t.Fatalf("sleeping body ignored when it should not be: %v", x)
	}
	if b.View(1).Vel != nil {
		t.Fatalf("sleeping body should have no velocity")
	}
}

func TestDropshot_GroupsHitsByTickAndOffender(t *testing.T) {
	ds := newDropshot()
	ds.AddTileHit(5, 10, 1, TileHit{Tile: 3, State: 1})
	ds.AddTileHit(5, 10, 1, TileHit{Tile: 4, State: 1})
	ds.AddTileHit(5, 11, 2, TileHit{Tile: 9, State: 2})
	ds.AddTileHit(6, 10, 1, TileHit{Tile: 3, State: 2})
	if len(ds.DamageEvents) != 3 {
		t.Fatalf("events: %+v", ds.DamageEvents)
	}
	if len(ds.DamageEvents[0].Tiles) != 2 {
		t.Fatalf("first event should group two tiles: %+v", ds.DamageEvents[0])
	}
}

func TestData_TickView(t *testing.T) {
	d := New(2, Options{BoostPerSecond: testRate})
	d.NewFrame(3, 0.1)
	d.Team(50, 0, true)
	p := d.Player(7, 0)
	p.Name = "Ayla"
	p.TeamActor = 50
	p.SetBoostAmount(0, 33)
	d.Dropshot.Tile(4, 2, 0).Set(0, 2)
	d.Ball.Body.Record(0, attributes.RigidBody{Location: attributes.Vector3f{Z: 93}, Rotation: attributes.Quaternion{W: 1}}, false)

	v := d.Tick(0)
	if v.Ball == nil || v.Ball.Pos[2] != 93 {
		t.Fatalf("ball: %+v", v.Ball)
	}
	if len(v.Players) != 1 || v.Players[0].Name != "Ayla" || *v.Players[0].Boost != 33 || !*v.Players[0].Orange {
		t.Fatalf("players: %+v", v.Players)
	}
	states, err := encoding.DecodeStates(v.Tiles, DropshotTileCount)
	if err != nil || len(states) != DropshotTileCount || states[4] != 2 {
		t.Fatalf("tiles: %v %v", states, err)
	}
}

func TestData_GobRoundTrip(t *testing.T) {
	d := New(3, Options{BoostPerSecond: testRate})
	d.NewFrame(1, 0.1)
	p := d.Player(2, 0)
	p.SetBoostAmount(0, 12)
	p.RumbleItems = append(p.RumbleItems, RumbleItem{Item: "BallFreeze", GetFrame: 0})
	d.AddPartyMember("1", "2")
	d.NewFrame(1.1, 0.1)

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(d); err != nil {
		t.Fatalf("encode: %v", err)
	}
	var back Data
	if err := gob.NewDecoder(&buf).Decode(&back); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v, ok := back.Players[2].Boost.Get(1); !ok || v != 12 {
		t.Fatalf("boost: %v,%v", v, ok)
	}
	if back.Len() != 2 || back.Players[2].RumbleItems[0].Item != "BallFreeze" {
		t.Fatalf("shape lost: len=%d", back.Len())
	}
	if !back.Parties["1"]["2"] {
		t.Fatalf("parties lost: %+v", back.Parties)
	}
}
