package handlers

import (
	"math"
	"testing"

	"rlreplay.dev/internal/attributes"
	"rlreplay.dev/internal/frames"
	"rlreplay.dev/internal/network"
	"rlreplay.dev/internal/tuning"
)

const (
	testDelta    = float32(0.1)
	archPad      = "Stadium_P.TheWorld:PersistentLevel.VehiclePickup_Boost_TA_12"
	archFreeze   = specialPickupPrefix + "BallFreeze"
	archGrapple  = specialPickupPrefix + "GrapplingHook"
	archTile178  = platformPrefix + "178"
	archGame     = gameEventPrefix + "Soccar"
	archUnknown  = "Archetypes.Cosmetics.Unknown"
	playerBlue   = int32(1)
	playerOrange = int32(2)
	carBlue      = int32(10)
	carOrange    = int32(11)
)

var (
	testObjects []string
	objectIDs   = map[string]network.ObjectID{}
)

func init() {
	testObjects = []string{
		ArchBallDefault, ArchBallBreakout, ArchPlayer, ArchCar, ArchBoost, ArchTeam0, ArchTeam1,
		archPad, archFreeze, archGrapple, archTile178, archGame, archUnknown,
		AttrPawnPRI, AttrRBState, AttrThrottle, AttrDemolish, AttrVehicle, AttrActive,
		AttrBoostAmount, AttrPickup, AttrUniqueID, AttrPartyLeader, AttrPlayerName,
		AttrDamageState, AttrDamageIndex, AttrLastTeam, AttrCountdown, AttrBallHit, AttrTeamScore,
	}
	for i, n := range testObjects {
		objectIDs[n] = network.ObjectID(i)
	}
}

type fixture struct {
	t    *testing.T
	x    *Dispatcher
	next network.Frame
	time float32
}

func newFixture(t *testing.T, goals ...int) *fixture {
	t.Helper()
	return &fixture{t: t, x: NewDispatcher(testObjects, 16, goals, tuning.Defaults())}
}

func (f *fixture) object(name string) network.ObjectID {
	f.t.Helper()
	id, ok := objectIDs[name]
	if !ok {
		f.t.Fatalf("object %q not in test table", name)
	}
	return id
}

func (f *fixture) spawn(actor int32, archetype string) {
	f.next.NewActors = append(f.next.NewActors, network.NewActor{
		ActorID:  network.ActorID(actor),
		ObjectID: f.object(archetype),
	})
}

func (f *fixture) set(actor int32, attr string, v attributes.Value) {
	f.next.Updated = append(f.next.Updated, network.UpdatedAttribute{
		ActorID:  network.ActorID(actor),
		ObjectID: f.object(attr),
		Value:    v,
	})
}

func (f *fixture) del(actor int32) {
	f.next.DeletedActors = append(f.next.DeletedActors, network.ActorID(actor))
}

func (f *fixture) step() int {
	f.time += testDelta
	f.next.Time = f.time
	f.next.Delta = testDelta
	f.x.Apply(f.next)
	f.next = network.Frame{}
	return f.x.State.Frame
}

func (f *fixture) data() *frames.Data { return f.x.Data }

func ref(actor int32) attributes.ActiveActor {
	return attributes.ActiveActor{Active: true, Actor: actor}
}

// withPlayers spawns two players and their cars on tick 0.
func withPlayers(t *testing.T, goals ...int) *fixture {
	f := newFixture(t, goals...)
	f.spawn(playerBlue, ArchPlayer)
	f.spawn(playerOrange, ArchPlayer)
	f.spawn(carBlue, ArchCar)
	f.spawn(carOrange, ArchCar)
	f.set(carBlue, AttrPawnPRI, ref(playerBlue))
	f.set(carOrange, AttrPawnPRI, ref(playerOrange))
	if tick := f.step(); tick != 0 {
		t.Fatalf("setup tick %d", tick)
	}
	return f
}

func TestResolve(t *testing.T) {
	cases := []struct {
		name string
		want Handler
	}{
		{ArchBallDefault, ballHandler{kind: frames.BallDefault}},
		{ArchBallBasketBall, ballHandler{kind: frames.BallBasketball}},
		{ArchBallCube, ballHandler{kind: frames.BallCube}},
		{ArchPlayer, playerHandler{}},
		{ArchCar, carHandler{}},
		{ArchBoost, boostHandler{}},
		{ArchTeam1, teamHandler{orange: true}},
		{archGame, gameEventHandler{}},
		{archPad, boostPadHandler{}},
		{"GameInfo_Soccar.GameInfo.GameInfo_Soccar:GameReplicationInfoArchetype", gameInfoHandler{}},
		{archFreeze, rumbleHandler{item: "BallFreeze"}},
		{archTile178, platformHandler{tile: 0}},
		{platformPrefix + "222", platformHandler{tile: 1}},
		{platformPrefix + "78", platformHandler{tile: 139}},
		{platformPrefix + "9999", platformHandler{tile: 0}},
	}
	for _, tc := range cases {
		if got := Resolve(tc.name); got != tc.want {
			t.Fatalf("Resolve(%q) = %#v, want %#v", tc.name, got, tc.want)
		}
	}
	for _, n := range []string{archUnknown, platformPrefix + "x", ""} {
		if h := Resolve(n); h != nil {
			t.Fatalf("Resolve(%q) = %#v, want nil", n, h)
		}
	}
	if _, ok := Resolve(ArchJump).(activeHandler); !ok {
		t.Fatalf("jump component not resolved")
	}
}

func TestMapTile(t *testing.T) {
	if idx, ok := MapTile(178); !ok || idx != 0 {
		t.Fatalf("178 -> %d,%v", idx, ok)
	}
	if idx, ok := MapTile(32); !ok || idx != 70 {
		t.Fatalf("32 -> %d,%v", idx, ok)
	}
	if idx, ok := MapTile(5000); ok || idx != 0 {
		t.Fatalf("unknown -> %d,%v", idx, ok)
	}
	seen := map[uint32]bool{}
	for _, idx := range tileIndex {
		seen[idx] = true
	}
	if len(tileIndex) != frames.DropshotTileCount || len(seen) != frames.DropshotTileCount {
		t.Fatalf("table covers %d raw ids and %d tiles", len(tileIndex), len(seen))
	}
}

func TestCar_RecordsInputsForPlayer(t *testing.T) {
	f := withPlayers(t)
	f.set(carBlue, AttrThrottle, attributes.Byte(200))
	f.set(carBlue, AttrRBState, attributes.RigidBody{
		Location: attributes.Vector3f{X: 5, Y: 6, Z: 17},
		Rotation: attributes.Quaternion{W: 1},
	})
	tick := f.step()
	p := f.data().Players[playerBlue]
	if v, ok := p.Throttle.Get(tick); !ok || v != 200 {
		t.Fatalf("throttle: %d,%v", v, ok)
	}
	if z, ok := p.Body.PosZ.Get(tick); !ok || z != 17 {
		t.Fatalf("position: %v,%v", z, ok)
	}
	if pid := f.x.State.CarPlayer[carBlue]; pid != playerBlue {
		t.Fatalf("car map: %d", pid)
	}

	f.del(carBlue)
	tick = f.step()
	if _, ok := p.Throttle.Get(tick); ok {
		t.Fatalf("throttle survived car deletion")
	}
	if v, ok := p.Throttle.Get(tick - 1); !ok || v != 200 {
		t.Fatalf("history rewritten: %d,%v", v, ok)
	}
}

func TestCar_ReusedIDFollowsNewPlayer(t *testing.T) {
	f := withPlayers(t)
	f.del(carOrange)
	f.del(carBlue)
	f.step()

	const boost = int32(20)
	f.spawn(carBlue, ArchCar)
	f.set(carBlue, AttrPawnPRI, ref(playerOrange))
	f.spawn(boost, ArchBoost)
	f.set(boost, AttrVehicle, ref(carBlue))
	f.set(boost, AttrBoostAmount, attributes.Byte(77))
	tick := f.step()

	d := f.data()
	if v, ok := d.Players[playerOrange].Boost.Get(tick); !ok || v != 77 {
		t.Fatalf("orange boost: %v,%v", v, ok)
	}
	if v, ok := d.Players[playerBlue].Boost.Get(tick); ok {
		t.Fatalf("blue credited with %v", v)
	}
	if pid := f.x.State.CarPlayer[carBlue]; pid != playerOrange {
		t.Fatalf("car map: %d", pid)
	}

	// A respawned car has no owner until its player reference arrives.
	f.del(boost)
	f.del(carBlue)
	f.step()
	f.spawn(carBlue, ArchCar)
	f.spawn(boost, ArchBoost)
	f.set(boost, AttrVehicle, ref(carBlue))
	f.set(boost, AttrBoostAmount, attributes.Byte(33))
	tick = f.step()
	for _, pid := range []int32{playerBlue, playerOrange} {
		if v, ok := d.Players[pid].Boost.Get(tick); ok {
			t.Fatalf("player %d credited with %v", pid, v)
		}
	}
}

func TestDemolition_Dedup(t *testing.T) {
	f := withPlayers(t)
	demo := attributes.Demolish{
		AttackerFlag:   true,
		Attacker:       carBlue,
		VictimFlag:     true,
		Victim:         carOrange,
		AttackVelocity: attributes.Vector3f{X: 1200},
		VictimVelocity: attributes.Vector3f{X: 300},
	}
	f.set(carBlue, AttrDemolish, demo)
	f.set(carOrange, AttrDemolish, demo)
	tick := f.step()
	f.set(carBlue, AttrDemolish, demo)
	f.step()

	got := f.data().Demolitions
	if len(got) != 1 {
		t.Fatalf("demolitions: %+v", got)
	}
	if got[0].Attacker != playerBlue || got[0].Victim != playerOrange || got[0].Frame != tick {
		t.Fatalf("demolition: %+v", got[0])
	}

	other := demo
	other.VictimVelocity = attributes.Vector3f{X: 301}
	f.set(carBlue, AttrDemolish, other)
	f.step()
	if len(f.data().Demolitions) != 2 {
		t.Fatalf("distinct demolition dropped: %+v", f.data().Demolitions)
	}
}

func TestDemolition_UnresolvedDropped(t *testing.T) {
	f := withPlayers(t)
	f.set(carBlue, AttrDemolish, attributes.Demolish{Attacker: carBlue, Victim: -1})
	f.set(carOrange, AttrDemolish, attributes.Demolish{Attacker: 99, Victim: carBlue})
	f.step()
	if n := len(f.data().Demolitions); n != 0 {
		t.Fatalf("got %d demolitions", n)
	}
}

func TestBoost_DrainAndDestroy(t *testing.T) {
	f := withPlayers(t)
	const boost = int32(20)
	f.spawn(boost, ArchBoost)
	f.set(boost, AttrVehicle, ref(carBlue))
	f.set(boost, AttrBoostAmount, attributes.Byte(100))
	start := f.step()

	f.set(boost, AttrActive, attributes.Byte(1))
	first := f.step()
	second := f.step()

	p := f.data().Players[playerBlue]
	rate := tuning.Defaults().Boost.PerSecond()
	want := []float32{100, 100 - testDelta*rate, 100 - 2*testDelta*rate}
	for i, tick := range []int{start, first, second} {
		v, ok := p.Boost.Get(tick)
		if !ok || math.Abs(float64(v-want[i])) > 1e-3 {
			t.Fatalf("tick %d: got %v,%v want %v", tick, v, ok, want[i])
		}
	}

	f.del(boost)
	tick := f.step()
	if _, ok := p.Boost.Get(tick); ok {
		t.Fatalf("boost defined after component destroy")
	}
	if a, _ := p.BoostActive.Get(tick); a != 0 {
		t.Fatalf("boost still active after destroy")
	}
}

func TestBoostPad_DetectsPickup(t *testing.T) {
	f := withPlayers(t)
	const boost, pad = int32(20), int32(60)
	f.spawn(boost, ArchBoost)
	f.spawn(pad, archPad)
	f.set(boost, AttrVehicle, ref(carBlue))
	f.set(boost, AttrBoostAmount, attributes.Byte(30))
	f.step()

	car := carBlue
	f.set(boost, AttrBoostAmount, attributes.Byte(100))
	f.set(pad, AttrPickup, attributes.Pickup{Instigator: &car, PickedUp: true})
	f.set(pad, AttrPickup, attributes.Pickup{Instigator: &car, PickedUp: true})
	picked := f.step()

	f.set(pad, AttrPickup, attributes.Pickup{PickedUp: false})
	after := f.step()

	f.set(pad, AttrPickup, attributes.Pickup{Instigator: &car, PickedUp: true})
	f.step()

	p := f.data().Players[playerBlue]
	if c, ok := p.BoostCollect.Get(picked); !ok || !c {
		t.Fatalf("pickup not flagged")
	}
	if _, ok := p.BoostCollect.Get(after); ok {
		t.Fatalf("pickup flag carried forward")
	}
	if p.BoostPickups != 1 || len(f.data().BoostPickups) != 1 {
		t.Fatalf("pickups: %d %+v", p.BoostPickups, f.data().BoostPickups)
	}
	got := f.data().BoostPickups[0]
	if got.Previous != 30 || got.Amount != 100 || got.Pad != pad || got.Player != playerBlue {
		t.Fatalf("pickup: %+v", got)
	}
}

func TestRumble_UseRecorded(t *testing.T) {
	f := withPlayers(t)
	const item = int32(32)
	f.spawn(item, archGrapple)
	f.set(item, AttrVehicle, ref(carBlue))
	got := f.step()
	f.set(item, AttrActive, attributes.Byte(1))
	used := f.step()

	items := f.data().Players[playerBlue].RumbleItems
	if len(items) != 1 || items[0].Item != "GrapplingHook" || items[0].GetFrame != got {
		t.Fatalf("items: %+v", items)
	}
	if items[0].UseFrame == nil || *items[0].UseFrame != used {
		t.Fatalf("use frame: %v", items[0].UseFrame)
	}
}

func TestRumble_DemoedItemContinues(t *testing.T) {
	f := withPlayers(t)
	f.spawn(30, archFreeze)
	f.set(30, AttrVehicle, ref(carOrange))
	f.step()

	f.set(carBlue, AttrDemolish, attributes.Demolish{Attacker: carBlue, Victim: carOrange})
	f.step()
	p := f.data().Players[playerOrange]
	if last := p.LastRumbleItem(); last == nil || !last.Demoed {
		t.Fatalf("item not flagged demoed: %+v", p.RumbleItems)
	}

	f.del(30)
	f.step()
	f.spawn(31, archFreeze)
	f.set(31, AttrVehicle, ref(carOrange))
	f.step()

	if len(p.RumbleItems) != 1 {
		t.Fatalf("continuation recorded as new pickup: %+v", p.RumbleItems)
	}
	if p.RumbleItems[0].Demoed {
		t.Fatalf("demoed flag not cleared")
	}
}

func TestRumble_FreezeUseForcedOnDestroy(t *testing.T) {
	f := withPlayers(t, 2)
	f.spawn(30, archFreeze)
	f.set(30, AttrVehicle, ref(carBlue))
	f.step()

	f.set(30, AttrActive, attributes.Byte(1))
	if tick := f.step(); tick != 2 || f.x.State.ShouldCollectStats {
		t.Fatalf("goal tick %d did not suppress stats", tick)
	}
	p := f.data().Players[playerBlue]
	if p.RumbleItems[0].UseFrame != nil {
		t.Fatalf("use recorded while stats suppressed")
	}

	f.del(30)
	tick := f.step()
	if u := p.RumbleItems[0].UseFrame; u == nil || *u != tick {
		t.Fatalf("freeze use not forced: %v", u)
	}
	if _, ok := p.PowerUp.Get(tick); ok {
		t.Fatalf("power-up survived destroy")
	}
}

func TestGameEvent_StatWindow(t *testing.T) {
	f := newFixture(t, 1)
	const ev = int32(50)
	f.spawn(ev, archGame)
	f.set(ev, AttrCountdown, attributes.Int(3))
	f.step()
	if f.data().GameInfo.GameClass != archGame {
		t.Fatalf("game class: %q", f.data().GameInfo.GameClass)
	}

	f.step()
	s := f.x.State
	if s.ShouldCollectStats || !s.PostGoal {
		t.Fatalf("goal did not close the window")
	}

	f.set(ev, AttrCountdown, attributes.Int(0))
	kickoff := f.step()
	if !s.ShouldCollectStats || s.PostGoal {
		t.Fatalf("kickoff did not reopen the window")
	}

	f.set(ev, AttrBallHit, attributes.Boolean(true))
	touch := f.step()
	f.set(ev, AttrBallHit, attributes.Boolean(true))
	f.step()

	d := f.data()
	if len(d.Kickoffs) != 1 || d.Kickoffs[0] != kickoff {
		t.Fatalf("kickoffs: %v", d.Kickoffs)
	}
	if len(d.FirstTouches) != 1 || d.FirstTouches[0] != touch {
		t.Fatalf("first touches: %v", d.FirstTouches)
	}
	if len(d.Goals) != 1 || d.Goals[0] != 1 {
		t.Fatalf("goals: %v", d.Goals)
	}
}

func TestDropshot_TileDamage(t *testing.T) {
	f := withPlayers(t)
	const tile, ball = int32(40), int32(5)
	f.spawn(tile, archTile178)
	f.spawn(ball, ArchBallBreakout)
	f.step()

	f.set(tile, AttrDamageState, attributes.DamageState{TileState: 1, Offender: carBlue, DirectHit: true})
	f.set(ball, AttrLastTeam, attributes.Byte(1))
	f.set(ball, AttrDamageIndex, attributes.Int(1))
	hit := f.step()
	f.set(tile, AttrDamageState, attributes.DamageState{TileState: 1, Offender: carBlue})
	f.step()
	f.del(tile)
	gone := f.step()

	ds := f.data().Dropshot
	if len(ds.DamageEvents) != 1 {
		t.Fatalf("damage events: %+v", ds.DamageEvents)
	}
	ev := ds.DamageEvents[0]
	if ev.Frame != hit || ev.Player != playerBlue || ev.Tiles[0].Tile != 0 || !ev.Tiles[0].DirectHit {
		t.Fatalf("event: %+v", ev)
	}
	if v, _ := ds.Tiles[0].Get(hit); v != 1 {
		t.Fatalf("tile state at hit: %d", v)
	}
	if v, ok := ds.Tiles[0].Get(gone); !ok || v != 0 {
		t.Fatalf("tile state after destroy: %d,%v", v, ok)
	}
	if len(ds.BallEvents) != 1 || ds.BallEvents[0].Team != 1 || ds.BallEvents[0].Frame != hit {
		t.Fatalf("ball events: %+v", ds.BallEvents)
	}
	if bt, ok := f.data().Ball.Type.Get(gone); !ok || bt != frames.BallBreakout {
		t.Fatalf("ball type: %v,%v", bt, ok)
	}
}

func TestPlayer_PartyGrouping(t *testing.T) {
	f := withPlayers(t)
	leader := attributes.UniqueID{System: 1, Remote: attributes.RemoteID{Platform: attributes.PlatformSteam, OnlineID: 100}}
	member := attributes.UniqueID{System: 1, Remote: attributes.RemoteID{Platform: attributes.PlatformSteam, OnlineID: 200}}
	f.set(playerBlue, AttrUniqueID, leader)
	f.set(playerOrange, AttrUniqueID, member)
	f.set(playerBlue, AttrPartyLeader, attributes.PartyLeader{ID: &leader})
	f.set(playerOrange, AttrPartyLeader, attributes.PartyLeader{ID: &leader})
	f.set(playerOrange, AttrPlayerName, attributes.String("Kestrel"))
	f.step()

	d := f.data()
	got := d.PartyMembers("100")
	if len(got) != 2 || got[0] != "100" || got[1] != "200" {
		t.Fatalf("party: %v", got)
	}
	p := d.Players[playerOrange]
	if p.PartyLeader != "100" || p.RemoteID != "200" || p.Name != "Kestrel" {
		t.Fatalf("player: %+v", p)
	}
}

func TestDispatch_ReusedIDDestroysStaleHandler(t *testing.T) {
	f := newFixture(t)
	f.spawn(5, ArchBallDefault)
	f.set(5, AttrRBState, attributes.RigidBody{Location: attributes.Vector3f{Z: 93}, Rotation: attributes.Quaternion{W: 1}})
	f.step()

	f.spawn(5, ArchPlayer)
	tick := f.step()
	if _, ok := f.data().Ball.Body.PosZ.Get(tick); ok {
		t.Fatalf("stale ball handler was not destroyed")
	}
	if a := f.x.State.Actors[5]; a == nil || a.Name != ArchPlayer {
		t.Fatalf("actor 5: %+v", a)
	}
	if f.data().Players[5] == nil {
		t.Fatalf("new handler not created")
	}
}

func TestDispatch_UnhandledAndUnknownActorsIgnored(t *testing.T) {
	f := newFixture(t)
	f.spawn(7, archUnknown)
	f.set(7, AttrThrottle, attributes.Byte(1))
	f.set(404, AttrThrottle, attributes.Byte(1))
	f.del(405)
	f.step()
	a := f.x.State.Actors[7]
	if a == nil || a.Handler != nil {
		t.Fatalf("actor 7: %+v", a)
	}
	if _, ok := a.Attrs[AttrThrottle]; !ok {
		t.Fatalf("attribute table not updated for handlerless actor")
	}
}

func TestTeam_Score(t *testing.T) {
	f := newFixture(t)
	f.spawn(3, ArchTeam1)
	f.set(3, AttrTeamScore, attributes.Int(2))
	tick := f.step()
	f.step()
	tm := f.data().Teams[3]
	if tm == nil || !tm.IsOrange {
		t.Fatalf("team: %+v", tm)
	}
	if v, ok := tm.Score.Get(tick + 1); !ok || v != 2 {
		t.Fatalf("score: %d,%v", v, ok)
	}
}
