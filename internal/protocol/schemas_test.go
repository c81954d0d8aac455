package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"rlreplay.dev/internal/frames"
	"rlreplay.dev/internal/protocol"
)

func compile(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()
	p := filepath.Join("..", "..", "schemas", name)
	s, err := jsonschema.Compile(p)
	if err != nil {
		t.Fatalf("compile %s: %v", name, err)
	}
	return s
}

// roundTrip marshals v and decodes it back into the generic form the
// validator expects.
func roundTrip(t *testing.T, v any) any {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return out
}

func TestSchemas_ValidateSamples(t *testing.T) {
	validate := func(s *jsonschema.Schema, raw string) {
		t.Helper()
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			t.Fatalf("sample: %v", err)
		}
		if err := s.Validate(v); err != nil {
			t.Fatalf("validate: %v", err)
		}
	}

	validate(compile(t, "subscribe.schema.json"), `{
	  "type":"SUBSCRIBE",
	  "protocol_version":"1.0",
	  "from_frame":0,
	  "to_frame":120,
	  "stride":4
	}`)
	validate(compile(t, "welcome.schema.json"), `{
	  "type":"WELCOME",
	  "protocol_version":"1.0",
	  "replay_id":"kickoff",
	  "frames":4
	}`)
	validate(compile(t, "tick.schema.json"), `{
	  "type":"TICK",
	  "tick":{
	    "frame":3,
	    "time":0.2,
	    "delta":0.05,
	    "seconds_remaining":299,
	    "ball":{"pos":[0,0,93],"rot":[0,0,0]},
	    "players":[{"actor":4,"name":"Ayla","orange":true,"boost":92.5,"boosting":true}],
	    "tiles":"AA=="
	  }
	}`)
	validate(compile(t, "done.schema.json"), `{"type":"DONE","sent":4}`)
	validate(compile(t, "error.schema.json"), `{"type":"ERROR","code":"E_OUT_OF_RANGE","message":"from_frame 9 outside [0, 4]"}`)
}

func TestSchemas_ValidateMessages(t *testing.T) {
	tickSchema := compile(t, "tick.schema.json")
	errSchema := compile(t, "error.schema.json")

	d := frames.New(4, frames.Options{BoostPerSecond: 80})
	d.NewFrame(0, 0)
	p := d.Player(4, 0)
	p.Name = "Ayla"
	p.SetBoostAmount(0, 33)
	d.NewFrame(0.05, 0.05)

	for tick := 0; tick < d.Len(); tick++ {
		msg := protocol.TickMsg{Type: protocol.TypeTick, Tick: d.Tick(tick)}
		if err := tickSchema.Validate(roundTrip(t, msg)); err != nil {
			t.Fatalf("tick %d: %v", tick, err)
		}
	}

	for _, code := range []string{protocol.ErrProtoBadRequest, protocol.ErrProtoVersion, protocol.ErrBadRequest, protocol.ErrOutOfRange, protocol.ErrNotFound, protocol.ErrInternal} {
		if err := errSchema.Validate(roundTrip(t, protocol.NewError(code, "x"))); err != nil {
			t.Fatalf("%s: %v", code, err)
		}
	}
	if err := errSchema.Validate(roundTrip(t, protocol.NewError("E_NOPE", ""))); err == nil {
		t.Fatalf("unknown code accepted")
	}
}

func TestSubscribeRange(t *testing.T) {
	cases := []struct {
		msg              protocol.SubscribeMsg
		from, to, stride int
		ok               bool
	}{
		{protocol.SubscribeMsg{}, 0, 10, 1, true},
		{protocol.SubscribeMsg{FromFrame: 2, ToFrame: 6, Stride: 2}, 2, 6, 2, true},
		{protocol.SubscribeMsg{FromFrame: 10}, 10, 10, 1, true},
		{protocol.SubscribeMsg{FromFrame: 11}, 0, 0, 0, false},
		{protocol.SubscribeMsg{FromFrame: 5, ToFrame: 3}, 0, 0, 0, false},
		{protocol.SubscribeMsg{ToFrame: 11}, 0, 0, 0, false},
		{protocol.SubscribeMsg{Stride: -1}, 0, 0, 0, false},
	}
	for i, c := range cases {
		from, to, stride, err := c.msg.Range(10)
		if (err == nil) != c.ok {
			t.Fatalf("case %d: err=%v", i, err)
		}
		if c.ok && (from != c.from || to != c.to || stride != c.stride) {
			t.Fatalf("case %d: got %d,%d,%d", i, from, to, stride)
		}
	}
}
