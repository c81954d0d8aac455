package log

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/klauspost/compress/zstd"

	"rlreplay.dev/internal/frames"
)

// JSONLZstdWriter appends one JSON document per line to a zstd stream.
// The file is created on the first write.
type JSONLZstdWriter struct {
	path string

	mu  sync.Mutex
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

func NewJSONLZstdWriter(path string) *JSONLZstdWriter {
	return &JSONLZstdWriter{path: path}
}

func (w *JSONLZstdWriter) Path() string { return w.path }

func (w *JSONLZstdWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

func (w *JSONLZstdWriter) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.w == nil {
		if err := w.openLocked(); err != nil {
			return err
		}
	}

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

func (w *JSONLZstdWriter) openLocked() error {
	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, 128*1024)
	return nil
}

func (w *JSONLZstdWriter) closeLocked() error {
	var err1 error
	if w.w != nil {
		err1 = w.w.Flush()
	}
	if w.enc != nil {
		if err := w.enc.Close(); err1 == nil {
			err1 = err
		}
		w.enc = nil
	}
	if w.f != nil {
		if err := w.f.Close(); err1 == nil {
			err1 = err
		}
		w.f = nil
	}
	w.w = nil
	return err1
}

// ReadJSONL calls fn with every line of a file written by JSONLZstdWriter.
func ReadJSONL(path string, fn func(line []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 128*1024)
	for {
		line, err := br.ReadBytes('\n')
		if len(line) > 1 {
			if ferr := fn(line[:len(line)-1]); ferr != nil {
				return ferr
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// TickLogger writes one JSONL entry per tick (compressed).
type TickLogger struct{ w *JSONLZstdWriter }

func NewTickLogger(outDir string) *TickLogger {
	return &TickLogger{w: NewJSONLZstdWriter(filepath.Join(outDir, "ticks.jsonl.zst"))}
}

func (l *TickLogger) WriteTick(v frames.TickView) error { return l.w.Write(v) }
func (l *TickLogger) Close() error                     { return l.w.Close() }

// WriteAll logs every tick of d in order.
func (l *TickLogger) WriteAll(d *frames.Data) error {
	for t := 0; t < d.Len(); t++ {
		if err := l.WriteTick(d.Tick(t)); err != nil {
			return fmt.Errorf("tick %d: %w", t, err)
		}
	}
	return nil
}

// ReadTicks replays a tick log written by TickLogger.
func ReadTicks(path string, fn func(frames.TickView) error) error {
	return ReadJSONL(path, func(line []byte) error {
		var v frames.TickView
		if err := json.Unmarshal(line, &v); err != nil {
			return err
		}
		return fn(v)
	})
}

// Event is one discrete match event in the event log.
type Event struct {
	Frame  int    `json:"frame"`
	Kind   string `json:"kind"`
	Player *int32 `json:"player,omitempty"`
	Victim *int32 `json:"victim,omitempty"`
	Item   string `json:"item,omitempty"`
	Value  any    `json:"value,omitempty"`
}

const (
	KindGoal       = "goal"
	KindKickoff    = "kickoff"
	KindFirstTouch = "first_touch"
	KindDemolition = "demolition"
	KindPickup     = "boost_pickup"
	KindRumbleGet  = "rumble_get"
	KindRumbleUse  = "rumble_use"
	KindTileHit    = "tile_damage"
	KindBallPhase  = "ball_phase"
)

// Events flattens the event lists of d, ordered by frame. Events on the
// same frame keep the order above.
func Events(d *frames.Data) []Event {
	id := func(v int32) *int32 { return &v }
	var out []Event
	for _, f := range d.Goals {
		out = append(out, Event{Frame: f, Kind: KindGoal})
	}
	for _, f := range d.Kickoffs {
		out = append(out, Event{Frame: f, Kind: KindKickoff})
	}
	for _, f := range d.FirstTouches {
		out = append(out, Event{Frame: f, Kind: KindFirstTouch})
	}
	for _, dm := range d.Demolitions {
		out = append(out, Event{Frame: dm.Frame, Kind: KindDemolition, Player: id(dm.Attacker), Victim: id(dm.Victim)})
	}
	for _, bp := range d.BoostPickups {
		out = append(out, Event{Frame: bp.Frame, Kind: KindPickup, Player: id(bp.Player), Value: bp.Amount})
	}
	for _, pid := range d.PlayerIDs() {
		for _, it := range d.Players[pid].RumbleItems {
			out = append(out, Event{Frame: it.GetFrame, Kind: KindRumbleGet, Player: id(pid), Item: it.Item})
			if it.UseFrame != nil {
				out = append(out, Event{Frame: *it.UseFrame, Kind: KindRumbleUse, Player: id(pid), Item: it.Item})
			}
		}
	}
	for _, ev := range d.Dropshot.DamageEvents {
		out = append(out, Event{Frame: ev.Frame, Kind: KindTileHit, Player: id(ev.Player), Value: len(ev.Tiles)})
	}
	for _, ev := range d.Dropshot.BallEvents {
		out = append(out, Event{Frame: ev.Frame, Kind: KindBallPhase, Value: ev.Phase})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Frame < out[j].Frame })
	return out
}

// EventLogger writes the discrete events of a replay (compressed).
type EventLogger struct{ w *JSONLZstdWriter }

func NewEventLogger(outDir string) *EventLogger {
	return &EventLogger{w: NewJSONLZstdWriter(filepath.Join(outDir, "events.jsonl.zst"))}
}

func (l *EventLogger) WriteEvent(e Event) error { return l.w.Write(e) }
func (l *EventLogger) Close() error             { return l.w.Close() }

func (l *EventLogger) WriteAll(d *frames.Data) error {
	for _, e := range Events(d) {
		if err := l.WriteEvent(e); err != nil {
			return err
		}
	}
	return nil
}
