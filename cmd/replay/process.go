package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"

	"rlreplay.dev/internal/frames"
	"rlreplay.dev/internal/persistence/archive"
	"rlreplay.dev/internal/persistence/bundle"
	"rlreplay.dev/internal/persistence/indexdb"
	plog "rlreplay.dev/internal/persistence/log"
	"rlreplay.dev/internal/persistence/snapshot"
	"rlreplay.dev/internal/replay"
	"rlreplay.dev/internal/tuning"
)

type options struct {
	OutDir   string
	Zstd     bool
	Ticks    bool
	Events   bool
	Timeline bool
	Archive  bool
	Tuning   tuning.Tuning
	Index    *indexdb.SQLiteIndex
}

type result struct {
	ID       string
	Payload  int
	Summary  replay.Summary
	Outputs  []string
	Duration time.Duration
}

// process decodes one bundle and writes the requested outputs under
// OutDir/<replay id>/.
func process(ctx context.Context, opt options, path string) (*result, error) {
	start := time.Now()
	b, err := bundle.Load(path)
	if err != nil {
		return nil, err
	}
	in, err := b.Input(opt.Tuning)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	res := &result{ID: b.ID(), Payload: len(b.Payload)}
	log.Debug().Str("replay", res.ID).Str("payload", humanize.Bytes(uint64(res.Payload))).Msg("decoding")

	d, err := replay.Decode(in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", res.ID, err)
	}
	res.Summary = replay.Summarize(d)

	dir := filepath.Join(opt.OutDir, res.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	dataPath := filepath.Join(dir, "data.json")
	if opt.Zstd {
		dataPath += ".zst"
	}
	if err := writeData(dataPath, d, opt.Zstd); err != nil {
		return nil, fmt.Errorf("%s: data: %w", res.ID, err)
	}
	res.Outputs = append(res.Outputs, dataPath)

	var extra []string
	if opt.Ticks {
		l := plog.NewTickLogger(dir)
		err := l.WriteAll(d)
		if cerr := l.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return nil, fmt.Errorf("%s: ticks: %w", res.ID, err)
		}
		p := filepath.Join(dir, "ticks.jsonl.zst")
		res.Outputs = append(res.Outputs, p)
		extra = append(extra, p)
	}
	if opt.Events {
		l := plog.NewEventLogger(dir)
		err := l.WriteAll(d)
		if cerr := l.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return nil, fmt.Errorf("%s: events: %w", res.ID, err)
		}
		p := filepath.Join(dir, "events.jsonl.zst")
		res.Outputs = append(res.Outputs, p)
		extra = append(extra, p)
	}

	indexed := dataPath
	tlPath := filepath.Join(dir, res.ID+".tl.zst")
	if opt.Timeline || opt.Archive {
		if err := snapshot.WriteTimeline(tlPath, snapshot.NewTimeline(res.ID, d)); err != nil {
			return nil, fmt.Errorf("%s: timeline: %w", res.ID, err)
		}
		res.Outputs = append(res.Outputs, tlPath)
		indexed = tlPath
	}
	if opt.Archive {
		archived, err := archive.ArchiveTimeline(opt.OutDir, tlPath, extra...)
		if err != nil {
			return nil, err
		}
		res.Outputs = append(res.Outputs, archived)
	}

	if opt.Index != nil {
		if err := opt.Index.IndexReplay(ctx, res.ID, indexed, d); err != nil {
			return nil, fmt.Errorf("%s: index: %w", res.ID, err)
		}
	}
	res.Duration = time.Since(start)
	return res, nil
}

func writeData(path string, d *frames.Data, compress bool) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	var w io.Writer = f
	var enc *zstd.Encoder
	if compress {
		enc, err = zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return err
		}
		w = enc
	}
	bw := bufio.NewWriterSize(w, 256*1024)
	err = json.NewEncoder(bw).Encode(d)
	if err == nil {
		err = bw.Flush()
	}
	if enc != nil {
		if cerr := enc.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

var shortUnits, _ = durafmt.DefaultUnitsCoder.Decode("y:yrs,wk:wks,d:d,h:h,m:m,s:s,ms:ms,us:us")

// summaryLine renders a result for the terminal.
func summaryLine(r *result) string {
	s := r.Summary
	match := time.Duration(float64(s.Seconds) * float64(time.Second))
	names := make([]string, 0, len(s.Players))
	for _, p := range s.Players {
		names = append(names, p.Name)
	}
	return fmt.Sprintf("%s: %s frames (%s) from %s, %d players [%s], %d goals, %d demos, %d pickups, decoded in %s",
		r.ID,
		humanize.Comma(int64(s.Frames)),
		durafmt.Parse(match).LimitFirstN(2).Format(shortUnits),
		humanize.Bytes(uint64(r.Payload)),
		len(s.Players), strings.Join(names, ", "),
		s.Goals, s.Demolitions, s.BoostPickups,
		durafmt.Parse(r.Duration).LimitFirstN(1).Format(shortUnits),
	)
}
