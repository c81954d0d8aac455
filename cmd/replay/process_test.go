package main

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rlreplay.dev/internal/frames"
	"rlreplay.dev/internal/persistence/archive"
	"rlreplay.dev/internal/persistence/bundle"
	"rlreplay.dev/internal/persistence/indexdb"
	"rlreplay.dev/internal/persistence/snapshot"
	"rlreplay.dev/internal/replay/replaytest"
	"rlreplay.dev/internal/tuning"
)

func writeBundle(t *testing.T, dir, name string, extra int) string {
	t.Helper()
	in, err := replaytest.Kickoff(extra)
	if err != nil {
		t.Fatalf("build stream: %v", err)
	}
	path := filepath.Join(dir, name+".yaml")
	if err := bundle.Write(path, "", in, false, true); err != nil {
		t.Fatalf("write bundle: %v", err)
	}
	return path
}

func TestProcess_WritesAllOutputs(t *testing.T) {
	dir := t.TempDir()
	path := writeBundle(t, dir, "kickoff", 3)

	idx, err := indexdb.OpenSQLite(filepath.Join(dir, "index.db"))
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	defer idx.Close()

	opt := options{
		OutDir:   filepath.Join(dir, "out"),
		Zstd:     true,
		Ticks:    true,
		Events:   true,
		Timeline: true,
		Archive:  true,
		Tuning:   tuning.Defaults(),
		Index:    idx,
	}
	res, err := process(context.Background(), opt, path)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if res.ID != "kickoff" || res.Summary.Frames != 5 {
		t.Fatalf("result: %+v", res)
	}
	for _, p := range res.Outputs {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("missing output %s: %v", p, err)
		}
	}
	if len(res.Outputs) != 5 {
		t.Fatalf("outputs: %v", res.Outputs)
	}

	tl, err := snapshot.ReadTimeline(filepath.Join(opt.OutDir, "kickoff", "kickoff.tl.zst"))
	if err != nil || tl.Data.Len() != 5 {
		t.Fatalf("timeline: %v", err)
	}
	m, err := archive.ReadMeta(opt.OutDir, "kickoff")
	if err != nil || len(m.Extra) != 2 {
		t.Fatalf("archive meta: %+v %v", m, err)
	}
	row, err := idx.Replay(context.Background(), "kickoff")
	if err != nil || row.Frames != 5 || !strings.HasSuffix(row.Path, ".tl.zst") {
		t.Fatalf("index row: %+v %v", row, err)
	}

	line := summaryLine(res)
	if !strings.Contains(line, "Ayla") || !strings.Contains(line, "5 frames") {
		t.Fatalf("summary line: %s", line)
	}
}

func TestRun_CountsFailures(t *testing.T) {
	dir := t.TempDir()
	good := writeBundle(t, dir, "a", 1)
	bad := filepath.Join(dir, "b.yaml")
	if err := os.WriteFile(bad, []byte("frames: 1\nobjects: [x]\npayload: nope.bin\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	paths, err := expand([]string{dir})
	if err != nil || len(paths) != 2 || paths[0] != good || paths[1] != bad {
		t.Fatalf("expand: %v %v", paths, err)
	}
	opt := options{OutDir: filepath.Join(dir, "out"), Tuning: tuning.Defaults()}
	if n := run(context.Background(), opt, paths, 2); n != 1 {
		t.Fatalf("failed: %d", n)
	}
	if _, err := os.Stat(filepath.Join(opt.OutDir, "a", "data.json")); err != nil {
		t.Fatalf("data.json: %v", err)
	}
}

func TestWriteData_EncodeFailureReported(t *testing.T) {
	dir := t.TempDir()
	d := frames.New(1, frames.Options{})
	d.NewFrame(float32(math.NaN()), 0)

	for _, compress := range []bool{false, true} {
		err := writeData(filepath.Join(dir, "data.json"), d, compress)
		if err == nil || !strings.Contains(err.Error(), "NaN") {
			t.Fatalf("compress=%v: expected encode error, got %v", compress, err)
		}
	}

	ok := frames.New(1, frames.Options{})
	ok.NewFrame(1, 0.1)
	if err := writeData(filepath.Join(dir, "data.json.zst"), ok, true); err != nil {
		t.Fatalf("write: %v", err)
	}
}
