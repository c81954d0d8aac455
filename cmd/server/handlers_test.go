package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"rlreplay.dev/internal/frames"
	"rlreplay.dev/internal/persistence/bundle"
	"rlreplay.dev/internal/persistence/indexdb"
	"rlreplay.dev/internal/persistence/snapshot"
	"rlreplay.dev/internal/protocol"
	"rlreplay.dev/internal/replay/replaytest"
	"rlreplay.dev/internal/tuning"
)

func newTestServer(t *testing.T, withIndex bool) (*httptest.Server, *source) {
	t.Helper()
	dir := t.TempDir()
	in, err := replaytest.Kickoff(2)
	if err != nil {
		t.Fatalf("build stream: %v", err)
	}
	path := filepath.Join(dir, "kickoff.yaml")
	if err := bundle.Write(path, "", in, false, false); err != nil {
		t.Fatalf("write bundle: %v", err)
	}
	src, err := loadSource(path, "", tuning.Defaults())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	var idx *indexdb.SQLiteIndex
	if withIndex {
		idx, err = indexdb.OpenSQLite(filepath.Join(dir, "index.db"))
		if err != nil {
			t.Fatalf("open index: %v", err)
		}
		t.Cleanup(func() { _ = idx.Close() })
		if err := idx.IndexReplay(context.Background(), src.ID, path, src.Data); err != nil {
			t.Fatalf("index: %v", err)
		}
	}
	srv := httptest.NewServer(newMux(src, idx, zerolog.Nop()))
	t.Cleanup(srv.Close)
	return srv, src
}

func get(t *testing.T, url string) (int, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b
}

func TestHandlers_Timeline(t *testing.T) {
	srv, _ := newTestServer(t, false)

	if code, body := get(t, srv.URL+"/healthz"); code != 200 || string(body) != "ok" {
		t.Fatalf("healthz: %d %s", code, body)
	}

	code, body := get(t, srv.URL+"/v1/timeline")
	if code != 200 {
		t.Fatalf("timeline: %d %s", code, body)
	}
	var out struct {
		ReplayID string `json:"replay_id"`
		Summary  struct {
			Frames  int `json:"frames"`
			Players []struct {
				Name string `json:"name"`
			} `json:"players"`
		} `json:"summary"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.ReplayID != "kickoff" || out.Summary.Frames != 4 || len(out.Summary.Players) != 1 || out.Summary.Players[0].Name != "Ayla" {
		t.Fatalf("timeline: %s", body)
	}

	code, body = get(t, srv.URL+"/metrics")
	if code != 200 || !strings.Contains(string(body), `rlreplay_frames{replay="kickoff"} 4`) {
		t.Fatalf("metrics: %d %s", code, body)
	}
}

func TestHandlers_Tick(t *testing.T) {
	srv, _ := newTestServer(t, false)

	code, body := get(t, srv.URL+"/v1/tick/3")
	var v frames.TickView
	if err := json.Unmarshal(body, &v); err != nil || code != 200 || v.Frame != 3 {
		t.Fatalf("tick: %d %s", code, body)
	}
	if v.Ball == nil || v.Ball.Pos[2] != 95 {
		t.Fatalf("ball: %+v", v.Ball)
	}

	for path, want := range map[string]int{"/v1/tick/4": 404, "/v1/tick/-1": 404, "/v1/tick/x": 400} {
		code, body := get(t, srv.URL+path)
		var e protocol.ErrorMsg
		_ = json.Unmarshal(body, &e)
		if code != want || e.Type != protocol.TypeError {
			t.Fatalf("%s: %d %s", path, code, body)
		}
	}
}

func TestHandlers_Index(t *testing.T) {
	srv, _ := newTestServer(t, false)
	if code, _ := get(t, srv.URL+"/v1/replays"); code != 404 {
		t.Fatalf("replays without index: %d", code)
	}

	srv, _ = newTestServer(t, true)
	code, body := get(t, srv.URL+"/v1/replays")
	var rows []indexdb.ReplayRow
	if err := json.Unmarshal(body, &rows); err != nil || code != 200 || len(rows) != 1 || rows[0].ID != "kickoff" {
		t.Fatalf("replays: %d %s", code, body)
	}
	if code, body := get(t, srv.URL+"/v1/replays/kickoff/demolitions"); code != 200 || strings.TrimSpace(string(body)) != "[]" {
		t.Fatalf("demolitions: %d %s", code, body)
	}
	if code, _ := get(t, srv.URL+"/v1/replays/nope/demolitions"); code != 404 {
		t.Fatalf("unknown replay: %d", code)
	}
}

func TestLoadSource_Timeline(t *testing.T) {
	_, src := newTestServer(t, false)
	path := filepath.Join(t.TempDir(), "k.tl.zst")
	if err := snapshot.WriteTimeline(path, snapshot.NewTimeline(src.ID, src.Data)); err != nil {
		t.Fatalf("write timeline: %v", err)
	}
	got, err := loadSource("", path, tuning.Defaults())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.ID != "kickoff" || got.Summary.Frames != src.Summary.Frames {
		t.Fatalf("source: %+v", got.Summary)
	}
}
