package archive

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"rlreplay.dev/internal/persistence/snapshot"
)

type Meta struct {
	ReplayID  string   `json:"replay_id"`
	Frames    int      `json:"frames"`
	MatchGUID string   `json:"match_guid,omitempty"`
	GameClass string   `json:"game_class,omitempty"`
	Timeline  string   `json:"timeline"`
	Extra     []string `json:"extra,omitempty"`
	CreatedAt string   `json:"created_at"`
}

// ArchiveTimeline copies a written timeline and any extra outputs into
// `outDir/archives/<replay id>/` next to a meta.json, and returns the
// archived timeline path.
func ArchiveTimeline(outDir, timelinePath string, extra ...string) (string, error) {
	tl, err := snapshot.ReadTimeline(timelinePath)
	if err != nil {
		return "", fmt.Errorf("archive %s: %w", timelinePath, err)
	}
	id := tl.Header.ReplayID
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("archive %s: unusable replay id %q", timelinePath, id)
	}

	dir := filepath.Join(outDir, "archives", id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	dst := filepath.Join(dir, filepath.Base(timelinePath))
	if err := copyFile(timelinePath, dst); err != nil {
		return "", err
	}
	meta := Meta{
		ReplayID:  id,
		Frames:    tl.Header.Frames,
		MatchGUID: tl.Data.GameInfo.MatchGUID,
		GameClass: tl.Data.GameInfo.GameClass,
		Timeline:  filepath.Base(dst),
		CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	for _, src := range extra {
		if err := copyFile(src, filepath.Join(dir, filepath.Base(src))); err != nil {
			return "", err
		}
		meta.Extra = append(meta.Extra, filepath.Base(src))
	}
	b, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, "meta.json"), b, 0o644); err != nil {
		return "", err
	}
	return dst, nil
}

// ReadMeta reads the meta.json of an archived replay.
func ReadMeta(outDir, replayID string) (Meta, error) {
	var m Meta
	b, err := os.ReadFile(filepath.Join(outDir, "archives", replayID, "meta.json"))
	if err != nil {
		return m, err
	}
	err = json.Unmarshal(b, &m)
	return m, err
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
